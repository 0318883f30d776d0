// Package pricing contiene las reglas puras de precios especiales (servicio de dominio):
// derivación del porcentaje de descuento, techo de precio y resolución del precio efectivo.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// PriceScale decimales que admiten los montos almacenados.
const PriceScale = 2

// DiscountPercent = round(100 * (original - special) / original), acotado a [0, 100].
// Con original <= 0 devuelve 0.
func DiscountPercent(original, special decimal.Decimal) decimal.Decimal {
	if original.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	pct := original.Sub(special).Mul(hundred).Div(original).Round(0)
	if pct.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// CheckPrice valida 0 < special <= original y como máximo PriceScale decimales; devuelve las
// violaciones encontradas.
func CheckPrice(special, original decimal.Decimal) []string {
	return append(CheckAmount(special), CheckCeiling(special, original)...)
}

// CheckAmount reglas del monto que no dependen del producto.
func CheckAmount(special decimal.Decimal) []string {
	var violations []string
	if special.LessThanOrEqual(decimal.Zero) {
		violations = append(violations, "specialPrice debe ser mayor a 0")
	}
	if !special.Equal(special.Round(PriceScale)) {
		violations = append(violations, "specialPrice no puede tener más de 2 decimales")
	}
	return violations
}

// CheckCeiling special <= original.
func CheckCeiling(special, original decimal.Decimal) []string {
	if special.GreaterThan(original) {
		return []string{"specialPrice no puede ser mayor al precio original del producto (" + original.String() + ")"}
	}
	return nil
}

// ApplyDerived recalcula los campos derivados del registro. Toda operación que escribe lo invoca antes de persistir.
func ApplyDerived(sp *entity.SpecialPrice) {
	sp.DiscountPercent = DiscountPercent(sp.Product.OriginalPrice, sp.SpecialPrice)
}

// EffectivePrice vista del precio que aplica a un usuario para un producto en un instante.
type EffectivePrice struct {
	ProductID       entity.ProductID
	BasePrice       decimal.Decimal
	FinalPrice      decimal.Decimal
	DiscountPercent decimal.Decimal
	HasOverride     bool
	SpecialPriceID  string
	ValidUntil      *time.Time
}

// Base vista sin precio especial.
func Base(product *entity.Product) EffectivePrice {
	return EffectivePrice{
		ProductID:       product.ID,
		BasePrice:       product.Price,
		FinalPrice:      product.Price,
		DiscountPercent: decimal.Zero,
	}
}

// Resolve decide el precio efectivo. El precio base es siempre el precio vivo del catálogo;
// la instantánea del registro solo sirve para el techo de precio.
// sp se aplica solo si corresponde al producto, el producto está activo y sp.IsCurrentlyValid(at).
func Resolve(product *entity.Product, sp *entity.SpecialPrice, at time.Time) EffectivePrice {
	view := Base(product)
	if sp == nil || !product.Active || sp.Product.ProductID != product.ID || !sp.IsCurrentlyValid(at) {
		return view
	}
	end := sp.Validity.End
	view.FinalPrice = sp.SpecialPrice
	view.DiscountPercent = DiscountPercent(product.Price, sp.SpecialPrice)
	view.HasOverride = true
	view.SpecialPriceID = sp.ID
	view.ValidUntil = &end
	return view
}
