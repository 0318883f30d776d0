// Package pricing orquesta la resolución de precios especiales: único componente que decide el
// precio efectivo de un usuario para un producto en un instante.
package pricing

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/precios-especiales-api/internal/domain"
	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	domainpricing "github.com/jhoicas/precios-especiales-api/internal/domain/pricing"
	"github.com/jhoicas/precios-especiales-api/internal/domain/repository"
)

// Resolver motor de vigencia y resolución.
type Resolver struct {
	products repository.ProductRepository
	prices   repository.SpecialPriceRepository
	now      func() time.Time
}

// NewResolver construye el motor. now puede ser nil (usa time.Now).
func NewResolver(products repository.ProductRepository, prices repository.SpecialPriceRepository, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{products: products, prices: prices, now: now}
}

// Now instante actual según el reloj del motor.
func (r *Resolver) Now() time.Time { return r.now() }

func (r *Resolver) at(asOf *time.Time) time.Time {
	if asOf != nil && !asOf.IsZero() {
		return *asOf
	}
	return r.now()
}

// ProductHolder usuario con precio especial vigente para un producto.
type ProductHolder struct {
	User         entity.SpecialPriceUser
	SpecialPrice *entity.SpecialPrice
}

// Resolve precio efectivo de userID para productID en asOf (nil = ahora).
// Devuelve *domain.NotFoundError si el producto no existe.
func (r *Resolver) Resolve(ctx context.Context, userID string, productID entity.ProductID, asOf *time.Time) (domainpricing.EffectivePrice, error) {
	product, err := r.products.GetByID(ctx, productID)
	if err != nil {
		return domainpricing.EffectivePrice{}, err
	}
	if product == nil {
		return domainpricing.EffectivePrice{}, &domain.NotFoundError{Resource: "producto", ID: productID.String()}
	}
	if userID == "" {
		return domainpricing.Base(product), nil
	}
	sp, err := r.prices.FindByUserAndProduct(ctx, userID, product.ID)
	if err != nil {
		return domainpricing.EffectivePrice{}, err
	}
	view := domainpricing.Resolve(product, sp, r.at(asOf))
	warnAboveBase(userID, view)
	return view, nil
}

// ResolveMany forma por lotes para páginas de catálogo: una sola consulta para todos los productos distintos.
// El resultado conserva el orden de products.
func (r *Resolver) ResolveMany(ctx context.Context, userID string, products []*entity.Product, asOf *time.Time) ([]domainpricing.EffectivePrice, error) {
	out := make([]domainpricing.EffectivePrice, 0, len(products))
	if userID == "" || len(products) == 0 {
		for _, p := range products {
			out = append(out, domainpricing.Base(p))
		}
		return out, nil
	}

	seen := make(map[entity.ProductID]struct{}, len(products))
	ids := make([]entity.ProductID, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		ids = append(ids, p.ID)
	}

	records, err := r.prices.FindByUserAndProducts(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[entity.ProductID]*entity.SpecialPrice, len(records))
	for _, sp := range records {
		if sp.User.UserID == userID {
			byProduct[sp.Product.ProductID] = sp
		}
	}

	at := r.at(asOf)
	for _, p := range products {
		view := domainpricing.Resolve(p, byProduct[p.ID], at)
		warnAboveBase(userID, view)
		out = append(out, view)
	}
	return out, nil
}

// FindCurrent registro vigente para el par (userID, productID) o *domain.NotFoundError.
func (r *Resolver) FindCurrent(ctx context.Context, userID string, productID entity.ProductID, asOf *time.Time) (*entity.SpecialPrice, error) {
	sp, err := r.prices.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !sp.IsCurrentlyValid(r.at(asOf)) {
		return nil, &domain.NotFoundError{Resource: "precio especial", ID: domain.ConflictKey(userID, productID.String())}
	}
	return sp, nil
}

// ListActiveForUser registros vigentes del usuario, ordenados por nombre de producto y luego por creación.
func (r *Resolver) ListActiveForUser(ctx context.Context, userID string, asOf *time.Time) ([]*entity.SpecialPrice, error) {
	at := r.at(asOf)
	records, err := r.prices.QueryByUser(ctx, userID, entity.SpecialPriceQuery{ActiveOnly: true, ValidAt: &at})
	if err != nil {
		return nil, err
	}
	out := currentOnly(records, at)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Product.Name != out[j].Product.Name {
			return out[i].Product.Name < out[j].Product.Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ListActiveForProduct usuarios con precio especial vigente para el producto, en orden de creación.
func (r *Resolver) ListActiveForProduct(ctx context.Context, productID entity.ProductID, asOf *time.Time) ([]ProductHolder, error) {
	at := r.at(asOf)
	records, err := r.prices.QueryByProduct(ctx, productID, entity.SpecialPriceQuery{ActiveOnly: true, ValidAt: &at})
	if err != nil {
		return nil, err
	}
	current := currentOnly(records, at)
	sort.SliceStable(current, func(i, j int) bool { return current[i].CreatedAt.Before(current[j].CreatedAt) })
	out := make([]ProductHolder, 0, len(current))
	for _, sp := range current {
		out = append(out, ProductHolder{User: sp.User, SpecialPrice: sp})
	}
	return out, nil
}

// warnAboveBase el catálogo bajó por debajo del precio especial vigente. El registro sigue aplicando
// (finalPrice > basePrice) hasta que se modifique o venza.
func warnAboveBase(userID string, v domainpricing.EffectivePrice) {
	if !v.HasOverride || !v.FinalPrice.GreaterThan(v.BasePrice) {
		return
	}
	log.Warn().
		Str("user_id", userID).
		Str("product_id", v.ProductID.String()).
		Str("special_price_id", v.SpecialPriceID).
		Str("base_price", v.BasePrice.String()).
		Str("final_price", v.FinalPrice.String()).
		Msg("precio especial por encima del precio vigente del catálogo")
}

// currentOnly vuelve a aplicar IsCurrentlyValid: el filtro del almacenamiento no es confiable ante desfases de reloj.
func currentOnly(records []*entity.SpecialPrice, at time.Time) []*entity.SpecialPrice {
	out := make([]*entity.SpecialPrice, 0, len(records))
	for _, sp := range records {
		if sp.IsCurrentlyValid(at) {
			out = append(out, sp)
		}
	}
	return out
}
