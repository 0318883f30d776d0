package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ClientType segmento comercial del usuario con precio especial.
type ClientType string

const (
	ClientTypeVIP       ClientType = "VIP"
	ClientTypePremium   ClientType = "Premium"
	ClientTypeCorporate ClientType = "Corporate"
	ClientTypeWholesale ClientType = "Wholesale"
	ClientTypeEmployee  ClientType = "Employee"
)

// DefaultCreatedBy autor por defecto de un registro.
const DefaultCreatedBy = "System"

// MaxReasonLength longitud máxima del motivo.
const MaxReasonLength = 200

var clientTypeAliases = map[string]ClientType{
	"vip":         ClientTypeVIP,
	"premium":     ClientTypePremium,
	"corporate":   ClientTypeCorporate,
	"corporativo": ClientTypeCorporate,
	"wholesale":   ClientTypeWholesale,
	"mayorista":   ClientTypeWholesale,
	"employee":    ClientTypeEmployee,
	"empleado":    ClientTypeEmployee,
}

// ParseClientType normaliza el tipo de cliente. Vacío → Premium. Acepta los nombres en español del sistema anterior.
func ParseClientType(s string) (ClientType, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ClientTypePremium, true
	}
	ct, ok := clientTypeAliases[strings.ToLower(s)]
	return ct, ok
}

// SpecialPriceUser usuario beneficiario del precio especial.
type SpecialPriceUser struct {
	UserID     string
	Name       string
	Email      string // siempre en minúsculas
	ClientType ClientType
}

// SpecialPriceProduct instantánea del producto tomada al crear el registro (no se sincroniza).
type SpecialPriceProduct struct {
	ProductID     ProductID
	Name          string
	OriginalPrice decimal.Decimal
}

// Validity ventana de vigencia [Start, End], ambos extremos inclusive.
type Validity struct {
	Start time.Time
	End   time.Time
}

// Contains indica si at cae dentro de la ventana (extremos incluidos).
func (v Validity) Contains(at time.Time) bool {
	return !at.Before(v.Start) && !at.After(v.End)
}

// SpecialPrice precio especial de un usuario para un producto.
// Existe a lo sumo un registro por (User.UserID, Product.ProductID).
// DiscountPercent es derivado; solo lo escribe pricing.DiscountPercent.
type SpecialPrice struct {
	ID              string
	User            SpecialPriceUser
	Product         SpecialPriceProduct
	SpecialPrice    decimal.Decimal
	DiscountPercent decimal.Decimal
	Validity        Validity
	Active          bool
	Reason          string
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsCurrentlyValid única fuente de verdad de "¿aplica este precio en at?".
func (s *SpecialPrice) IsCurrentlyValid(at time.Time) bool {
	return s != nil && s.Active && s.Validity.Contains(at)
}

// SpecialPriceFilter filtros del listado administrativo.
type SpecialPriceFilter struct {
	UserID    string
	ProductID ProductID
	Active    *bool
	ValidAt   *time.Time // nil = sin filtro de vigencia
	Limit     int
	Offset    int
}

// SpecialPriceQuery opciones de las consultas por usuario o producto.
type SpecialPriceQuery struct {
	ActiveOnly bool
	ValidAt    *time.Time // filtro de vigencia empujado al almacenamiento cuando es posible
}
