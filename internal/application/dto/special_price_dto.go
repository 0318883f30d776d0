package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
)

// Timestamp acepta RFC 3339 o fecha simple (YYYY-MM-DD, medianoche UTC) como envían los formularios.
// Un valor que no se puede interpretar no corta la decodificación del cuerpo: queda en Invalid.
type Timestamp struct {
	time.Time
	Invalid bool
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// ParseTimestamp interpreta s con los formatos aceptados por la API.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida: %q", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		t.Invalid = true
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		t.Invalid = true
		return nil
	}
	t.Time = parsed
	return nil
}

// Amount monto del cuerpo (número o string numérico). Como Timestamp, un valor no numérico
// queda marcado en Invalid y se informa junto con las demás violaciones.
type Amount struct {
	decimal.Decimal
	Invalid bool
}

// NewAmount monto válido.
func NewAmount(d decimal.Decimal) *Amount { return &Amount{Decimal: d} }

func (a *Amount) UnmarshalJSON(b []byte) error {
	if err := a.Decimal.UnmarshalJSON(b); err != nil {
		a.Decimal = decimal.Zero
		a.Invalid = true
	}
	return nil
}

// SpecialPriceUserInput datos del usuario beneficiario.
type SpecialPriceUserInput struct {
	UserID     string `json:"userId" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	ClientType string `json:"clientType" validate:"omitempty,clienttype"`
}

// SpecialPriceProductInput referencia al producto; nombre y precio se toman del catálogo.
type SpecialPriceProductInput struct {
	ProductID entity.ProductID `json:"productId" validate:"required"`
}

// ValidityInput vigencia. Start vacío = instante de creación.
type ValidityInput struct {
	Start *Timestamp `json:"start"`
	End   *Timestamp `json:"end" validate:"required"`
}

// CreateSpecialPriceRequest body de POST /api/special-prices.
type CreateSpecialPriceRequest struct {
	User         *SpecialPriceUserInput    `json:"user" validate:"required"`
	Product      *SpecialPriceProductInput `json:"product" validate:"required"`
	SpecialPrice *Amount                   `json:"specialPrice"`
	Validity     *ValidityInput            `json:"validity" validate:"required"`
	Reason       string                    `json:"reason" validate:"max=200"`
	CreatedBy    string                    `json:"createdBy"`

	// Malformed violaciones de decodificación (campo con tipo incompatible).
	Malformed []string `json:"-"`
}

// UpdateValidityInput vigencia parcial.
type UpdateValidityInput struct {
	Start *Timestamp `json:"start"`
	End   *Timestamp `json:"end"`
}

// UpdateSpecialPriceRequest body de PUT /api/special-prices/:id (cualquier subconjunto de campos mutables).
type UpdateSpecialPriceRequest struct {
	SpecialPrice *Amount              `json:"specialPrice"`
	Validity     *UpdateValidityInput `json:"validity"`
	Active       *bool                `json:"active"`
	Reason       *string              `json:"reason" validate:"omitempty,max=200"`

	Malformed []string `json:"-"`
}

// SpecialPriceListRequest filtros de GET /api/special-prices.
type SpecialPriceListRequest struct {
	PageRequest
	UserID    string `query:"userId"`
	ProductID string `query:"productId"`
	Active    *bool  `query:"active"`
	Current   *bool  `query:"current"`
}

// SpecialPriceUserResponse bloque usuario del registro persistido.
type SpecialPriceUserResponse struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ClientType string `json:"clientType"`
}

// SpecialPriceProductResponse bloque producto (instantánea).
type SpecialPriceProductResponse struct {
	ProductID     entity.ProductID `json:"productId"`
	Name          string           `json:"name"`
	OriginalPrice decimal.Decimal  `json:"originalPrice"`
}

// ValidityResponse bloque vigencia.
type ValidityResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SpecialPriceResponse forma persistida del registro; CurrentlyValid se evalúa al responder.
type SpecialPriceResponse struct {
	ID              string                      `json:"id"`
	User            SpecialPriceUserResponse    `json:"user"`
	Product         SpecialPriceProductResponse `json:"product"`
	SpecialPrice    decimal.Decimal             `json:"specialPrice"`
	DiscountPercent decimal.Decimal             `json:"discountPercent"`
	Validity        ValidityResponse            `json:"validity"`
	Active          bool                        `json:"active"`
	Reason          string                      `json:"reason"`
	CreatedBy       string                      `json:"createdBy"`
	CurrentlyValid  bool                        `json:"currentlyValid"`
	CreatedAt       time.Time                   `json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// EffectivePriceResponse precio efectivo de un usuario para un producto.
type EffectivePriceResponse struct {
	ProductID       entity.ProductID `json:"productId"`
	UserID          string           `json:"userId,omitempty"`
	BasePrice       decimal.Decimal  `json:"basePrice"`
	FinalPrice      decimal.Decimal  `json:"finalPrice"`
	DiscountPercent decimal.Decimal  `json:"discountPercent"`
	HasOverride     bool             `json:"hasOverride"`
	SpecialPriceID  string           `json:"specialPriceId,omitempty"`
	ValidUntil      *time.Time       `json:"validUntil,omitempty"`
	AsOf            time.Time        `json:"asOf"`
}

// ProductHolderResponse usuario con precio especial vigente para un producto.
type ProductHolderResponse struct {
	User            SpecialPriceUserResponse `json:"user"`
	SpecialPrice    decimal.Decimal          `json:"specialPrice"`
	DiscountPercent decimal.Decimal          `json:"discountPercent"`
}
