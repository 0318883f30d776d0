package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento de precios especiales.
const (
	EventSpecialPriceCreated = "special_price.created"
	EventSpecialPriceUpdated = "special_price.updated"
	EventSpecialPriceDeleted = "special_price.deleted"
)

// SpecialPriceEvent notificación de un cambio ya persistido.
type SpecialPriceEvent struct {
	Type            string          `json:"type"`
	ID              string          `json:"id"`
	UserID          string          `json:"userId,omitempty"`
	ProductID       string          `json:"productId,omitempty"`
	SpecialPrice    decimal.Decimal `json:"specialPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Active          bool            `json:"active"`
	OccurredAt      time.Time       `json:"occurredAt"`
}

// EventPublisher puerto de salida para difundir cambios de precios especiales (Kafka, no-op, mock).
// Publish no debe bloquear la operación de negocio: la escritura ya ocurrió y los fallos solo se registran.
type EventPublisher interface {
	Publish(ctx context.Context, event SpecialPriceEvent) error
}

// NoopPublisher descarta los eventos. Se usa cuando no hay brokers configurados.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, SpecialPriceEvent) error { return nil }

// PriceSheetLine línea de la hoja de precios de un usuario.
type PriceSheetLine struct {
	ProductID       string
	ProductName     string
	OriginalPrice   decimal.Decimal
	SpecialPrice    decimal.Decimal
	DiscountPercent decimal.Decimal
	ValidUntil      time.Time
}

// PriceSheet datos de la hoja de precios especiales vigentes de un usuario.
type PriceSheet struct {
	UserID      string
	UserName    string
	Email       string
	ClientType  string
	GeneratedAt time.Time
	Lines       []PriceSheetLine
}

// PriceSheetGenerator puerto de salida para renderizar la hoja de precios (PDF).
type PriceSheetGenerator interface {
	GeneratePriceSheet(ctx context.Context, sheet PriceSheet) ([]byte, error)
}
