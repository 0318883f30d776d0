package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
)

// ProductListRequest filtros de GET /api/products.
type ProductListRequest struct {
	PageRequest
	Category string `query:"category"`
	Search   string `query:"search"`
	Active   *bool  `query:"active"` // nil = solo activos (comportamiento por defecto)
	All      bool   `query:"all"`    // true = ignora el filtro de activo
	UserID   string `query:"userId"`
}

// ProductResponse salida de un producto. Cuando se consulta con userId incluye el precio efectivo.
type ProductResponse struct {
	ID          entity.ProductID `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	Category    string           `json:"category,omitempty"`
	Stock       int              `json:"stock"`
	Active      bool             `json:"active"`
	SKU         string           `json:"sku,omitempty"`
	ImageURL    string           `json:"imageUrl,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`

	// Campos de resolución (presentes solo si se indicó userId).
	OriginalPrice   *decimal.Decimal `json:"originalPrice,omitempty"`
	SpecialPrice    *decimal.Decimal `json:"specialPrice,omitempty"`
	FinalPrice      *decimal.Decimal `json:"finalPrice,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discountPercent,omitempty"`
	HasDiscount     *bool            `json:"hasDiscount,omitempty"`
}
