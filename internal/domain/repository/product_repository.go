package repository

import (
	"context"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
)

// ProductRepository define el puerto de consulta del catálogo (DIP).
// GetByID devuelve (nil, nil) si el producto no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id entity.ProductID) (*entity.Product, error)
	List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, int, error)
	Search(ctx context.Context, term string) ([]*entity.Product, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	// Upsert solo lo usa la herramienta de carga de catálogo.
	Upsert(ctx context.Context, product *entity.Product) error
}
