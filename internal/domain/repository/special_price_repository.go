package repository

import (
	"context"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
)

// SpecialPriceRepository define el puerto de persistencia para SpecialPrice (DIP).
//
// InsertUnique es atómico respecto a la restricción única (user_id, product_id): de dos inserciones
// concurrentes del mismo par, una tiene éxito y la otra recibe *domain.ConflictError.
// GetByID y FindByUserAndProduct devuelven (nil, nil) si no hay registro.
// Update y Delete devuelven *domain.NotFoundError si el id no existe.
// Las consultas pueden filtrar la vigencia en el almacenamiento, pero el motor vuelve a
// comprobar IsCurrentlyValid después de leer.
type SpecialPriceRepository interface {
	InsertUnique(ctx context.Context, sp *entity.SpecialPrice) error
	GetByID(ctx context.Context, id string) (*entity.SpecialPrice, error)
	FindByUserAndProduct(ctx context.Context, userID string, productID entity.ProductID) (*entity.SpecialPrice, error)
	FindByUserAndProducts(ctx context.Context, userID string, productIDs []entity.ProductID) ([]*entity.SpecialPrice, error)
	Update(ctx context.Context, sp *entity.SpecialPrice) error
	Delete(ctx context.Context, id string) error
	QueryByUser(ctx context.Context, userID string, q entity.SpecialPriceQuery) ([]*entity.SpecialPrice, error)
	QueryByProduct(ctx context.Context, productID entity.ProductID, q entity.SpecialPriceQuery) ([]*entity.SpecialPrice, error)
	List(ctx context.Context, filter entity.SpecialPriceFilter) ([]*entity.SpecialPrice, int, error)
}
