package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/precios-especiales-api/internal/application/dto"
	apppricing "github.com/jhoicas/precios-especiales-api/internal/application/pricing"
	"github.com/jhoicas/precios-especiales-api/internal/domain"
	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	"github.com/jhoicas/precios-especiales-api/internal/domain/repository"
)

// ProductUseCase consultas del catálogo. El catálogo es de solo lectura; si se indica userId
// cada producto sale con su precio efectivo resuelto por el motor.
type ProductUseCase struct {
	repo     repository.ProductRepository
	resolver *apppricing.Resolver
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, resolver *apppricing.Resolver) *ProductUseCase {
	return &ProductUseCase{repo: repo, resolver: resolver}
}

// List lista productos con filtros y paginación (orden por nombre).
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest) ([]*dto.ProductResponse, *dto.Pagination, error) {
	in.DefaultPage()
	filter := entity.ProductFilter{
		Category: strings.TrimSpace(in.Category),
		Search:   strings.TrimSpace(in.Search),
		Limit:    in.Limit,
		Offset:   in.Offset(),
	}
	if !in.All {
		active := true
		if in.Active != nil {
			active = *in.Active
		}
		filter.Active = &active
	}
	list, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	items, err := uc.withPrices(ctx, strings.TrimSpace(in.UserID), list)
	if err != nil {
		return nil, nil, err
	}
	return items, dto.NewPagination(in.PageRequest, total), nil
}

// GetByID obtiene un producto; con userID aplica su precio especial vigente.
func (uc *ProductUseCase) GetByID(ctx context.Context, id entity.ProductID, userID string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &domain.NotFoundError{Resource: "producto", ID: id.String()}
	}
	items, err := uc.withPrices(ctx, strings.TrimSpace(userID), []*entity.Product{product})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// Search busca productos activos por término (nombre, descripción o categoría).
func (uc *ProductUseCase) Search(ctx context.Context, term, userID string) ([]*dto.ProductResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.NewValidationError([]string{"se requiere un término de búsqueda"})
	}
	list, err := uc.repo.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	return uc.withPrices(ctx, strings.TrimSpace(userID), list)
}

// Categories categorías de productos activos.
func (uc *ProductUseCase) Categories(ctx context.Context) ([]string, error) {
	return uc.repo.DistinctCategories(ctx)
}

func (uc *ProductUseCase) withPrices(ctx context.Context, userID string, list []*entity.Product) ([]*dto.ProductResponse, error) {
	items := make([]*dto.ProductResponse, 0, len(list))
	if userID == "" {
		for _, p := range list {
			items = append(items, toProductResponse(p))
		}
		return items, nil
	}
	views, err := uc.resolver.ResolveMany(ctx, userID, list, nil)
	if err != nil {
		return nil, err
	}
	for i, p := range list {
		items = append(items, withEffectivePrice(toProductResponse(p), views[i]))
	}
	return items, nil
}
