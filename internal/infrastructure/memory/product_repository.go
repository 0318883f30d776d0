// Package memory implementa los repositorios en memoria. Se usan en pruebas y con STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	"github.com/jhoicas/precios-especiales-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo en memoria. Devuelve copias para que el llamador no altere el estado interno.
type ProductRepo struct {
	mu    sync.RWMutex
	items map[entity.ProductID]entity.Product
}

// NewProductRepo crea el repositorio con productos iniciales opcionales.
func NewProductRepo(seed ...*entity.Product) *ProductRepo {
	r := &ProductRepo{items: make(map[entity.ProductID]entity.Product, len(seed))}
	for _, p := range seed {
		r.items[p.ID] = *p
	}
	return r
}

func (r *ProductRepo) GetByID(_ context.Context, id entity.ProductID) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) List(_ context.Context, filter entity.ProductFilter) ([]*entity.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	category := strings.ToLower(filter.Category)
	search := strings.ToLower(filter.Search)
	var matched []*entity.Product
	for _, p := range r.items {
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(p.Category), category) {
			continue
		}
		if search != "" && !containsFold(search, p.Name, p.Description) {
			continue
		}
		cp := p
		matched = append(matched, &cp)
	}
	sortByName(matched)
	return page(matched, filter.Offset, filter.Limit), len(matched), nil
}

func (r *ProductRepo) Search(_ context.Context, term string) ([]*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	term = strings.ToLower(strings.TrimSpace(term))
	var out []*entity.Product
	for _, p := range r.items {
		if !p.Active || !containsFold(term, p.Name, p.Description, p.Category) {
			continue
		}
		cp := p
		out = append(out, &cp)
	}
	sortByName(out)
	return out, nil
}

func (r *ProductRepo) DistinctCategories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range r.items {
		if !p.Active || strings.TrimSpace(p.Category) == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (r *ProductRepo) Upsert(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[product.ID] = *product
	return nil
}

func containsFold(lowerTerm string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), lowerTerm) {
			return true
		}
	}
	return false
}

func sortByName(list []*entity.Product) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
}

func page[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
