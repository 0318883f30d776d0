package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/precios-especiales-api/internal/domain"
	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	"github.com/jhoicas/precios-especiales-api/internal/domain/repository"
)

var _ repository.SpecialPriceRepository = (*SpecialPriceRepo)(nil)

// SpecialPriceRepo almacenamiento en memoria con índice único (usuario, producto).
// La comprobación y la inserción ocurren bajo el mismo candado.
type SpecialPriceRepo struct {
	mu     sync.RWMutex
	byID   map[string]entity.SpecialPrice
	byPair map[string]string
}

func NewSpecialPriceRepo() *SpecialPriceRepo {
	return &SpecialPriceRepo{
		byID:   make(map[string]entity.SpecialPrice),
		byPair: make(map[string]string),
	}
}

func pairKey(userID string, productID entity.ProductID) string {
	return domain.ConflictKey(userID, productID.String())
}

func (r *SpecialPriceRepo) InsertUnique(_ context.Context, sp *entity.SpecialPrice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(sp.User.UserID, sp.Product.ProductID)
	if _, taken := r.byPair[key]; taken {
		return &domain.ConflictError{Key: key}
	}
	r.byID[sp.ID] = *sp
	r.byPair[key] = sp.ID
	return nil
}

func (r *SpecialPriceRepo) GetByID(_ context.Context, id string) (*entity.SpecialPrice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sp, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &sp, nil
}

func (r *SpecialPriceRepo) FindByUserAndProduct(_ context.Context, userID string, productID entity.ProductID) (*entity.SpecialPrice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[pairKey(userID, productID)]
	if !ok {
		return nil, nil
	}
	sp := r.byID[id]
	return &sp, nil
}

func (r *SpecialPriceRepo) FindByUserAndProducts(_ context.Context, userID string, productIDs []entity.ProductID) ([]*entity.SpecialPrice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.SpecialPrice, 0, len(productIDs))
	for _, pid := range productIDs {
		if id, ok := r.byPair[pairKey(userID, pid)]; ok {
			sp := r.byID[id]
			out = append(out, &sp)
		}
	}
	return out, nil
}

// Update reemplaza el registro. El par (usuario, producto) no es mutable.
func (r *SpecialPriceRepo) Update(_ context.Context, sp *entity.SpecialPrice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[sp.ID]
	if !ok {
		return &domain.NotFoundError{Resource: "precio especial", ID: sp.ID}
	}
	updated := *sp
	updated.User.UserID = current.User.UserID
	updated.Product.ProductID = current.Product.ProductID
	updated.CreatedAt = current.CreatedAt
	r.byID[sp.ID] = updated
	return nil
}

func (r *SpecialPriceRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.byID[id]
	if !ok {
		return &domain.NotFoundError{Resource: "precio especial", ID: id}
	}
	delete(r.byID, id)
	delete(r.byPair, pairKey(sp.User.UserID, sp.Product.ProductID))
	return nil
}

func (r *SpecialPriceRepo) QueryByUser(_ context.Context, userID string, q entity.SpecialPriceQuery) ([]*entity.SpecialPrice, error) {
	return r.collect(func(sp *entity.SpecialPrice) bool {
		return sp.User.UserID == userID && matchesQuery(sp, q)
	}), nil
}

func (r *SpecialPriceRepo) QueryByProduct(_ context.Context, productID entity.ProductID, q entity.SpecialPriceQuery) ([]*entity.SpecialPrice, error) {
	return r.collect(func(sp *entity.SpecialPrice) bool {
		return sp.Product.ProductID == productID && matchesQuery(sp, q)
	}), nil
}

// List más recientes primero.
func (r *SpecialPriceRepo) List(_ context.Context, f entity.SpecialPriceFilter) ([]*entity.SpecialPrice, int, error) {
	matched := r.collect(func(sp *entity.SpecialPrice) bool {
		if f.UserID != "" && sp.User.UserID != f.UserID {
			return false
		}
		if !f.ProductID.IsZero() && sp.Product.ProductID != f.ProductID {
			return false
		}
		if f.Active != nil && sp.Active != *f.Active {
			return false
		}
		if f.ValidAt != nil && !sp.IsCurrentlyValid(*f.ValidAt) {
			return false
		}
		return true
	})
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, f.Offset, f.Limit), len(matched), nil
}

func (r *SpecialPriceRepo) collect(keep func(*entity.SpecialPrice) bool) []*entity.SpecialPrice {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entity.SpecialPrice{}
	for _, sp := range r.byID {
		cp := sp
		if keep(&cp) {
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func matchesQuery(sp *entity.SpecialPrice, q entity.SpecialPriceQuery) bool {
	if q.ActiveOnly && !sp.Active {
		return false
	}
	if q.ValidAt != nil && !sp.Validity.Contains(*q.ValidAt) {
		return false
	}
	return true
}
