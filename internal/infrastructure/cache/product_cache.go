package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	"github.com/jhoicas/precios-especiales-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*CachedProductRepository)(nil)

// CachedProductRepository lectura a través de Redis para GetByID y DistinctCategories.
// Si Redis falla se consulta el repositorio envuelto; la caché nunca es fuente de errores.
type CachedProductRepository struct {
	next repository.ProductRepository
	rdb  redis.Cmdable
	ttl  time.Duration
}

// NewCachedProductRepository envuelve next. ttl <= 0 usa DefaultCatalogTTL.
func NewCachedProductRepository(next repository.ProductRepository, rdb redis.Cmdable, ttl time.Duration) *CachedProductRepository {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CachedProductRepository{next: next, rdb: rdb, ttl: ttl}
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id entity.ProductID) (*entity.Product, error) {
	key := fmt.Sprintf(KeyProduct, id)
	var cached entity.Product
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}
	p, err := c.next.GetByID(ctx, id)
	if err != nil || p == nil {
		return p, err
	}
	c.set(ctx, key, p)
	return p, nil
}

func (c *CachedProductRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	var cached []string
	if c.get(ctx, KeyCategories, &cached) {
		return cached, nil
	}
	cats, err := c.next.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, KeyCategories, cats)
	return cats, nil
}

func (c *CachedProductRepository) List(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, int, error) {
	return c.next.List(ctx, filter)
}

func (c *CachedProductRepository) Search(ctx context.Context, term string) ([]*entity.Product, error) {
	return c.next.Search(ctx, term)
}

// Upsert escribe en el repositorio envuelto e invalida las claves afectadas.
func (c *CachedProductRepository) Upsert(ctx context.Context, product *entity.Product) error {
	if err := c.next.Upsert(ctx, product); err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, fmt.Sprintf(KeyProduct, product.ID), KeyCategories).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", product.ID.String()).Msg("cache: no se pudo invalidar")
	}
	return nil
}

func (c *CachedProductRepository) get(ctx context.Context, key string, out interface{}) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("cache: lectura fallida, se consulta el almacenamiento")
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: valor corrupto")
		return false
	}
	return true
}

func (c *CachedProductRepository) set(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: escritura fallida")
	}
}
