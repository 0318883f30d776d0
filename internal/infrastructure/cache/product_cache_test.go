package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
	"github.com/jhoicas/precios-especiales-api/internal/infrastructure/memory"
)

// fakeRedis implementa solo Get/Set/Del; el resto de redis.Cmdable no se usa.
type fakeRedis struct {
	redis.Cmdable
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	down bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

// countingRepo cuenta las lecturas que llegan al almacenamiento.
type countingRepo struct {
	*memory.ProductRepo
	gets, cats int
}

func (c *countingRepo) GetByID(ctx context.Context, id entity.ProductID) (*entity.Product, error) {
	c.gets++
	return c.ProductRepo.GetByID(ctx, id)
}

func (c *countingRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	c.cats++
	return c.ProductRepo.DistinctCategories(ctx)
}

func newInner() *countingRepo {
	return &countingRepo{ProductRepo: memory.NewProductRepo(&entity.Product{
		ID: "1", Name: "Café", Price: decimal.RequireFromString("15000.50"), Category: "Bebidas", Active: true,
	})}
}

func TestCachedProductRepository_ReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := newInner()
	rdb := newFakeRedis()
	repo := NewCachedProductRepository(inner, rdb, time.Minute)

	first, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.gets, "la segunda lectura sale de la caché")
	assert.Equal(t, first.Name, second.Name)
	assert.True(t, second.Price.Equal(decimal.RequireFromString("15000.5")))
	assert.Equal(t, time.Minute, rdb.ttls["catalog:product:1"])

	// Los productos inexistentes no se cachean.
	missing, err := repo.GetByID(ctx, "404")
	require.NoError(t, err)
	assert.Nil(t, missing)
	_, cached := rdb.data["catalog:product:404"]
	assert.False(t, cached)
}

func TestCachedProductRepository_UpsertInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := newInner()
	repo := NewCachedProductRepository(inner, newFakeRedis(), 0)

	_, err := repo.DistinctCategories(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, &entity.Product{ID: "2", Name: "Té", Category: "Infusiones", Active: true}))

	cats, err := repo.DistinctCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bebidas", "Infusiones"}, cats)
	assert.Equal(t, 2, inner.cats)
}

func TestCachedProductRepository_RedisDownDegrades(t *testing.T) {
	ctx := context.Background()
	inner := newInner()
	rdb := newFakeRedis()
	rdb.down = true
	repo := NewCachedProductRepository(inner, rdb, time.Minute)

	p, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, p)

	cats, err := repo.DistinctCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bebidas"}, cats)
}
