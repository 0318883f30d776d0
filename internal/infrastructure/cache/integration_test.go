//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestCachedProductRepository_RealRedis(t *testing.T) {
	ctx := context.Background()

	redisC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisC.Terminate(ctx) })

	uri, err := redisC.ConnectionString(ctx)
	require.NoError(t, err)

	rdb, err := NewRedis(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	inner := newInner()
	repo := NewCachedProductRepository(inner, rdb, 2*time.Second)

	_, err = repo.GetByID(ctx, "1")
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets)

	ttl, err := rdb.TTL(ctx, "catalog:product:1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
