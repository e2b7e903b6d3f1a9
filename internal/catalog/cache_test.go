package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func setupCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Hour), mr
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Rating: domain.Rating{Rate: 3.9, Count: 120}},
		{ID: 2, Title: "T-Shirt", Price: decimal.RequireFromString("22.3")},
	}
}

func TestRedisCache_Miss(t *testing.T) {
	cache, _ := setupCache(t)

	_, err := cache.Products(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRedisCache_StoreAndLoad(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.StoreProducts(ctx, sampleProducts()))

	got, err := cache.Products(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Backpack", got[0].Title)
	assert.True(t, got[0].Price.Equal(decimal.RequireFromString("109.95")))
	assert.Equal(t, 120, got[0].Rating.Count)

	assert.Equal(t, time.Hour, mr.TTL(productsKey))
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()
	require.NoError(t, cache.StoreProducts(ctx, sampleProducts()))

	mr.FastForward(2 * time.Hour)

	_, err := cache.Products(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRedisCache_Corrupt(t *testing.T) {
	cache, mr := setupCache(t)
	require.NoError(t, mr.Set(productsKey, "not json"))

	_, err := cache.Products(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "unmarshal cached catalog")
}

func TestRedisCache_Invalidate(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()
	require.NoError(t, cache.StoreProducts(ctx, sampleProducts()))

	require.NoError(t, cache.Invalidate(ctx))

	assert.False(t, mr.Exists(productsKey))
	assert.NoError(t, cache.Ping(ctx))
}
