package cache

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"retailpos/backend/internal/domain"
)

func TestNoopCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c DashboardCache = NoopDashboardCache{}

	require.NoError(t, c.Set(ctx, "main-store", &domain.DashboardSummary{ProductCount: 3}, time.Minute))
	got, ok, err := c.Get(ctx, "main-store")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.NoError(t, c.Invalidate(ctx, "main-store"))
}

func TestRedisCacheRoundTripAndInvalidate(t *testing.T) {
	if testing.Short() {
		t.Skip("redis integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	c := NewRedisDashboardCacheFromClient(redis.NewClient(opts))
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "main-store")
	require.NoError(t, err)
	assert.False(t, ok)

	summary := &domain.DashboardSummary{
		LocationID:     "main-store",
		ProductCount:   6,
		InventoryUnits: 498,
		SalesByStatus:  map[string]int{domain.SaleStatusCompleted: 2},
	}
	require.NoError(t, c.Set(ctx, "main-store", summary, time.Minute))

	got, ok, err := c.Get(ctx, "main-store")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 498, got.InventoryUnits)
	assert.Equal(t, 2, got.SalesByStatus[domain.SaleStatusCompleted])

	require.NoError(t, c.Invalidate(ctx, "main-store"))
	_, ok, err = c.Get(ctx, "main-store")
	require.NoError(t, err)
	assert.False(t, ok)
}
