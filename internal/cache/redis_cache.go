package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"retailpos/backend/internal/domain"
)

type RedisDashboardCache struct {
	client redis.UniversalClient
}

func NewRedisDashboardCache(addr string, password string, db int) *RedisDashboardCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisDashboardCache{client: client}
}

// NewRedisDashboardCacheFromClient wraps an existing client.
func NewRedisDashboardCacheFromClient(client redis.UniversalClient) *RedisDashboardCache {
	return &RedisDashboardCache{client: client}
}

func (c *RedisDashboardCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisDashboardCache) Close() error {
	return c.client.Close()
}

func (c *RedisDashboardCache) Get(ctx context.Context, locationID string) (*domain.DashboardSummary, bool, error) {
	val, err := c.client.Get(ctx, dashboardKey(locationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var summary domain.DashboardSummary
	if err := json.Unmarshal(val, &summary); err != nil {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *RedisDashboardCache) Set(ctx context.Context, locationID string, value *domain.DashboardSummary, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, dashboardKey(locationID), payload, ttl).Err()
}

func (c *RedisDashboardCache) Invalidate(ctx context.Context, locationID string) error {
	return c.client.Del(ctx, dashboardKey(locationID)).Err()
}
