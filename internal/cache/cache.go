package cache

import (
	"context"
	"time"

	"retailpos/backend/internal/domain"
)

// DashboardCache stores the owner dashboard per location. A miss is reported
// as (nil, false, nil).
type DashboardCache interface {
	Get(ctx context.Context, locationID string) (*domain.DashboardSummary, bool, error)
	Set(ctx context.Context, locationID string, value *domain.DashboardSummary, ttl time.Duration) error
	Invalidate(ctx context.Context, locationID string) error
}

type NoopDashboardCache struct{}

func (NoopDashboardCache) Get(_ context.Context, _ string) (*domain.DashboardSummary, bool, error) {
	return nil, false, nil
}

func (NoopDashboardCache) Set(_ context.Context, _ string, _ *domain.DashboardSummary, _ time.Duration) error {
	return nil
}

func (NoopDashboardCache) Invalidate(_ context.Context, _ string) error {
	return nil
}

func dashboardKey(locationID string) string {
	return "retailpos:dashboard:" + locationID
}
