package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/backend/internal/domain"
)

type mapDashboardCache struct {
	mu            sync.Mutex
	values        map[string]domain.DashboardSummary
	invalidations int
	beforeSet     func()
}

func (c *mapDashboardCache) Get(_ context.Context, locationID string) (*domain.DashboardSummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[locationID]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (c *mapDashboardCache) Set(_ context.Context, locationID string, value *domain.DashboardSummary, _ time.Duration) error {
	if hook := c.beforeSet; hook != nil {
		c.beforeSet = nil
		hook()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[locationID] = *value
	return nil
}

func (c *mapDashboardCache) Invalidate(_ context.Context, locationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, locationID)
	c.invalidations++
	return nil
}

func TestDashboardIsCachedUntilNextMutation(t *testing.T) {
	dashboards := &mapDashboardCache{values: map[string]domain.DashboardSummary{}}
	svc, _ := newTestService(t, WithDashboardCache(dashboards, time.Minute))

	first, err := svc.Dashboard(ownerCtx)
	require.NoError(t, err)
	assert.Equal(t, 6, first.ProductCount)
	assert.Equal(t, 498, first.InventoryUnits)
	assert.Len(t, dashboards.values, 1)

	_, err = svc.CreateProduct(managerCtx, domain.ProductCreateRequest{Name: "Roti", SKU: "SKU-ROTI-01", SellingPrice: 12000})
	require.NoError(t, err)
	assert.Equal(t, 1, dashboards.invalidations)
	assert.Empty(t, dashboards.values)

	second, err := svc.Dashboard(ownerCtx)
	require.NoError(t, err)
	assert.Equal(t, 7, second.ProductCount)
	require.NotEmpty(t, second.RecentActivity)
	assert.Equal(t, "PRODUCT_CREATE", second.RecentActivity[0].Action)

	cached, err := svc.Dashboard(ownerCtx)
	require.NoError(t, err)
	assert.Equal(t, second.GeneratedAt, cached.GeneratedAt)
}

func TestDashboardCountsTodaysSales(t *testing.T) {
	svc, _ := newTestService(t)
	stockSeller(t, svc, "prd-mie", 2)
	sale := createSale(t, svc, "prd-mie", 2)
	_, err := svc.MarkSale(sellerCtx, sale.ID, domain.SaleMarkRequest{Paid: true})
	require.NoError(t, err)
	_, err = svc.RecordPayment(cashierCtx, sale.ID, domain.PaymentRecordRequest{Amount: sale.TotalAmount})
	require.NoError(t, err)
	createSale(t, svc, "prd-mie", 1)

	summary, err := svc.Dashboard(ownerCtx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SalesToday)
	assert.Equal(t, 1, summary.SalesByStatus[domain.SaleStatusCompleted])
	assert.Equal(t, 1, summary.SalesByStatus[domain.SaleStatusDraft])
	assert.Equal(t, sale.TotalAmount, summary.CompletedToday)
	assert.Equal(t, sale.TotalAmount, summary.PaymentsToday)
	assert.Equal(t, sale.TotalAmount, summary.PaymentsTotal)
}

func TestDashboardWriteRacingAMutationIsNotCached(t *testing.T) {
	dashboards := &mapDashboardCache{values: map[string]domain.DashboardSummary{}}
	svc, _ := newTestService(t, WithDashboardCache(dashboards, time.Minute))

	dashboards.beforeSet = func() {
		_, err := svc.CreateProduct(managerCtx, domain.ProductCreateRequest{Name: "Roti", SKU: "SKU-ROTI-02", SellingPrice: 12000})
		require.NoError(t, err)
	}

	stale, err := svc.Dashboard(ownerCtx)
	require.NoError(t, err)
	assert.Equal(t, 6, stale.ProductCount)
	assert.Empty(t, dashboards.values)
	assert.Equal(t, 2, dashboards.invalidations)

	fresh, err := svc.Dashboard(ownerCtx)
	require.NoError(t, err)
	assert.Equal(t, 7, fresh.ProductCount)
	assert.Len(t, dashboards.values, 1)
}
