package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/store/memory"
)

func fixedClock(at time.Time) Option {
	return WithClock(func() time.Time { return at })
}

func TestReportTotalsFollowThePeriod(t *testing.T) {
	svc, _ := newTestService(t, fixedClock(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)))
	stockSeller(t, svc, "prd-mie", 5)

	paid := createSale(t, svc, "prd-mie", 2)
	_, err := svc.MarkSale(sellerCtx, paid.ID, domain.SaleMarkRequest{Paid: true})
	require.NoError(t, err)
	_, err = svc.RecordPayment(cashierCtx, paid.ID, domain.PaymentRecordRequest{Amount: paid.TotalAmount})
	require.NoError(t, err)
	createSale(t, svc, "prd-mie", 1)

	daily, err := svc.Report(ownerCtx, "daily", "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, memory.DefaultLocationID, daily.LocationID)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), daily.To)
	assert.Equal(t, domain.PeriodTotals{SalesCount: 2, SalesTotal: 10500, PaymentsCount: 1, PaymentsTotal: 7000}, daily.Totals)

	require.Len(t, daily.Inventory, 6)
	var mie domain.InventoryValuation
	for _, row := range daily.Inventory {
		if row.ProductID == "prd-mie" {
			mie = row
		}
	}
	assert.Equal(t, 113, mie.QtyOnHand)
	assert.Equal(t, int64(113*2700), mie.StockValueCost)
	assert.Equal(t, int64(113*3500), mie.StockValueSell)

	require.Len(t, daily.Holdings, 1)
	assert.Equal(t, "seller-1", daily.Holdings[0].SellerID)
	assert.Equal(t, 3, daily.Holdings[0].QtyOnHand)

	nextDay, err := svc.Report(ownerCtx, "daily", "2026-03-11")
	require.NoError(t, err)
	assert.Zero(t, nextDay.Totals)

	weekly, err := svc.Report(ownerCtx, "weekly", "2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, 2, weekly.Totals.SalesCount)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), weekly.To)
	assert.Empty(t, weekly.Inventory)
	assert.Empty(t, weekly.Holdings)

	monthly, err := svc.Report(ownerCtx, "MONTHLY", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), monthly.From)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), monthly.To)
	assert.Equal(t, int64(7000), monthly.Totals.PaymentsTotal)

	february, err := svc.Report(ownerCtx, "monthly", "2026-02")
	require.NoError(t, err)
	assert.Zero(t, february.Totals.SalesCount)
}

func TestReportRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)

	cases := map[string][2]string{
		"unknown period":  {"yearly", ""},
		"day month order": {"daily", "10-03-2026"},
		"weekly month":    {"weekly", "2026-03"},
		"monthly day":     {"monthly", "2026-03-01"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Report(ownerCtx, tc[0], tc[1])
			requireCode(t, err, apperr.Invalid)
		})
	}
}

func TestCustomerHistoryListsRecentSalesNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	customer, err := svc.CreateCustomer(sellerCtx, domain.CustomerCreateRequest{Name: "Bu Sari", Phone: "0812000111"})
	require.NoError(t, err)

	var ids []string
	for i := 0; i < customerHistoryLimit+1; i++ {
		sale, err := svc.CreateSale(sellerCtx, domain.SaleCreateRequest{
			CustomerID: customer.ID,
			Items:      []domain.SaleLineRequest{{ProductID: "prd-kopi", Qty: 1}},
		})
		require.NoError(t, err)
		ids = append(ids, sale.ID)
	}
	createSale(t, svc, "prd-kopi", 1)

	history, err := svc.CustomerHistory(cashierCtx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, history.Customer.ID)
	require.Len(t, history.Sales, customerHistoryLimit)
	assert.Equal(t, ids[len(ids)-1], history.Sales[0].ID)
	assert.Equal(t, ids[1], history.Sales[len(history.Sales)-1].ID)
	assert.Equal(t, int64(2600), history.Sales[0].TotalAmount)
	assert.Equal(t, "seller-1", history.Sales[0].SellerID)

	_, err = svc.CustomerHistory(cashierCtx, "cust-missing")
	requireCode(t, err, apperr.NotFound)
}
