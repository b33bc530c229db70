package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in -short mode")
	}
	ctx := context.Background()

	databaseURL := os.Getenv("RETAILPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)

		container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("retailpos_test"),
			tcpostgres.WithUsername("retailpos"),
			tcpostgres.WithPassword("retailpos"),
			tcpostgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = container.Terminate(ctx) })

		databaseURL, err = container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	s, err := New(ctx, databaseURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func seedProduct(t *testing.T, s *Store, locationID string, stock int) domain.Product {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	stamp := now.UnixNano()
	product := domain.Product{
		ID:                 fmt.Sprintf("prd-it-%d", stamp),
		LocationID:         locationID,
		Name:               "Produk Integrasi",
		SKU:                fmt.Sprintf("SKU-IT-%d", stamp),
		Unit:               "pcs",
		SellingPrice:       12000,
		CostPrice:          9000,
		MaxDiscountPercent: 10,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err := s.WithinTx(ctx, func(tx store.Tx) error {
		if err := tx.CreateProduct(ctx, product); err != nil {
			return err
		}
		if _, err := tx.LockInventoryBalance(ctx, locationID, product.ID); err != nil {
			return err
		}
		return tx.SetInventoryBalance(ctx, locationID, product.ID, stock)
	})
	require.NoError(t, err)
	return product
}

func TestFailedTransactionLeavesBalancesUntouched(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	locationID := fmt.Sprintf("loc-it-%d", time.Now().UnixNano())
	product := seedProduct(t, s, locationID, 10)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx store.Tx) error {
		if _, err := tx.LockInventoryBalance(ctx, locationID, product.ID); err != nil {
			return err
		}
		if err := tx.SetInventoryBalance(ctx, locationID, product.ID, 3); err != nil {
			return err
		}
		if _, err := tx.LockSellerHolding(ctx, locationID, "seller-1", product.ID); err != nil {
			return err
		}
		if err := tx.SetSellerHolding(ctx, locationID, "seller-1", product.ID, 7); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = s.View(ctx, func(q store.Tx) error {
		balances, err := q.ListInventoryBalances(ctx, locationID)
		if err != nil {
			return err
		}
		require.Len(t, balances, 1)
		assert.Equal(t, 10, balances[0].QtyOnHand)

		holdings, err := q.ListSellerHoldings(ctx, locationID, "seller-1")
		if err != nil {
			return err
		}
		assert.Empty(t, holdings)
		return nil
	})
	require.NoError(t, err)
}

func TestNegativeBalanceIsRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	locationID := fmt.Sprintf("loc-it-%d", time.Now().UnixNano())
	product := seedProduct(t, s, locationID, 2)

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		return tx.SetInventoryBalance(ctx, locationID, product.ID, -1)
	})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestSaleRoundTripAndSinglePaymentPerSale(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	locationID := fmt.Sprintf("loc-it-%d", time.Now().UnixNano())
	product := seedProduct(t, s, locationID, 5)
	now := time.Now().UTC().Truncate(time.Microsecond)

	sale := domain.Sale{
		ID:          fmt.Sprintf("sale-it-%d", now.UnixNano()),
		LocationID:  locationID,
		SellerID:    "seller-1",
		Status:      domain.SaleStatusAwaitingPaymentRecord,
		Subtotal:    24000,
		TotalAmount: 24000,
		CreatedAt:   now,
		UpdatedAt:   now,
		Items: []domain.SaleItem{
			{ProductID: product.ID, Qty: 2, UnitPrice: 12000, LineTotal: 24000},
		},
	}
	payment := domain.Payment{
		ID:         fmt.Sprintf("pay-it-%d", now.UnixNano()),
		LocationID: locationID,
		SaleID:     sale.ID,
		CashierID:  "cashier-1",
		Amount:     24000,
		Method:     domain.MethodCash,
		CreatedAt:  now,
	}

	require.NoError(t, s.WithinTx(ctx, func(tx store.Tx) error {
		if err := tx.CreateSale(ctx, sale); err != nil {
			return err
		}
		return tx.CreatePayment(ctx, payment)
	}))

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		dup := payment
		dup.ID = payment.ID + "-dup"
		return tx.CreatePayment(ctx, dup)
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	err = s.View(ctx, func(q store.Tx) error {
		got, err := q.GetSale(ctx, locationID, sale.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, domain.SaleStatusAwaitingPaymentRecord, got.Status)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 2, got.Items[0].Qty)
		assert.Equal(t, int64(24000), got.Items[0].LineTotal)

		paid, err := q.GetPaymentBySale(ctx, locationID, sale.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, payment.ID, paid.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestOnlyOneOpenCashSessionPerCashier(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	locationID := fmt.Sprintf("loc-it-%d", time.Now().UnixNano())
	now := time.Now().UTC()

	open := func(id string) error {
		return s.WithinTx(ctx, func(tx store.Tx) error {
			return tx.CreateCashSession(ctx, domain.CashSession{
				ID:             id,
				LocationID:     locationID,
				CashierID:      "cashier-1",
				Status:         domain.SessionStatusOpen,
				OpeningBalance: 50000,
				OpenedAt:       now,
			})
		})
	}

	require.NoError(t, open(locationID+"-s1"))
	assert.ErrorIs(t, open(locationID+"-s2"), store.ErrConflict)

	err := s.View(ctx, func(q store.Tx) error {
		_, err := q.GetOpenCashSession(ctx, locationID, "cashier-2")
		return err
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPeriodTotalsAndMessageThreads(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	locationID := fmt.Sprintf("loc-it-%d", time.Now().UnixNano())
	product := seedProduct(t, s, locationID, 5)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	sale := domain.Sale{
		ID:          fmt.Sprintf("sale-it-%d", time.Now().UnixNano()),
		LocationID:  locationID,
		SellerID:    "seller-1",
		Status:      domain.SaleStatusDraft,
		Subtotal:    12000,
		TotalAmount: 12000,
		CreatedAt:   day.Add(9 * time.Hour),
		UpdatedAt:   day.Add(9 * time.Hour),
		Items:       []domain.SaleItem{{ProductID: product.ID, Qty: 1, UnitPrice: 12000, LineTotal: 12000}},
	}
	require.NoError(t, s.WithinTx(ctx, func(tx store.Tx) error {
		if err := tx.CreateSale(ctx, sale); err != nil {
			return err
		}
		for i, text := range []string{"first", "second"} {
			err := tx.CreateMessage(ctx, domain.Message{
				ID:         fmt.Sprintf("msg-it-%d-%d", time.Now().UnixNano(), i),
				LocationID: locationID,
				EntityType: domain.EntitySale,
				EntityID:   sale.ID,
				UserID:     "seller-1",
				Role:       domain.RoleSeller,
				Message:    text,
				CreatedAt:  day.Add(time.Duration(10+i) * time.Hour),
			})
			if err != nil {
				return err
			}
		}
		return nil
	}))

	err := s.View(ctx, func(q store.Tx) error {
		totals, err := q.GetPeriodTotals(ctx, locationID, day, day.AddDate(0, 0, 1))
		if err != nil {
			return err
		}
		assert.Equal(t, domain.PeriodTotals{SalesCount: 1, SalesTotal: 12000}, totals)

		later, err := q.GetPeriodTotals(ctx, locationID, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2))
		if err != nil {
			return err
		}
		assert.Zero(t, later)

		thread, err := q.ListMessages(ctx, locationID, domain.EntitySale, sale.ID, 10)
		if err != nil {
			return err
		}
		require.Len(t, thread, 2)
		assert.Equal(t, "first", thread[0].Message)
		return nil
	})
	require.NoError(t, err)
}
