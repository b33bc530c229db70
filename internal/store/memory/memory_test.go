package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/store"
)

func TestWithinTxDiscardsWorkOnError(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		if err := tx.SetInventoryBalance(ctx, DefaultLocationID, "prd-mie", 1); err != nil {
			return err
		}
		if err := tx.SetSellerHolding(ctx, DefaultLocationID, "seller-1", "prd-mie", 119); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.View(ctx, func(q store.Tx) error {
		qty, err := q.LockInventoryBalance(ctx, DefaultLocationID, "prd-mie")
		require.NoError(t, err)
		assert.Equal(t, 120, qty)

		holdings, err := q.ListSellerHoldings(ctx, DefaultLocationID, "seller-1")
		require.NoError(t, err)
		assert.Empty(t, holdings)
		return nil
	}))
}

func TestLockCreatesZeroBalanceOnFirstTouch(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.WithinTx(ctx, func(tx store.Tx) error {
		qty, err := tx.LockSellerHolding(ctx, "loc-1", "seller-1", "prd-x")
		require.NoError(t, err)
		assert.Zero(t, qty)
		return nil
	}))

	require.NoError(t, s.View(ctx, func(q store.Tx) error {
		holdings, err := q.ListSellerHoldings(ctx, "loc-1", "")
		require.NoError(t, err)
		require.Len(t, holdings, 1)
		assert.Zero(t, holdings[0].QtyOnHand)
		return nil
	}))
}

func TestNegativeBalancesAreRejected(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		return tx.SetInventoryBalance(ctx, DefaultLocationID, "prd-mie", -1)
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	err = s.WithinTx(ctx, func(tx store.Tx) error {
		return tx.SetSellerHolding(ctx, DefaultLocationID, "seller-1", "prd-mie", -5)
	})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestUniquenessConstraints(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.WithinTx(ctx, func(tx store.Tx) error {
		return tx.CreatePayment(ctx, domain.Payment{ID: "pay-1", LocationID: DefaultLocationID, SaleID: "sale-1", Amount: 10, CreatedAt: now})
	}))
	err := s.WithinTx(ctx, func(tx store.Tx) error {
		return tx.CreatePayment(ctx, domain.Payment{ID: "pay-2", LocationID: DefaultLocationID, SaleID: "sale-1", Amount: 10, CreatedAt: now})
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	err = s.WithinTx(ctx, func(tx store.Tx) error {
		return tx.CreateProduct(ctx, domain.Product{ID: "prd-dup", LocationID: DefaultLocationID, SKU: "sku-mie-01"})
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	session := domain.CashSession{ID: "ses-1", LocationID: DefaultLocationID, CashierID: "cashier-1", Status: domain.SessionStatusOpen, OpenedAt: now}
	require.NoError(t, s.WithinTx(ctx, func(tx store.Tx) error { return tx.CreateCashSession(ctx, session) }))
	session.ID = "ses-2"
	err = s.WithinTx(ctx, func(tx store.Tx) error { return tx.CreateCashSession(ctx, session) })
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestListSalesNewestFirstWithFilter(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.WithinTx(ctx, func(tx store.Tx) error {
		for i, status := range []string{domain.SaleStatusDraft, domain.SaleStatusPending, domain.SaleStatusDraft} {
			sale := domain.Sale{
				ID:         []string{"s1", "s2", "s3"}[i],
				LocationID: "loc-1",
				SellerID:   "seller-1",
				Status:     status,
				CreatedAt:  now.Add(time.Duration(i) * time.Second),
			}
			if err := tx.CreateSale(ctx, sale); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.View(ctx, func(q store.Tx) error {
		drafts, err := q.ListSales(ctx, domain.SaleFilter{LocationID: "loc-1", Status: domain.SaleStatusDraft, Limit: 10})
		require.NoError(t, err)
		require.Len(t, drafts, 2)
		assert.Equal(t, "s3", drafts[0].ID)
		assert.Equal(t, "s1", drafts[1].ID)

		limited, err := q.ListSales(ctx, domain.SaleFilter{LocationID: "loc-1", Limit: 1})
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, "s3", limited[0].ID)
		return nil
	}))
}

func TestSeededAtScopesCatalogToLocation(t *testing.T) {
	s := NewSeededAt("branch-2")
	ctx := context.Background()

	require.NoError(t, s.View(ctx, func(q store.Tx) error {
		products, err := q.ListProducts(ctx, "branch-2")
		require.NoError(t, err)
		assert.Len(t, products, 6)

		others, err := q.ListProducts(ctx, DefaultLocationID)
		require.NoError(t, err)
		assert.Empty(t, others)

		_, err = q.GetProduct(ctx, DefaultLocationID, "prd-mie")
		assert.ErrorIs(t, err, store.ErrNotFound)
		return nil
	}))
}
