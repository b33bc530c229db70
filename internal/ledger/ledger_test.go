package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/store/memory"
)

const loc = memory.DefaultLocationID

func quantities(t *testing.T, s store.Store, sellerID, productID string) (warehouse int, holding int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.View(ctx, func(q store.Tx) error {
		balances, err := q.ListInventoryBalances(ctx, loc)
		require.NoError(t, err)
		for _, b := range balances {
			if b.ProductID == productID {
				warehouse = b.QtyOnHand
			}
		}
		holdings, err := q.ListSellerHoldings(ctx, loc, sellerID)
		require.NoError(t, err)
		for _, h := range holdings {
			if h.ProductID == productID {
				holding = h.QtyOnHand
			}
		}
		return nil
	}))
	return warehouse, holding
}

func TestTransferConservesUnits(t *testing.T) {
	s := memory.NewSeeded()
	ctx := context.Background()

	require.NoError(t, s.WithinTx(ctx, func(tx store.Tx) error {
		return New(tx).TransferWarehouseToSeller(ctx, loc, "seller-1", "prd-gula", 15)
	}))

	warehouse, holding := quantities(t, s, "seller-1", "prd-gula")
	assert.Equal(t, 25, warehouse)
	assert.Equal(t, 15, holding)
	assert.Equal(t, 40, warehouse+holding)
}

func TestTransferBeyondWarehouseFailsAndKeepsBalances(t *testing.T) {
	s := memory.NewSeeded()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		return New(tx).TransferWarehouseToSeller(ctx, loc, "seller-1", "prd-gula", 41)
	})
	assert.True(t, apperr.Is(err, apperr.InsufficientStock))

	warehouse, holding := quantities(t, s, "seller-1", "prd-gula")
	assert.Equal(t, 40, warehouse)
	assert.Zero(t, holding)
}

func TestAdjustInventory(t *testing.T) {
	s := memory.NewSeeded()
	ctx := context.Background()

	var qty int
	require.NoError(t, s.WithinTx(ctx, func(tx store.Tx) error {
		var err error
		qty, err = New(tx).AdjustInventory(ctx, loc, "prd-telur", -30)
		return err
	}))
	assert.Zero(t, qty)

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		_, err := New(tx).AdjustInventory(ctx, loc, "prd-telur", -1)
		return err
	})
	assert.True(t, apperr.Is(err, apperr.InsufficientStock))

	require.NoError(t, s.WithinTx(ctx, func(tx store.Tx) error {
		var err error
		qty, err = New(tx).AdjustInventory(ctx, loc, "prd-baru", 5)
		return err
	}))
	assert.Equal(t, 5, qty)
}

func TestDeductsUseDistinctCodes(t *testing.T) {
	s := memory.NewSeeded()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		return New(tx).DeductFromSeller(ctx, loc, "seller-1", "prd-kopi", 1)
	})
	assert.True(t, apperr.Is(err, apperr.InsufficientSellerStock))

	err = s.WithinTx(ctx, func(tx store.Tx) error {
		return New(tx).DeductFromWarehouse(ctx, loc, "prd-kopi", 201)
	})
	assert.True(t, apperr.Is(err, apperr.InsufficientInventoryStock))
}

func TestDeductThenRestoreRoundTrips(t *testing.T) {
	s := memory.NewSeeded()
	ctx := context.Background()

	require.NoError(t, s.WithinTx(ctx, func(tx store.Tx) error {
		return New(tx).TransferWarehouseToSeller(ctx, loc, "seller-1", "prd-kopi", 10)
	}))
	require.NoError(t, s.WithinTx(ctx, func(tx store.Tx) error {
		l := New(tx)
		if err := l.DeductFromSeller(ctx, loc, "seller-1", "prd-kopi", 4); err != nil {
			return err
		}
		return l.DeductFromWarehouse(ctx, loc, "prd-kopi", 4)
	}))

	warehouse, holding := quantities(t, s, "seller-1", "prd-kopi")
	assert.Equal(t, 186, warehouse)
	assert.Equal(t, 6, holding)

	require.NoError(t, s.WithinTx(ctx, func(tx store.Tx) error {
		return New(tx).RestoreToBoth(ctx, loc, "seller-1", "prd-kopi", 4)
	}))

	warehouse, holding = quantities(t, s, "seller-1", "prd-kopi")
	assert.Equal(t, 190, warehouse)
	assert.Equal(t, 10, holding)
}

func TestNonPositiveQuantitiesAreRejected(t *testing.T) {
	s := memory.NewSeeded()
	ctx := context.Background()

	for name, op := range map[string]func(l *Ledger) error{
		"transfer": func(l *Ledger) error { return l.TransferWarehouseToSeller(ctx, loc, "seller-1", "prd-mie", 0) },
		"restore":  func(l *Ledger) error { return l.RestoreToBoth(ctx, loc, "seller-1", "prd-mie", -2) },
		"seller":   func(l *Ledger) error { return l.DeductFromSeller(ctx, loc, "seller-1", "prd-mie", 0) },
		"stock":    func(l *Ledger) error { return l.DeductFromWarehouse(ctx, loc, "prd-mie", -1) },
	} {
		err := s.WithinTx(ctx, func(tx store.Tx) error { return op(New(tx)) })
		assert.True(t, apperr.Is(err, apperr.BadQty), name)
	}
}
