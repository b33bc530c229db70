// Package ledger moves stock quantities between the warehouse balance of a
// location and the holdings of its sellers. Every method runs against the
// caller's transaction, so a failure anywhere rolls back all sides.
package ledger

import (
	"context"
	"fmt"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/store"
)

type Ledger struct {
	tx store.Tx
}

func New(tx store.Tx) *Ledger {
	return &Ledger{tx: tx}
}

// row is one locked balance: the warehouse row of a product or a seller's
// holding of it.
type row struct {
	name string
	lock func(ctx context.Context) (int, error)
	set  func(ctx context.Context, qty int) error
}

func (l *Ledger) warehouse(locationID, productID string) row {
	return row{
		name: "warehouse " + productID,
		lock: func(ctx context.Context) (int, error) {
			return l.tx.LockInventoryBalance(ctx, locationID, productID)
		},
		set: func(ctx context.Context, qty int) error {
			return l.tx.SetInventoryBalance(ctx, locationID, productID, qty)
		},
	}
}

func (l *Ledger) holding(locationID, sellerID, productID string) row {
	return row{
		name: "seller " + sellerID + " holding " + productID,
		lock: func(ctx context.Context) (int, error) {
			return l.tx.LockSellerHolding(ctx, locationID, sellerID, productID)
		},
		set: func(ctx context.Context, qty int) error {
			return l.tx.SetSellerHolding(ctx, locationID, sellerID, productID, qty)
		},
	}
}

// apply locks r, adds delta and writes the result back. A result below zero
// fails with short and leaves the row as it was.
func apply(ctx context.Context, r row, delta int, short apperr.Code) (int, error) {
	current, err := r.lock(ctx)
	if err != nil {
		return 0, fmt.Errorf("lock %s: %w", r.name, err)
	}
	next := current + delta
	if next < 0 {
		return current, apperr.Newf(short, "insufficient stock on %s: have %d, need %d", r.name, current, -delta)
	}
	if err := r.set(ctx, next); err != nil {
		return 0, fmt.Errorf("write %s: %w", r.name, err)
	}
	return next, nil
}

// AdjustInventory adds delta (which may be negative) to the warehouse balance
// and returns the new quantity.
func (l *Ledger) AdjustInventory(ctx context.Context, locationID, productID string, delta int) (int, error) {
	return apply(ctx, l.warehouse(locationID, productID), delta, apperr.InsufficientStock)
}

func (l *Ledger) TransferWarehouseToSeller(ctx context.Context, locationID, sellerID, productID string, qty int) error {
	if qty <= 0 {
		return apperr.Newf(apperr.BadQty, "transfer quantity must be positive, got %d", qty)
	}
	if _, err := apply(ctx, l.warehouse(locationID, productID), -qty, apperr.InsufficientStock); err != nil {
		return err
	}
	_, err := apply(ctx, l.holding(locationID, sellerID, productID), qty, apperr.InsufficientStock)
	return err
}

// RestoreToBoth puts qty back into the warehouse and into the seller's
// holding. It reverses DeductFromSeller plus DeductFromWarehouse.
func (l *Ledger) RestoreToBoth(ctx context.Context, locationID, sellerID, productID string, qty int) error {
	if qty <= 0 {
		return apperr.Newf(apperr.BadQty, "restore quantity must be positive, got %d", qty)
	}
	if _, err := apply(ctx, l.warehouse(locationID, productID), qty, apperr.InsufficientStock); err != nil {
		return err
	}
	_, err := apply(ctx, l.holding(locationID, sellerID, productID), qty, apperr.InsufficientSellerStock)
	return err
}

func (l *Ledger) DeductFromSeller(ctx context.Context, locationID, sellerID, productID string, qty int) error {
	if qty <= 0 {
		return apperr.Newf(apperr.BadQty, "deduct quantity must be positive, got %d", qty)
	}
	_, err := apply(ctx, l.holding(locationID, sellerID, productID), -qty, apperr.InsufficientSellerStock)
	return err
}

func (l *Ledger) DeductFromWarehouse(ctx context.Context, locationID, productID string, qty int) error {
	if qty <= 0 {
		return apperr.Newf(apperr.BadQty, "deduct quantity must be positive, got %d", qty)
	}
	_, err := apply(ctx, l.warehouse(locationID, productID), -qty, apperr.InsufficientInventoryStock)
	return err
}
