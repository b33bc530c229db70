// Package money holds the integer pricing arithmetic shared by sale lines
// and sale-level discounts. Amounts are in the smallest currency unit.
package money

import (
	"math"

	"github.com/shopspring/decimal"

	"retailpos/backend/internal/apperr"
)

var hundred = decimal.NewFromInt(100)

// Line is the result of applying a percentage and a flat discount to a base amount.
type Line struct {
	Base            int64 `json:"base"`
	DiscountPercent int   `json:"discount_percent"`
	DiscountAmount  int64 `json:"discount_amount"`
	Discount        int64 `json:"discount"`
	Total           int64 `json:"total"`
}

// ComputeLine prices qty units at unitPrice and applies the line discounts.
func ComputeLine(qty int, unitPrice int64, discountPercent int, discountAmount int64) (Line, error) {
	if qty < 0 || unitPrice < 0 {
		return Line{}, apperr.New(apperr.BadQty, "quantity and unit price must not be negative")
	}
	if unitPrice > 0 && int64(qty) > math.MaxInt64/unitPrice {
		return Line{}, apperr.Newf(apperr.BadQty, "line amount for %d units at %d overflows", qty, unitPrice)
	}
	return discount(int64(qty)*unitPrice, discountPercent, discountAmount)
}

// ApplySaleDiscount applies a sale-level discount to the sum of line totals.
func ApplySaleDiscount(subtotal int64, discountPercent int, discountAmount int64) (Line, error) {
	if subtotal < 0 {
		return Line{}, apperr.New(apperr.BadDiscount, "subtotal must not be negative")
	}
	return discount(subtotal, discountPercent, discountAmount)
}

// Add sums two non-negative amounts, rejecting a result that does not fit.
func Add(a, b int64) (int64, error) {
	if a > math.MaxInt64-b {
		return 0, apperr.New(apperr.BadQty, "amount total overflows")
	}
	return a + b, nil
}

// PercentOf returns round-half-up(amount * pct / 100).
func PercentOf(amount int64, pct int) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(hundred).
		Round(0).
		IntPart()
}

func discount(base int64, discountPercent int, discountAmount int64) (Line, error) {
	if discountAmount < 0 {
		return Line{}, apperr.New(apperr.BadDiscount, "discount amount must not be negative")
	}

	pct := ClampPercent(discountPercent)
	total := clamp(PercentOf(base, pct), 0, base)
	if discountAmount > base-total {
		total = base
	} else {
		total += discountAmount
	}

	line := Line{
		Base:            base,
		DiscountPercent: pct,
		DiscountAmount:  discountAmount,
		Discount:        total,
		Total:           base - total,
	}
	if line.Total < 0 {
		return Line{}, apperr.New(apperr.BadDiscount, "discount exceeds line amount")
	}
	return line, nil
}

// ClampPercent bounds a percentage to [0, 100].
func ClampPercent(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
