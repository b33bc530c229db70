package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/backend/internal/apperr"
)

func TestComputeLineWithoutDiscount(t *testing.T) {
	line, err := ComputeLine(2, 1000, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), line.Base)
	assert.Equal(t, int64(2000), line.Total)
	assert.Equal(t, int64(0), line.Discount)
}

func TestComputeLineRoundsPercentHalfUp(t *testing.T) {
	// 3 * 333 = 999; 5% of 999 = 49.95 -> 50
	line, err := ComputeLine(3, 333, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(50), line.Discount)
	assert.Equal(t, int64(949), line.Total)

	// 10% of 25 = 2.5 -> 3
	line, err = ComputeLine(1, 25, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), line.Discount)
	assert.Equal(t, int64(22), line.Total)
}

func TestComputeLineCombinesAndClampsDiscounts(t *testing.T) {
	line, err := ComputeLine(1, 1000, 10, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(150), line.Discount)
	assert.Equal(t, int64(850), line.Total)

	line, err = ComputeLine(1, 1000, 50, 900)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), line.Discount)
	assert.Equal(t, int64(0), line.Total)
}

func TestComputeLineClampsPercentRange(t *testing.T) {
	line, err := ComputeLine(1, 1000, 150, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, line.DiscountPercent)
	assert.Equal(t, int64(0), line.Total)

	line, err = ComputeLine(1, 1000, -5, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, line.DiscountPercent)
	assert.Equal(t, int64(1000), line.Total)
}

func TestComputeLineRejectsNegativeFlatDiscount(t *testing.T) {
	_, err := ComputeLine(1, 1000, 0, -1)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.BadDiscount))
}

func TestApplySaleDiscountMatchesLineRounding(t *testing.T) {
	sale, err := ApplySaleDiscount(999, 5, 0)
	require.NoError(t, err)
	line, err := ComputeLine(1, 999, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, line.Total, sale.Total)
	assert.Equal(t, int64(949), sale.Total)
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, int64(0), PercentOf(0, 50))
	assert.Equal(t, int64(1), PercentOf(1, 50))
	assert.Equal(t, int64(0), PercentOf(1, 49))
	assert.Equal(t, int64(200), PercentOf(2000, 10))
}

func TestComputeLineRejectsOverflowingAmounts(t *testing.T) {
	_, err := ComputeLine(3, math.MaxInt64/2, 0, 0)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.BadQty))

	line, err := ComputeLine(1, math.MaxInt64, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), line.Total)

	line, err = ComputeLine(1, math.MaxInt64, 10, math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, int64(0), line.Total)

	_, err = Add(math.MaxInt64, 1)
	assert.True(t, apperr.Is(err, apperr.BadQty))
	sum, err := Add(40, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sum)
}
