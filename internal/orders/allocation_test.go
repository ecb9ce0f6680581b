package orders

import (
	"testing"

	"boletera/internal/shared/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundHalfUpDiv(t *testing.T) {
	tests := []struct {
		name string
		num  int64
		den  int64
		want int64
	}{
		{"exact", 100, 10, 10},
		{"below half rounds down", 104, 10, 10},
		{"half rounds up", 105, 10, 11},
		{"above half rounds up", 106, 10, 11},
		{"zero", 0, 10, 0},
		{"one of three", 1, 3, 0},
		{"two of three", 2, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roundHalfUpDiv(tt.num, tt.den))
		})
	}
}

func TestAllocate_ProportionalSplit(t *testing.T) {
	// 8500 subtotal + 1500 fee, 2000 discount -> 8000 charged.
	items := []OrderItem{
		{UnitPrice: 8500, UnitFee: 1500},
	}
	alloc, err := Allocate(8500, 1500, 8000, items)
	require.NoError(t, err)

	assert.Equal(t, int64(6800), alloc.SubtotalEffective)
	assert.Equal(t, int64(1200), alloc.ServiceFeeEffective)
	assert.Equal(t, int64(8000), alloc.SubtotalEffective+alloc.ServiceFeeEffective)
}

func TestAllocate_NoDiscountIsIdentity(t *testing.T) {
	items := []OrderItem{
		{UnitPrice: 5000, UnitFee: 750},
		{UnitPrice: 3000, UnitFee: 450},
	}
	alloc, err := Allocate(8000, 1200, 9200, items)
	require.NoError(t, err)

	assert.Equal(t, int64(8000), alloc.SubtotalEffective)
	assert.Equal(t, int64(1200), alloc.ServiceFeeEffective)
	assert.Equal(t, int64(5000), alloc.Items[0].UnitPriceEffective)
	assert.Equal(t, int64(750), alloc.Items[0].UnitFeeEffective)
	assert.Equal(t, int64(3000), alloc.Items[1].UnitPriceEffective)
	assert.Equal(t, int64(450), alloc.Items[1].UnitFeeEffective)
}

func TestAllocate_FullDiscount(t *testing.T) {
	items := []OrderItem{{UnitPrice: 5000, UnitFee: 750}}
	alloc, err := Allocate(5000, 750, 0, items)
	require.NoError(t, err)

	assert.Equal(t, int64(0), alloc.SubtotalEffective)
	assert.Equal(t, int64(0), alloc.ServiceFeeEffective)
	assert.Equal(t, int64(0), alloc.Items[0].UnitPriceEffective)
	assert.Equal(t, int64(0), alloc.Items[0].UnitFeeEffective)
}

func TestAllocate_ZeroGross(t *testing.T) {
	alloc, err := Allocate(0, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), alloc.SubtotalEffective)
	assert.Equal(t, int64(0), alloc.ServiceFeeEffective)
}

func TestAllocate_ItemSumsReconcile(t *testing.T) {
	// Awkward amounts so per-item rounding leaves a residue.
	items := []OrderItem{
		{UnitPrice: 3333, UnitFee: 500},
		{UnitPrice: 3333, UnitFee: 500},
		{UnitPrice: 3334, UnitFee: 500},
	}
	alloc, err := Allocate(10000, 1500, 10789, items)
	require.NoError(t, err)

	var priceSum, feeSum int64
	for _, a := range alloc.Items {
		priceSum += a.UnitPriceEffective
		feeSum += a.UnitFeeEffective
	}
	assert.Equal(t, alloc.SubtotalEffective, priceSum)
	assert.Equal(t, alloc.ServiceFeeEffective, feeSum)
	assert.Equal(t, int64(10789), priceSum+feeSum)
}

func TestAllocate_Deterministic(t *testing.T) {
	items := []OrderItem{
		{UnitPrice: 7777, UnitFee: 1166},
		{UnitPrice: 2223, UnitFee: 334},
	}
	first, err := Allocate(10000, 1500, 9000, items)
	require.NoError(t, err)
	second, err := Allocate(10000, 1500, 9000, items)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAllocate_RejectsInvalidInputs(t *testing.T) {
	_, err := Allocate(-1, 0, 0, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = Allocate(100, 15, 200, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}
