package orders

import "boletera/internal/shared/apperrors"

// Allocation is the effective revenue split of a settled order: what part of
// the amount actually charged counts as ticket revenue and what part as
// service fee, after an opaque discount compressed both proportionally.
type Allocation struct {
	SubtotalEffective   int64
	ServiceFeeEffective int64
	Items               []ItemAllocation
}

type ItemAllocation struct {
	ItemID             int
	UnitPriceEffective int64
	UnitFeeEffective   int64
}

// Allocate splits total across the subtotal and fee components in proportion
// to their gross values, rounding half up, with the fee derived by
// subtraction so the two always sum to total exactly. Item-level values use
// the same ratio; the last item absorbs the rounding residue so item sums
// reconcile with the order-level split.
//
// Pure and deterministic: same inputs, same split.
func Allocate(subtotal, fee, total int64, items []OrderItem) (*Allocation, error) {
	if subtotal < 0 || fee < 0 || total < 0 {
		return nil, apperrors.New(apperrors.KindValidation, "allocation amounts must not be negative")
	}
	gross := subtotal + fee
	if total > gross {
		return nil, apperrors.New(apperrors.KindValidation, "total exceeds gross amount")
	}

	alloc := &Allocation{Items: make([]ItemAllocation, len(items))}
	if gross == 0 {
		return alloc, nil
	}

	alloc.SubtotalEffective = roundHalfUpDiv(subtotal*total, gross)
	alloc.ServiceFeeEffective = total - alloc.SubtotalEffective

	var priceSum, feeSum int64
	for i, item := range items {
		a := ItemAllocation{
			ItemID:             i,
			UnitPriceEffective: roundHalfUpDiv(item.UnitPrice*total, gross),
			UnitFeeEffective:   roundHalfUpDiv(item.UnitFee*total, gross),
		}
		if i == len(items)-1 {
			a.UnitPriceEffective = alloc.SubtotalEffective - priceSum
			a.UnitFeeEffective = alloc.ServiceFeeEffective - feeSum
		}
		priceSum += a.UnitPriceEffective
		feeSum += a.UnitFeeEffective
		alloc.Items[i] = a
	}
	return alloc, nil
}

// roundHalfUpDiv divides num by den rounding halves away from zero.
// Both arguments must be non-negative.
func roundHalfUpDiv(num, den int64) int64 {
	return (num*2 + den) / (den * 2)
}
