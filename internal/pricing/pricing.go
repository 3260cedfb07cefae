// Package pricing computes the monetary breakdown of a cart. It is pure:
// no state, no side effects, safe to call on every cart mutation for live
// previews.
package pricing

import (
	"github.com/shopspring/decimal"

	"tillpoint/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Compute maps a set of cart lines plus discount, tax and tip inputs to a
// totals breakdown.
//
// Arithmetic is exact until the final step: the subtotal is the unrounded
// sum of unitPrice x quantity, the discount and tax are derived from the
// unrounded intermediates, and only then is each field rounded half-up to
// two decimal places. Total is recombined from the already-rounded fields,
// so re-deriving it from a stored order's subtotal, discount, tax and tip
// always reproduces the stored value.
//
// Compute never fails; callers are responsible for pre-validating
// non-negative inputs.
func Compute(lines []domain.CartLine, discountPercent, taxRatePercent, tip decimal.Decimal) domain.Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}

	discount := subtotal.Mul(discountPercent).Div(hundred)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxRatePercent).Div(hundred)

	// Round exactly once per field. decimal.Round is half-away-from-zero,
	// which equals half-up for the non-negative amounts handled here.
	roundedSubtotal := subtotal.Round(2)
	roundedDiscount := discount.Round(2)
	roundedTax := tax.Round(2)
	roundedTip := tip.Round(2)

	return domain.Totals{
		Subtotal: roundedSubtotal,
		Discount: roundedDiscount,
		Tax:      roundedTax,
		Tip:      roundedTip,
		Total:    roundedSubtotal.Sub(roundedDiscount).Add(roundedTax).Add(roundedTip),
	}
}

// LoyaltyPoints returns the points earned for an order total at the given
// rate: floor(total x rate). A zero or negative rate earns nothing.
func LoyaltyPoints(total, ratePerUnit decimal.Decimal) int {
	if ratePerUnit.Sign() <= 0 {
		return 0
	}
	return int(total.Mul(ratePerUnit).Floor().IntPart())
}
