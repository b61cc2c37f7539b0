// Package money provides fixed-point monetary arithmetic for rial
// amounts. The regulator's schema carries all amounts as whole rials
// (no fractional unit), so every helper takes and returns int64 and
// delegates the intermediate arithmetic to shopspring/decimal.
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Amount multiplies unit fee by quantity: the pre-discount line amount.
func Amount(unitFee, quantity int64) int64 {
	return decimal.NewFromInt(unitFee).Mul(decimal.NewFromInt(quantity)).IntPart()
}

// VAT computes floor(amount * ratePercent / 100). The floor is the
// regulator's convention; rounding to nearest would drift from its
// validator by one rial on boundary amounts.
func VAT(amount, ratePercent int64) int64 {
	if ratePercent == 0 {
		return 0
	}
	rate := decimal.NewFromInt(ratePercent)
	return decimal.NewFromInt(amount).Mul(rate).Div(hundred).Floor().IntPart()
}

// LineTotal computes: postDiscount + vat.
func LineTotal(postDiscount, vat int64) int64 {
	return decimal.NewFromInt(postDiscount).Add(decimal.NewFromInt(vat)).IntPart()
}
