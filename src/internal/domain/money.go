package domain

import "github.com/shopspring/decimal"

// AmountScale is the number of fractional digits stored for every amount and
// balance (NUMERIC(12,2)).
const AmountScale = 2

// MaxAmount is the largest value a NUMERIC(12,2) column can hold.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ValidAmount reports whether amount is positive, has at most two fractional
// digits and fits the storage precision.
func ValidAmount(amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return false
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return false
	}
	return amount.LessThanOrEqual(MaxAmount)
}
