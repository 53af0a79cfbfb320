// Package money handles integer minor-currency amounts (cents) and their
// display formatting. All arithmetic stays in int64 cents; decimal is used
// only at the formatting boundary.
package money

import "github.com/shopspring/decimal"

// Cents is an amount in minor currency units.
type Cents = int64

// ToDecimal converts cents to a major-unit decimal (150 -> 1.50).
func ToDecimal(cents Cents) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatCents renders cents as a dollar string with two decimals:
// 150 -> "$1.50", -25 -> "-$0.25".
func FormatCents(cents Cents) string {
	d := ToDecimal(cents)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// Line computes a line total, unit price times quantity.
func Line(unitCents Cents, qty int) Cents {
	return unitCents * int64(qty)
}
