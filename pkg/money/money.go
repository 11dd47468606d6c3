// Package money formats integer cent amounts for display.
package money

import "github.com/shopspring/decimal"

// FromCents converts an amount in cents into a decimal value.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Format renders cents as a dollar string such as "$49.99".
func Format(cents int64) string {
	d := FromCents(cents)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
