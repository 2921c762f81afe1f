// Package money centralizes the currency arithmetic used by cart and order
// pricing. All amounts are decimal with two fractional digits; binary floats
// are never used so per-line rounding stays bit-exact.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds an amount to two fractional digits (half away from zero).
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// ApplyPercentOff returns price reduced by percent, rounded to two digits.
func ApplyPercentOff(price decimal.Decimal, percent int) decimal.Decimal {
	factor := decimal.NewFromInt(int64(100 - percent))
	return price.Mul(factor).Div(hundred).Round(2)
}

// PercentOf returns percent of amount, rounded to two digits.
func PercentOf(amount decimal.Decimal, percent int) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(percent))).Div(hundred).Round(2)
}

// LineTotal multiplies a unit price by a quantity, rounded to two digits.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// MustFromString parses a decimal literal and panics on malformed input.
// Reserved for constants and tests.
func MustFromString(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}
