// Package utils holds small decimal helpers shared across the simulation
// engine and its wire boundary.
package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinDecimal returns the minimum of two decimals.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MaxDecimal returns the maximum of two decimals.
func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// ClampDecimal clamps a value between min and max.
func ClampDecimal(value, min, max decimal.Decimal) decimal.Decimal {
	return MinDecimal(MaxDecimal(value, min), max)
}

// FormatMarketCap renders a market cap with T/B suffixes, falling back to a
// plain dollar figure below a billion.
func FormatMarketCap(val decimal.Decimal) string {
	f, _ := val.Float64()
	switch {
	case f >= 1e12:
		return fmt.Sprintf("$%.2fT", f/1e12)
	case f >= 1e9:
		return fmt.Sprintf("$%.2fB", f/1e9)
	default:
		return fmt.Sprintf("$%.2f", f)
	}
}
