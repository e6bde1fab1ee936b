// Package pricing computes receipt totals from resolved cart lines: stacked
// discounts, jurisdiction tax and the processing fee split.
//
// All amounts are int64 minor units. Rates are decimals and every conversion
// back to minor units rounds half away from zero exactly once.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// RoundMinor rounds d half away from zero to whole minor units.
func RoundMinor(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// ApplyRate returns round(amount × rate).
func ApplyRate(amountMinor int64, rate decimal.Decimal) int64 {
	return RoundMinor(decimal.NewFromInt(amountMinor).Mul(rate))
}

// ApplyPercent returns round(amount × pct / 100).
func ApplyPercent(amountMinor int64, pct decimal.Decimal) int64 {
	return RoundMinor(decimal.NewFromInt(amountMinor).Mul(pct).Div(hundred))
}

func clampDecimal(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
