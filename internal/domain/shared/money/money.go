package money

import "math"

// Tolerance is the largest absolute difference, in currency units, at which two
// prices are still considered equal.
const Tolerance = 0.01

// Equal compares two amounts using Tolerance. A tiny epsilon absorbs binary
// float noise so that 300.00 vs 300.01 still counts as a match.
func Equal(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance+1e-9
}

// MinorUnits converts an amount to integer cents as payment providers expect.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Round2 rounds to two decimals for presentation.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
