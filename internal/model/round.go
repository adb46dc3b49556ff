package model

import "github.com/shopspring/decimal"

// Round1 rounds half-to-even at one decimal, matching the desk spreadsheets.
func Round1(x float64) float64 {
	return decimal.NewFromFloat(x).RoundBank(1).InexactFloat64()
}

// Sum adds exactly before converting back, so totals of 1-dp values stay 1-dp.
func Sum(xs []float64) float64 {
	total := decimal.Zero
	for _, x := range xs {
		total = total.Add(decimal.NewFromFloat(x))
	}
	return total.InexactFloat64()
}

func Negate(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = -x
	}
	return out
}
