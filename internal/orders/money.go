package orders

import "github.com/shopspring/decimal"

// TotalTolerance is the largest accepted gap between a supplied total and
// quantity × unit price.
const TotalTolerance = 0.01

var tolerance = decimal.NewFromFloat(TotalTolerance)

// ComputeTotal returns quantity × unitPrice rounded to cents.
func ComputeTotal(quantity int, unitPrice float64) float64 {
	return decimal.NewFromInt(int64(quantity)).
		Mul(decimal.NewFromFloat(unitPrice)).
		Round(2).
		InexactFloat64()
}

// TotalMatches reports whether o.Total agrees with its quantity and unit price.
func TotalMatches(o Order) bool {
	want := decimal.NewFromFloat(ComputeTotal(o.Quantity, o.UnitPrice))
	got := decimal.NewFromFloat(o.Total)
	return got.Sub(want).Abs().LessThanOrEqual(tolerance)
}

// SumTotals adds order totals without float drift.
func SumTotals(list []Order) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range list {
		sum = sum.Add(decimal.NewFromFloat(o.Total))
	}
	return sum
}
