// Package reports derives revenue summaries and profit estimates from the
// order set.
package reports

import "github.com/shopspring/decimal"

// ProfitOptions are the percentages the estimate is based on.
type ProfitOptions struct {
	ExpensePercentage  float64 `json:"expensePercentage"`
	TargetProfitMargin float64 `json:"targetProfitMargin"`
}

// DefaultProfitOptions apply when no settings document exists.
var DefaultProfitOptions = ProfitOptions{ExpensePercentage: 70, TargetProfitMargin: 30}

// ProfitStats is a derived estimate; it holds no state of its own.
type ProfitStats struct {
	Revenue             float64 `json:"revenue"`
	Expenses            float64 `json:"expenses"`
	Profit              float64 `json:"profit"`
	ProfitMarginPercent float64 `json:"profitMarginPercent"`
	TargetProfit        float64 `json:"targetProfit"`
}

var hundred = decimal.NewFromInt(100)

// CalculateProfitStats estimates expenses and profit for revenue. Profit is
// never negative and the margin is 0 when there is no revenue.
func CalculateProfitStats(revenue, expensePercentage, targetProfitMargin float64) ProfitStats {
	rev := decimal.NewFromFloat(revenue)
	expenses := rev.Mul(decimal.NewFromFloat(expensePercentage)).Div(hundred)
	profit := decimal.Max(decimal.Zero, rev.Sub(expenses))
	margin := decimal.Zero
	if rev.IsPositive() {
		margin = profit.Div(rev).Mul(hundred)
	}
	target := rev.Mul(decimal.NewFromFloat(targetProfitMargin)).Div(hundred)

	return ProfitStats{
		Revenue:             rev.Round(2).InexactFloat64(),
		Expenses:            expenses.Round(2).InexactFloat64(),
		Profit:              profit.Round(2).InexactFloat64(),
		ProfitMarginPercent: margin.Round(2).InexactFloat64(),
		TargetProfit:        target.Round(2).InexactFloat64(),
	}
}

// Stats applies the options to revenue.
func (o ProfitOptions) Stats(revenue float64) ProfitStats {
	return CalculateProfitStats(revenue, o.ExpensePercentage, o.TargetProfitMargin)
}
