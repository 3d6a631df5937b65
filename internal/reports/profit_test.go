package reports

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateProfitStatsDefaults(t *testing.T) {
	got := CalculateProfitStats(10000, 70, 30)
	require.Equal(t, ProfitStats{
		Revenue:             10000,
		Expenses:            7000,
		Profit:              3000,
		ProfitMarginPercent: 30,
		TargetProfit:        3000,
	}, got)
	require.Equal(t, got, DefaultProfitOptions.Stats(10000))
}

func TestCalculateProfitStatsEdges(t *testing.T) {
	zero := CalculateProfitStats(0, 70, 30)
	require.Zero(t, zero.ProfitMarginPercent)
	require.Zero(t, zero.Profit)

	over := CalculateProfitStats(1000, 120, 30)
	require.Equal(t, 1200.0, over.Expenses)
	require.Zero(t, over.Profit)
	require.Zero(t, over.ProfitMarginPercent)

	odd := CalculateProfitStats(333.33, 33.3, 10)
	require.Equal(t, 111, int(odd.Expenses))
	require.InDelta(t, 66.7, odd.ProfitMarginPercent, 0.01)
}
