package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeTotal(t *testing.T) {
	require.Equal(t, 360.0, ComputeTotal(3, 120))
	require.Equal(t, 0.3, ComputeTotal(3, 0.1))
	require.Equal(t, 99.9, ComputeTotal(9, 11.1))
}

func TestTotalRoundTripsThroughPayload(t *testing.T) {
	for _, tc := range []struct {
		qty   int
		price float64
	}{{1, 10}, {7, 12.35}, {50, 1000}, {3, 99.99}} {
		qty, price := tc.qty, tc.price
		o, _, err := Payload{Quantity: &qty, UnitPrice: &price}.ToOrder()
		require.NoError(t, err)
		require.Equal(t, ComputeTotal(qty, price), o.Total)
		require.True(t, TotalMatches(o))
	}
}

func TestTotalMatchesTolerance(t *testing.T) {
	require.True(t, TotalMatches(Order{Quantity: 3, UnitPrice: 33.33, Total: 100}))
	require.False(t, TotalMatches(Order{Quantity: 3, UnitPrice: 33.33, Total: 100.5}))
}

func TestSumTotals(t *testing.T) {
	sum := SumTotals([]Order{{Total: 0.1}, {Total: 0.2}})
	require.Equal(t, "0.3", sum.String())
}
