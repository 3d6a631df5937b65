package importer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/homebite/orderdesk/internal/orders"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"120", 120},
		{"Rs. 120", 120},
		{"₹1,200.50", 1200.5},
		{" 99.9 ", 99.9},
		{"-15", -15},
	}
	for _, tc := range cases {
		got, err := parseAmount(tc.in)
		require.NoError(t, err, tc.in)
		require.InDelta(t, tc.want, got, 0.0001, tc.in)
	}
	_, err := parseAmount("free")
	require.Error(t, err)
}

func TestParseMonth(t *testing.T) {
	for in, want := range map[string]int{"1": 1, "12.0": 12, "January": 1, "sep": 9, "Sept": 9} {
		got, ok := parseMonth(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}
	for _, in := range []string{"13", "0", "ja", "Smarch"} {
		_, ok := parseMonth(in)
		require.False(t, ok, in)
	}
}

func TestRowPayload(t *testing.T) {
	headers := append([]string{}, TemplateColumns...)
	m := ResolveColumns(headers)
	row := Row{Line: 2, Cells: []string{"", "2025-01-15", "A3-1206", "2.0", "Rs 120", "lunch", "", "cash", "Feb", "2025", "", "98765"}}

	p, err := m.Payload(row)
	require.NoError(t, err)
	require.Nil(t, p.OrderID)
	require.Nil(t, p.Status)
	require.Equal(t, 2, *p.Quantity)
	require.Equal(t, 120.0, *p.UnitPrice)
	require.Equal(t, 2, *p.BillingMonth)
	require.Equal(t, 2025, *p.BillingYear)
	require.Equal(t, "98765", *p.Phone)

	o, _, err := p.ToOrder()
	require.NoError(t, err)
	require.Equal(t, orders.StatusUnpaid, o.Status)
	require.Equal(t, 240.0, o.Total)
	require.Equal(t, 2, o.BillingMonth)
}

func TestRowPayloadReportsBadNumbers(t *testing.T) {
	m := ResolveColumns(TemplateColumns)
	row := Row{Line: 7, Cells: []string{"", "2025-01-15", "A3-1206", "two", "abc", "Lunch", "Paid", "Cash"}}

	_, err := m.Payload(row)
	var verr *orders.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Fields, "quantity")
	require.Contains(t, verr.Fields, "unitPrice")
}
