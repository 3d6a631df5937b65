package export

import (
	"io"
	"strconv"

	"github.com/homebite/orderdesk/internal/reports"
	"github.com/homebite/orderdesk/internal/shared"
)

// WriteReportCSV serialises a monthly or daily report, one row per period
// followed by a totals row.
func WriteReportCSV(w io.Writer, rep reports.Report) error {
	writer, err := shared.NewCSVWriter(w)
	if err != nil {
		return err
	}
	header := []string{"Period", "Orders", "Quantity", "Revenue", "Paid", "Unpaid", "Expenses", "Profit", "Margin %"}
	if err := writer.Write(header); err != nil {
		return err
	}
	orders, quantity := 0, 0
	for _, b := range rep.Buckets {
		orders += b.Orders
		quantity += b.Quantity
		if err := writer.Write([]string{
			b.Label,
			strconv.Itoa(b.Orders),
			strconv.Itoa(b.Quantity),
			formatFloat(b.Revenue),
			formatFloat(b.PaidRevenue),
			formatFloat(b.UnpaidRevenue),
			formatFloat(b.Profit.Expenses),
			formatFloat(b.Profit.Profit),
			formatFloat(b.Profit.ProfitMarginPercent),
		}); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{
		"Total",
		strconv.Itoa(orders),
		strconv.Itoa(quantity),
		formatFloat(rep.Revenue),
		"",
		"",
		formatFloat(rep.Profit.Expenses),
		formatFloat(rep.Profit.Profit),
		formatFloat(rep.Profit.ProfitMarginPercent),
	}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteSummaryCSV emits summary metrics as Metric,Value pairs.
func WriteSummaryCSV(w io.Writer, s reports.Summary) error {
	writer, err := shared.NewCSVWriter(w)
	if err != nil {
		return err
	}
	records := [][]string{
		{"Metric", "Value"},
		{"Orders", strconv.Itoa(s.TotalOrders)},
		{"Quantity", strconv.Itoa(s.TotalQuantity)},
		{"Revenue", formatFloat(s.Revenue)},
		{"Paid Revenue", formatFloat(s.PaidRevenue)},
		{"Unpaid Revenue", formatFloat(s.UnpaidRevenue)},
		{"Average Order Value", formatFloat(s.AverageOrderValue)},
		{"Estimated Expenses", formatFloat(s.Profit.Expenses)},
		{"Estimated Profit", formatFloat(s.Profit.Profit)},
		{"Profit Margin %", formatFloat(s.Profit.ProfitMarginPercent)},
		{"Target Profit", formatFloat(s.Profit.TargetProfit)},
	}
	for _, m := range s.ByMode {
		records = append(records, []string{"Revenue (" + m.Mode + ")", formatFloat(m.Revenue)})
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
