package importer

import (
	"io"
	"strconv"

	"github.com/homebite/orderdesk/internal/orders"
	"github.com/homebite/orderdesk/internal/shared"
)

// WriteOrdersCSV writes orders in template column order so the file can be
// edited and imported again.
func WriteOrdersCSV(w io.Writer, list []orders.Order) error {
	writer, err := shared.NewCSVWriter(w)
	if err != nil {
		return err
	}
	if err := writer.Write(TemplateColumns); err != nil {
		return err
	}
	for _, o := range list {
		month, year, _ := orders.BillingPeriod(o)
		if err := writer.Write([]string{
			o.OrderID,
			o.Date.String(),
			o.DeliveryAddress,
			strconv.Itoa(o.Quantity),
			formatAmount(o.UnitPrice),
			o.Mode,
			orders.DisplayStatus(o.Status),
			string(o.PaymentMode),
			optionalInt(month),
			optionalInt(year),
			o.CustomerName,
			o.Phone,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTemplateCSV writes the header row and one example order.
func WriteTemplateCSV(w io.Writer) error {
	writer, err := shared.NewCSVWriter(w)
	if err != nil {
		return err
	}
	rows := [][]string{
		TemplateColumns,
		{"", "2025-01-15", "A3-1206", "2", "120", "Lunch", "Unpaid", "Cash", "", "", "", ""},
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optionalInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}
