package export

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/homebite/orderdesk/internal/reports"
)

// ReportPDF is the content of a printable report.
type ReportPDF struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Report      reports.Report
}

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Period", 34, "L"},
	{"Orders", 18, "R"},
	{"Qty", 16, "R"},
	{"Revenue", 28, "R"},
	{"Paid", 26, "R"},
	{"Unpaid", 26, "R"},
	{"Profit", 26, "R"},
}

// WriteReportPDF renders a report table to w.
func WriteReportPDF(w io.Writer, doc ReportPDF) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetTitle(doc.Title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, doc.Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if doc.Subtitle != "" {
		pdf.CellFormat(0, 5, doc.Subtitle, "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", doc.GeneratedAt.Format("02-Jan-2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	orders, quantity := 0, 0
	for _, b := range doc.Report.Buckets {
		orders += b.Orders
		quantity += b.Quantity
		row := []string{
			b.Label,
			fmt.Sprintf("%d", b.Orders),
			fmt.Sprintf("%d", b.Quantity),
			formatFloat(b.Revenue),
			formatFloat(b.PaidRevenue),
			formatFloat(b.UnpaidRevenue),
			formatFloat(b.Profit.Profit),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, row[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 9)
	totals := []string{
		"Total",
		fmt.Sprintf("%d", orders),
		fmt.Sprintf("%d", quantity),
		formatFloat(doc.Report.Revenue),
		"",
		"",
		formatFloat(doc.Report.Profit.Profit),
	}
	for i, col := range pdfColumns {
		pdf.CellFormat(col.width, 7, totals[i], "1", 0, col.align, false, 0, "")
	}
	pdf.Ln(-1)

	if doc.Report.Excluded > 0 {
		pdf.Ln(3)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("%d orders without a valid date were excluded.", doc.Report.Excluded), "", 1, "L", false, 0, "")
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
