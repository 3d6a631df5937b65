// Package importer turns CSV and Excel order sheets into previews and
// reconciled order batches, and uploads them from the command line.
package importer

import (
	"fmt"
	"strings"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// Template column names, in export order.
const (
	ColOrderID      = "Order ID"
	ColDate         = "Date"
	ColAddress      = "Delivery Address"
	ColQuantity     = "Quantity"
	ColUnitPrice    = "Unit Price"
	ColMode         = "Mode"
	ColStatus       = "Status"
	ColPaymentMode  = "Payment Mode"
	ColBillingMonth = "Billing Month"
	ColYear         = "Year"
	ColCustomerName = "Customer Name"
	ColPhone        = "Phone"
	ColTotal        = "Total"
)

// TemplateColumns is the import/export column contract.
var TemplateColumns = []string{
	ColOrderID, ColDate, ColAddress, ColQuantity, ColUnitPrice, ColMode,
	ColStatus, ColPaymentMode, ColBillingMonth, ColYear, ColCustomerName, ColPhone,
}

// RequiredColumns must be present in every imported sheet.
var RequiredColumns = []string{
	ColDate, ColAddress, ColQuantity, ColUnitPrice, ColMode, ColStatus, ColPaymentMode,
}

// recognised lists every column the importer reads, with extra header
// fragments that also identify it. Order matters: earlier columns claim
// ambiguous headers first.
var recognised = []struct {
	name    string
	aliases []string
}{
	{ColOrderID, nil},
	{ColDate, nil},
	{ColAddress, []string{"address"}},
	{ColQuantity, []string{"qty"}},
	{ColUnitPrice, []string{"price", "rate"}},
	{ColPaymentMode, nil},
	{ColMode, []string{"meal"}},
	{ColStatus, nil},
	{ColBillingMonth, []string{"month"}},
	{ColYear, nil},
	{ColCustomerName, []string{"name"}},
	{ColPhone, []string{"mobile"}},
	{ColTotal, []string{"amount"}},
}

// ColumnMap maps a recognised column name to its index in the header row.
type ColumnMap map[string]int

// Has reports whether the column was found.
func (m ColumnMap) Has(name string) bool {
	_, ok := m[name]
	return ok
}

// Cell returns the trimmed value of column name in row, or "".
func (m ColumnMap) Cell(row []string, name string) string {
	i, ok := m[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

func firstWord(name string) string {
	return strings.Fields(strings.ToLower(name))[0]
}

// ResolveColumns matches headers to recognised columns: exact names first
// (case and spacing insensitive), then any header containing the column's
// first word or an alias. A header is assigned to at most one column.
func ResolveColumns(headers []string) ColumnMap {
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = normalizeHeader(h)
	}
	m := ColumnMap{}
	taken := make([]bool, len(headers))

	for _, col := range recognised {
		want := normalizeHeader(col.name)
		for i, h := range norm {
			if !taken[i] && h == want {
				m[col.name] = i
				taken[i] = true
				break
			}
		}
	}
	for _, col := range recognised {
		if m.Has(col.name) {
			continue
		}
		needles := append([]string{firstWord(col.name)}, col.aliases...)
	search:
		for i, h := range norm {
			if taken[i] {
				continue
			}
			for _, n := range needles {
				if strings.Contains(h, n) {
					m[col.name] = i
					taken[i] = true
					break search
				}
			}
		}
	}
	return m
}

// MissingColumns lists required columns absent from headers, in template order.
func MissingColumns(headers []string) []string {
	m := ResolveColumns(headers)
	var missing []string
	for _, name := range RequiredColumns {
		if !m.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// ColumnError reports missing required columns.
type ColumnError struct {
	Missing []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("Missing required columns: %s", strings.Join(e.Missing, ", "))
}

func (e *ColumnError) Unwrap() error { return httpx.ErrValidation }
