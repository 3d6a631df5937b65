package importer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/homebite/orderdesk/internal/orders"
)

// Payload converts one sheet row into an order payload. Empty optional cells
// are left unset; unparseable numbers are reported per field.
func (m ColumnMap) Payload(row Row) (orders.Payload, error) {
	var p orders.Payload
	fields := orders.FieldErrors{}
	cell := func(name string) string { return m.Cell(row.Cells, name) }
	str := func(name string) *string {
		if !m.Has(name) {
			return nil
		}
		v := cell(name)
		return &v
	}

	if v := cell(ColOrderID); v != "" {
		p.OrderID = &v
	}
	p.Date = str(ColDate)
	p.DeliveryAddress = str(ColAddress)
	p.Mode = str(ColMode)
	if v := cell(ColStatus); v != "" {
		p.Status = &v
	}
	p.PaymentMode = str(ColPaymentMode)
	if v := cell(ColCustomerName); v != "" {
		p.CustomerName = &v
	}
	if v := cell(ColPhone); v != "" {
		p.Phone = &v
	}

	if v := cell(ColQuantity); v != "" {
		if n, err := parseInt(v); err == nil {
			p.Quantity = &n
		} else {
			fields["quantity"] = fmt.Sprintf("invalid number %q", v)
		}
	}
	if v := cell(ColUnitPrice); v != "" {
		if f, err := parseAmount(v); err == nil {
			p.UnitPrice = &f
		} else {
			fields["unitPrice"] = fmt.Sprintf("invalid amount %q", v)
		}
	}
	if v := cell(ColTotal); v != "" {
		if f, err := parseAmount(v); err == nil {
			p.Total = &f
		} else {
			fields["total"] = fmt.Sprintf("invalid amount %q", v)
		}
	}
	if v := cell(ColBillingMonth); v != "" {
		if n, ok := parseMonth(v); ok {
			p.BillingMonth = &n
		} else {
			fields["billingMonth"] = fmt.Sprintf("invalid month %q", v)
		}
	}
	if v := cell(ColYear); v != "" {
		if n, err := parseInt(v); err == nil {
			p.BillingYear = &n
		} else {
			fields["billingYear"] = fmt.Sprintf("invalid year %q", v)
		}
	}

	if len(fields) > 0 {
		return p, &orders.ValidationError{Fields: fields}
	}
	return p, nil
}

// parseInt accepts whole numbers written as decimals ("2.0"), which Excel
// produces for numeric cells.
func parseInt(v string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole number: %s", v)
	}
	return int(f), nil
}

var amountPattern = regexp.MustCompile(`-?\d[\d,]*(\.\d+)?`)

// parseAmount reads the first number in v, ignoring currency symbols and
// thousands separators ("Rs. 1,200.50").
func parseAmount(v string) (float64, error) {
	m := amountPattern.FindString(v)
	if m == "" {
		return 0, fmt.Errorf("no number in %q", v)
	}
	return strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
}

var monthAbbrevs = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// parseMonth accepts 1-12 or a month name.
func parseMonth(v string) (int, bool) {
	if n, err := parseInt(v); err == nil {
		return n, n >= 1 && n <= 12
	}
	lower := strings.ToLower(strings.TrimSpace(v))
	if len(lower) < 3 {
		return 0, false
	}
	for i, abbr := range monthAbbrevs {
		if strings.HasPrefix(lower, abbr) {
			return i + 1, true
		}
	}
	return 0, false
}
