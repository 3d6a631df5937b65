package orders

import (
	"cmp"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/homebite/orderdesk/internal/platform/httpx"
	"github.com/homebite/orderdesk/internal/shared"
)

// ErrConflictingStatusFilter is returned when both status filters are set.
var ErrConflictingStatusFilter = errors.New("status and paymentStatus filters are mutually exclusive")

// Filter selects orders. Zero-valued fields match everything; set fields are
// AND-combined.
type Filter struct {
	// Status matches the displayed status exactly (case-insensitive).
	Status string
	// PaymentStatus is the coarse bucket: Paid, or Pending for unpaid and pending.
	PaymentStatus PaymentStatus
	Mode          string
	// PaymentMode matches Cash or Online; "none" selects orders without one.
	PaymentMode  string
	BillingMonth int
	BillingYear  int
	Address      string
	From         time.Time
	To           time.Time
}

// WithStatus sets the exact status filter and clears the coarse one.
func (f Filter) WithStatus(s string) Filter {
	f.Status = strings.TrimSpace(s)
	f.PaymentStatus = ""
	return f
}

// WithPaymentStatus sets the coarse payment filter and clears the exact one.
func (f Filter) WithPaymentStatus(raw string) Filter {
	f.Status = ""
	f.PaymentStatus = ""
	if _, ps, err := NormalizeStatus(raw); err == nil {
		f.PaymentStatus = ps
	}
	return f
}

// Validate rejects filters that cannot be satisfied consistently.
func (f Filter) Validate() error {
	if f.Status != "" && f.PaymentStatus != "" {
		return fmt.Errorf("%w: %w", httpx.ErrValidation, ErrConflictingStatusFilter)
	}
	if f.BillingMonth < 0 || f.BillingMonth > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12", httpx.ErrValidation)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return fmt.Errorf("%w: from date is after to date", httpx.ErrValidation)
	}
	return nil
}

// Match reports whether o passes every set criterion.
func (f Filter) Match(o Order) bool {
	if f.Status != "" && !strings.EqualFold(DisplayStatus(o.Status), f.Status) {
		return false
	}
	if f.PaymentStatus != "" && PaymentGroup(o) != f.PaymentStatus {
		return false
	}
	if f.Mode != "" && !strings.EqualFold(strings.TrimSpace(o.Mode), strings.TrimSpace(f.Mode)) {
		return false
	}
	if f.PaymentMode != "" {
		want, err := NormalizePaymentMode(f.PaymentMode)
		if err != nil {
			return false
		}
		got, _ := NormalizePaymentMode(string(o.PaymentMode))
		if got != want {
			return false
		}
	}
	if f.BillingMonth != 0 || f.BillingYear != 0 {
		month, year, ok := BillingPeriod(o)
		if !ok {
			return false
		}
		if f.BillingMonth != 0 && month != f.BillingMonth {
			return false
		}
		if f.BillingYear != 0 && year != f.BillingYear {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Address)); q != "" {
		if !strings.Contains(strings.ToLower(o.DeliveryAddress), q) {
			return false
		}
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		if !o.Date.Valid() {
			return false
		}
		if !f.From.IsZero() && o.Date.Before(truncateUTC(f.From)) {
			return false
		}
		if !f.To.IsZero() && o.Date.After(truncateUTC(f.To)) {
			return false
		}
	}
	return true
}

// SortKey names a sortable order column.
type SortKey string

const (
	SortOrderID     SortKey = "orderId"
	SortDate        SortKey = "date"
	SortAddress     SortKey = "deliveryAddress"
	SortQuantity    SortKey = "quantity"
	SortUnitPrice   SortKey = "unitPrice"
	SortTotal       SortKey = "total"
	SortMode        SortKey = "mode"
	SortStatus      SortKey = "status"
	SortPaymentMode SortKey = "paymentMode"
)

// Sort orders the result. The zero value sorts by sequence, newest first.
type Sort struct {
	Key  SortKey
	Desc bool
}

// DefaultSort is the list order used when none is requested.
var DefaultSort = Sort{Key: SortOrderID, Desc: true}

// ParseSort reads a key and a direction ("asc" or "desc").
func ParseSort(key, dir string) (Sort, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return DefaultSort, nil
	}
	s := Sort{Key: SortKey(key)}
	switch s.Key {
	case SortOrderID, SortDate, SortAddress, SortQuantity, SortUnitPrice, SortTotal, SortMode, SortStatus, SortPaymentMode:
	case "address":
		s.Key = SortAddress
	default:
		return Sort{}, fmt.Errorf("%w: unknown sort key %q", httpx.ErrValidation, key)
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
	case "desc":
		s.Desc = true
	default:
		return Sort{}, fmt.Errorf("%w: unknown sort direction %q", httpx.ErrValidation, dir)
	}
	return s, nil
}

func (s Sort) compare(a, b Order) int {
	switch s.Key {
	case SortDate:
		return compareDates(a.Date, b.Date)
	case SortAddress:
		return cmp.Compare(strings.ToLower(a.DeliveryAddress), strings.ToLower(b.DeliveryAddress))
	case SortQuantity:
		return cmp.Compare(a.Quantity, b.Quantity)
	case SortUnitPrice:
		return cmp.Compare(a.UnitPrice, b.UnitPrice)
	case SortTotal:
		return cmp.Compare(a.Total, b.Total)
	case SortMode:
		return cmp.Compare(strings.ToLower(a.Mode), strings.ToLower(b.Mode))
	case SortStatus:
		return cmp.Compare(DisplayStatus(a.Status), DisplayStatus(b.Status))
	case SortPaymentMode:
		return cmp.Compare(string(a.PaymentMode), string(b.PaymentMode))
	default:
		return cmp.Compare(a.Sequence(), b.Sequence())
	}
}

// Undated orders sort before dated ones.
func compareDates(a, b Date) int {
	switch {
	case !a.Valid() && !b.Valid():
		return 0
	case !a.Valid():
		return -1
	case !b.Valid():
		return 1
	}
	return a.Compare(b.Time)
}

// tieBreak orders by sequence descending, then by ID, so equal keys always
// produce the same order.
func tieBreak(a, b Order) int {
	if c := cmp.Compare(b.Sequence(), a.Sequence()); c != 0 {
		return c
	}
	return cmp.Compare(a.OrderID, b.OrderID)
}

// Apply filters and sorts all into a new slice. all is never modified.
func Apply(all []Order, f Filter, s Sort) []Order {
	if s.Key == "" {
		s = DefaultSort
	}
	out := make([]Order, 0, len(all))
	for _, o := range all {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	slices.SortStableFunc(out, func(a, b Order) int {
		c := s.compare(a, b)
		if s.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return tieBreak(a, b)
	})
	return out
}

// Paginate slices one page out of list.
func Paginate(list []Order, page, perPage int) ([]Order, shared.Pagination) {
	p := shared.NewPagination(page, perPage, len(list))
	start, end := p.Window()
	if start == end {
		return []Order{}, p
	}
	return list[start:end], p
}

// ParseQuery reads a filter and sort from URL query parameters. It accepts
// status or paymentStatus, mode, paymentMode, month, year, address, from, to,
// sort and order.
func ParseQuery(q url.Values) (Filter, Sort, error) {
	var f Filter
	if v := q.Get("status"); v != "" {
		f = f.WithStatus(v)
	}
	if v := q.Get("paymentStatus"); v != "" {
		if f.Status != "" {
			return Filter{}, Sort{}, fmt.Errorf("%w: %w", httpx.ErrValidation, ErrConflictingStatusFilter)
		}
		f = f.WithPaymentStatus(v)
		if f.PaymentStatus == "" {
			return Filter{}, Sort{}, fmt.Errorf("%w: unknown payment status %q", httpx.ErrValidation, v)
		}
	}
	f.Mode = q.Get("mode")
	f.PaymentMode = q.Get("paymentMode")
	f.Address = q.Get("address")

	var err error
	if f.BillingMonth, err = intParam(q, "month"); err != nil {
		return Filter{}, Sort{}, err
	}
	if f.BillingYear, err = intParam(q, "year"); err != nil {
		return Filter{}, Sort{}, err
	}
	if f.From, err = dateParam(q, "from"); err != nil {
		return Filter{}, Sort{}, err
	}
	if f.To, err = dateParam(q, "to"); err != nil {
		return Filter{}, Sort{}, err
	}
	if err := f.Validate(); err != nil {
		return Filter{}, Sort{}, err
	}

	s, err := ParseSort(q.Get("sort"), q.Get("order"))
	if err != nil {
		return Filter{}, Sort{}, err
	}
	return f, s, nil
}

func intParam(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", httpx.ErrValidation, name)
	}
	return n, nil
}

func dateParam(q url.Values, name string) (time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return time.Time{}, nil
	}
	t, ok := ParseDateString(raw)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: invalid %s date %q", httpx.ErrValidation, name, raw)
	}
	return t, nil
}
