package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homebite/orderdesk/internal/orders"
)

// UnspecifiedMode labels orders without a meal mode.
const UnspecifiedMode = "Unspecified"

// ModeBreakdown is revenue for one meal mode.
type ModeBreakdown struct {
	Mode     string  `json:"mode"`
	Orders   int     `json:"orders"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// Summary aggregates a set of orders.
type Summary struct {
	TotalOrders       int             `json:"totalOrders"`
	TotalQuantity     int             `json:"totalQuantity"`
	Revenue           float64         `json:"revenue"`
	PaidOrders        int             `json:"paidOrders"`
	PaidRevenue       float64         `json:"paidRevenue"`
	UnpaidOrders      int             `json:"unpaidOrders"`
	UnpaidRevenue     float64         `json:"unpaidRevenue"`
	AverageOrderValue float64         `json:"averageOrderValue"`
	ByMode            []ModeBreakdown `json:"byMode"`
	Profit            ProfitStats     `json:"profit"`
}

// accumulator sums money as decimals and converts once.
type accumulator struct {
	orders   int
	quantity int
	revenue  decimal.Decimal
	paid     decimal.Decimal
	unpaid   decimal.Decimal
	paidN    int
	unpaidN  int
}

func (a *accumulator) add(o orders.Order) {
	total := decimal.NewFromFloat(o.Total)
	a.orders++
	a.quantity += o.Quantity
	a.revenue = a.revenue.Add(total)
	switch orders.PaymentGroup(o) {
	case orders.PaymentPaid:
		a.paidN++
		a.paid = a.paid.Add(total)
	case orders.PaymentPending:
		a.unpaidN++
		a.unpaid = a.unpaid.Add(total)
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Summarize totals every order regardless of date. Orders whose status
// cannot be mapped count toward revenue but neither paid nor unpaid.
func Summarize(list []orders.Order, opts ProfitOptions) Summary {
	var all accumulator
	modes := map[string]*accumulator{}
	for _, o := range list {
		all.add(o)
		mode := o.Mode
		if mode == "" {
			mode = UnspecifiedMode
		}
		acc, ok := modes[mode]
		if !ok {
			acc = &accumulator{}
			modes[mode] = acc
		}
		acc.add(o)
	}

	s := Summary{
		TotalOrders:   all.orders,
		TotalQuantity: all.quantity,
		Revenue:       money(all.revenue),
		PaidOrders:    all.paidN,
		PaidRevenue:   money(all.paid),
		UnpaidOrders:  all.unpaidN,
		UnpaidRevenue: money(all.unpaid),
		ByMode:        make([]ModeBreakdown, 0, len(modes)),
		Profit:        opts.Stats(money(all.revenue)),
	}
	if all.orders > 0 {
		s.AverageOrderValue = money(all.revenue.Div(decimal.NewFromInt(int64(all.orders))))
	}
	for mode, acc := range modes {
		s.ByMode = append(s.ByMode, ModeBreakdown{
			Mode:     mode,
			Orders:   acc.orders,
			Quantity: acc.quantity,
			Revenue:  money(acc.revenue),
		})
	}
	sort.Slice(s.ByMode, func(i, j int) bool {
		if s.ByMode[i].Revenue != s.ByMode[j].Revenue {
			return s.ByMode[i].Revenue > s.ByMode[j].Revenue
		}
		return s.ByMode[i].Mode < s.ByMode[j].Mode
	})
	return s
}

// Bucket is one period in a monthly or daily report.
type Bucket struct {
	Key           string      `json:"key"`
	Label         string      `json:"label"`
	Orders        int         `json:"orders"`
	Quantity      int         `json:"quantity"`
	Revenue       float64     `json:"revenue"`
	PaidRevenue   float64     `json:"paidRevenue"`
	UnpaidRevenue float64     `json:"unpaidRevenue"`
	Profit        ProfitStats `json:"profit"`
}

// Report is a series of buckets in ascending period order. Excluded counts
// orders that could not be placed in any period.
type Report struct {
	Buckets  []Bucket    `json:"buckets"`
	Revenue  float64     `json:"revenue"`
	Profit   ProfitStats `json:"profit"`
	Excluded int         `json:"excluded"`
}

type periodKey struct {
	key   string
	label string
}

func group(list []orders.Order, opts ProfitOptions, period func(orders.Order) (periodKey, bool)) Report {
	accs := map[string]*accumulator{}
	labels := map[string]string{}
	var total decimal.Decimal
	rep := Report{Buckets: []Bucket{}}
	for _, o := range list {
		p, ok := period(o)
		if !ok {
			rep.Excluded++
			continue
		}
		acc, found := accs[p.key]
		if !found {
			acc = &accumulator{}
			accs[p.key] = acc
			labels[p.key] = p.label
		}
		acc.add(o)
		total = total.Add(decimal.NewFromFloat(o.Total))
	}
	for key, acc := range accs {
		rep.Buckets = append(rep.Buckets, Bucket{
			Key:           key,
			Label:         labels[key],
			Orders:        acc.orders,
			Quantity:      acc.quantity,
			Revenue:       money(acc.revenue),
			PaidRevenue:   money(acc.paid),
			UnpaidRevenue: money(acc.unpaid),
			Profit:        opts.Stats(money(acc.revenue)),
		})
	}
	sort.Slice(rep.Buckets, func(i, j int) bool { return rep.Buckets[i].Key < rep.Buckets[j].Key })
	rep.Revenue = money(total)
	rep.Profit = opts.Stats(rep.Revenue)
	return rep
}

// Monthly groups orders by billing period. Orders with neither a billing
// period nor a valid date are excluded.
func Monthly(list []orders.Order, opts ProfitOptions) Report {
	return group(list, opts, func(o orders.Order) (periodKey, bool) {
		month, year, ok := orders.BillingPeriod(o)
		if !ok {
			return periodKey{}, false
		}
		return periodKey{
			key:   fmt.Sprintf("%04d-%02d", year, month),
			label: fmt.Sprintf("%s %d", time.Month(month).String()[:3], year),
		}, true
	})
}

// Daily groups orders by order date. Undated orders are excluded, never
// bucketed under today.
func Daily(list []orders.Order, opts ProfitOptions) Report {
	return group(list, opts, func(o orders.Order) (periodKey, bool) {
		if !o.Date.Valid() {
			return periodKey{}, false
		}
		return periodKey{
			key:   o.Date.String(),
			label: o.Date.UTC().Format("02-Jan-2006"),
		}, true
	})
}
