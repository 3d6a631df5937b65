package orders

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

func sampleOrders() []Order {
	d := func(m time.Month, day int) Date {
		return NewDate(time.Date(2025, m, day, 0, 0, 0, 0, time.UTC))
	}
	return []Order{
		{OrderID: "HB-Jan'25-01-000001", Date: d(time.January, 3), DeliveryAddress: "A3-1206", Quantity: 2, UnitPrice: 100, Total: 200, Mode: "Lunch", Status: StatusPaid, PaymentStatus: PaymentPaid, PaymentMode: PaymentModeCash},
		{OrderID: "HB-Jan'25-01-000002", Date: d(time.January, 3), DeliveryAddress: "B1-101", Quantity: 1, UnitPrice: 150, Total: 150, Mode: "Dinner", Status: StatusUnpaid, PaymentStatus: PaymentPending},
		{OrderID: "HB-Feb'25-02-000003", Date: d(time.February, 9), DeliveryAddress: "a3-1206 ", Quantity: 4, UnitPrice: 100, Total: 400, Mode: "Lunch", Status: "pending", PaymentMode: PaymentModeOnline},
		{OrderID: "HB-Feb'25-02-000004", DeliveryAddress: "C2-9", Quantity: 1, UnitPrice: 200, Total: 200, Mode: "Breakfast", Status: "Cancelled"},
		{OrderID: "HB-Jan'25-01-000005", Date: d(time.January, 20), DeliveryAddress: "B1-101", Quantity: 2, UnitPrice: 100, Total: 200, Mode: "lunch", Status: StatusPaid, PaymentMode: PaymentModeOnline, BillingMonth: 2, BillingYear: 2025},
	}
}

func ids(list []Order) []string {
	out := make([]string, len(list))
	for i, o := range list {
		out[i] = o.OrderID
	}
	return out
}

func TestApplyDefaultSortIsSequenceDescending(t *testing.T) {
	got := Apply(sampleOrders(), Filter{}, Sort{})
	require.Equal(t, []string{
		"HB-Jan'25-01-000005", "HB-Feb'25-02-000004", "HB-Feb'25-02-000003",
		"HB-Jan'25-01-000002", "HB-Jan'25-01-000001",
	}, ids(got))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	all := sampleOrders()
	before := ids(all)
	_ = Apply(all, Filter{Mode: "lunch"}, Sort{Key: SortTotal})
	require.Equal(t, before, ids(all))
}

func TestApplyIsIdempotent(t *testing.T) {
	f := Filter{}.WithPaymentStatus("pending")
	s := Sort{Key: SortDate, Desc: true}
	once := Apply(sampleOrders(), f, s)
	twice := Apply(once, f, s)
	require.Equal(t, ids(once), ids(twice))
}

func TestApplySortTieBreakIsDeterministic(t *testing.T) {
	all := sampleOrders()
	got := Apply(all, Filter{}, Sort{Key: SortTotal})
	require.Equal(t, []string{
		"HB-Jan'25-01-000002",
		"HB-Jan'25-01-000005", "HB-Feb'25-02-000004", "HB-Jan'25-01-000001",
		"HB-Feb'25-02-000003",
	}, ids(got))

	reversed := make([]Order, len(all))
	for i := range all {
		reversed[len(all)-1-i] = all[i]
	}
	require.Equal(t, ids(got), ids(Apply(reversed, Filter{}, Sort{Key: SortTotal})))
}

func TestApplyDateSortPutsUndatedFirst(t *testing.T) {
	got := Apply(sampleOrders(), Filter{}, Sort{Key: SortDate})
	require.Equal(t, "HB-Feb'25-02-000004", got[0].OrderID)
	require.Equal(t, "HB-Feb'25-02-000003", got[len(got)-1].OrderID)
}

func TestAddressFilterTrimsAndIgnoresCase(t *testing.T) {
	a := Apply(sampleOrders(), Filter{Address: "A3-1206"}, Sort{})
	b := Apply(sampleOrders(), Filter{Address: "a3-1206 "}, Sort{})
	require.Equal(t, ids(a), ids(b))
	require.Equal(t, []string{"HB-Feb'25-02-000003", "HB-Jan'25-01-000001"}, ids(a))
}

func TestStatusFilters(t *testing.T) {
	paid := Apply(sampleOrders(), Filter{}.WithPaymentStatus("paid"), Sort{})
	require.Equal(t, []string{"HB-Jan'25-01-000005", "HB-Jan'25-01-000001"}, ids(paid))

	pending := Apply(sampleOrders(), Filter{}.WithPaymentStatus("unpaid"), Sort{})
	require.Equal(t, []string{"HB-Feb'25-02-000003", "HB-Jan'25-01-000002"}, ids(pending))

	cancelled := Apply(sampleOrders(), Filter{}.WithStatus("cancelled"), Sort{})
	require.Equal(t, []string{"HB-Feb'25-02-000004"}, ids(cancelled))

	f := Filter{}.WithStatus("Paid").WithPaymentStatus("pending")
	require.Empty(t, f.Status)
	require.NoError(t, f.Validate())

	require.ErrorIs(t, Filter{Status: "Paid", PaymentStatus: PaymentPending}.Validate(), ErrConflictingStatusFilter)
}

func TestBillingAndModeFilters(t *testing.T) {
	feb := Apply(sampleOrders(), Filter{BillingMonth: 2, BillingYear: 2025}, Sort{Key: SortOrderID})
	require.Equal(t, []string{"HB-Feb'25-02-000003", "HB-Jan'25-01-000005"}, ids(feb))

	lunch := Apply(sampleOrders(), Filter{Mode: "Lunch", PaymentMode: "online"}, Sort{})
	require.Equal(t, []string{"HB-Jan'25-01-000005", "HB-Feb'25-02-000003"}, ids(lunch))

	none := Apply(sampleOrders(), Filter{PaymentMode: "none"}, Sort{})
	require.Equal(t, []string{"HB-Feb'25-02-000004", "HB-Jan'25-01-000002"}, ids(none))
}

func TestDateRangeIsInclusiveAndSkipsUndated(t *testing.T) {
	f := Filter{
		From: time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC),
	}
	got := Apply(sampleOrders(), f, Sort{Key: SortOrderID})
	require.Equal(t, []string{"HB-Jan'25-01-000001", "HB-Jan'25-01-000002", "HB-Jan'25-01-000005"}, ids(got))
}

func TestParseQuery(t *testing.T) {
	f, s, err := ParseQuery(url.Values{
		"paymentStatus": {"pending"},
		"month":         {"1"},
		"from":          {"01-01-2025"},
		"sort":          {"total"},
		"order":         {"desc"},
	})
	require.NoError(t, err)
	require.Equal(t, PaymentPending, f.PaymentStatus)
	require.Equal(t, 1, f.BillingMonth)
	require.Equal(t, 2025, f.From.Year())
	require.Equal(t, Sort{Key: SortTotal, Desc: true}, s)

	_, _, err = ParseQuery(url.Values{"status": {"Paid"}, "paymentStatus": {"paid"}})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, _, err = ParseQuery(url.Values{"sort": {"colour"}})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, _, err = ParseQuery(url.Values{"from": {"someday"}})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestPaginate(t *testing.T) {
	all := Apply(sampleOrders(), Filter{}, Sort{})
	page, p := Paginate(all, 2, 2)
	require.Equal(t, []string{"HB-Feb'25-02-000003", "HB-Jan'25-01-000002"}, ids(page))
	require.Equal(t, 3, p.TotalPages)

	page, _ = Paginate(all, 9, 2)
	require.Empty(t, page)
}
