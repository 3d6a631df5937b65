package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestPayloadAliases(t *testing.T) {
	o, touched, err := Payload{
		Date:            ptr("15-Jan-2025"),
		CustomerAddress: ptr("  B-12 Sector 4 "),
		Quantity:        ptr(2),
		UnitPrice:       ptr(150.0),
		TotalAmount:     ptr(300.0),
		Mode:            ptr("dinner"),
		Status:          ptr("pending"),
		PaymentMode:     ptr("none"),
	}.ToOrder()
	require.NoError(t, err)
	require.Equal(t, "B-12 Sector 4", o.DeliveryAddress)
	require.Equal(t, 300.0, o.Total)
	require.Equal(t, "Dinner", o.Mode)
	require.Equal(t, StatusUnpaid, o.Status)
	require.Equal(t, PaymentPending, o.PaymentStatus)
	require.Equal(t, PaymentModeNone, o.PaymentMode)
	require.Equal(t, 1, o.BillingMonth)
	require.Equal(t, 2025, o.BillingYear)
	require.ElementsMatch(t, []string{"date", "deliveryAddress", "quantity", "unitPrice", "total", "mode", "status", "paymentMode"}, touched)
}

func TestPayloadDeliveryAddressWinsOverAliases(t *testing.T) {
	o, _, err := Payload{DeliveryAddress: ptr("Main"), Address: ptr("Other")}.ToOrder()
	require.NoError(t, err)
	require.Equal(t, "Main", o.DeliveryAddress)
}

func TestPayloadApplyToOnlyWritesCarriedFields(t *testing.T) {
	o := validOrder()
	touched, err := Payload{Status: ptr("unpaid")}.ApplyTo(&o)
	require.NoError(t, err)
	require.Equal(t, []string{"status"}, touched)
	require.Equal(t, "A3-1206 Green Park/II", o.DeliveryAddress)
	require.Equal(t, PaymentPending, o.PaymentStatus)
}

func TestPayloadRejectsBadValues(t *testing.T) {
	o := validOrder()
	_, err := Payload{Date: ptr("31-02-2024"), Status: ptr("void"), PaymentMode: ptr("cheque")}.ApplyTo(&o)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, `invalid date "31-02-2024"`, ve.Fields["date"])
	require.Contains(t, ve.Fields, "status")
	require.Contains(t, ve.Fields, "paymentMode")
	require.Equal(t, validOrder().Date, o.Date)
}

func TestPayloadStatusFromPaymentStatus(t *testing.T) {
	o, _, err := Payload{PaymentStatus: ptr("Paid")}.ToOrder()
	require.NoError(t, err)
	require.Equal(t, StatusPaid, o.Status)
	require.Equal(t, PaymentPaid, o.PaymentStatus)
}

func TestCanonicalizeRepairsStoredRecord(t *testing.T) {
	o := Order{
		Date:          NewDate(time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)),
		Quantity:      2,
		UnitPrice:     100,
		Total:         0,
		Status:        "paid",
		PaymentStatus: PaymentPending,
		PaymentMode:   "cash",
	}
	Canonicalize(&o)
	require.Equal(t, 200.0, o.Total)
	require.Equal(t, StatusPaid, o.Status)
	require.Equal(t, PaymentPaid, o.PaymentStatus)
	require.Equal(t, PaymentModeCash, o.PaymentMode)
	require.Equal(t, 5, o.BillingMonth)
	require.Equal(t, 2024, o.BillingYear)

	legacy := Order{Status: "Cancelled", PaymentStatus: "Refunded"}
	Canonicalize(&legacy)
	require.Equal(t, Status("Cancelled"), legacy.Status)
}
