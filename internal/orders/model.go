// Package orders holds the order record, its derived-field rules and the
// order API.
package orders

import "time"

// Status is the canonical order status.
type Status string

// PaymentStatus mirrors Status in the vocabulary of payments.
type PaymentStatus string

// PaymentMode is how an order was paid. The empty value means none recorded.
type PaymentMode string

const (
	StatusPaid   Status = "Paid"
	StatusUnpaid Status = "Unpaid"

	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"

	PaymentModeNone   PaymentMode = ""
	PaymentModeCash   PaymentMode = "Cash"
	PaymentModeOnline PaymentMode = "Online"
)

// Modes lists the meal modes offered by the kitchen. Other values are accepted.
var Modes = []string{"Breakfast", "Lunch", "Dinner"}

// Order is one delivered meal order.
type Order struct {
	OrderID         string        `json:"orderId" validate:"required"`
	Date            Date          `json:"date" validate:"required,notfuture"`
	DeliveryAddress string        `json:"deliveryAddress" validate:"required,min=3,address"`
	Quantity        int           `json:"quantity" validate:"min=1,max=50"`
	UnitPrice       float64       `json:"unitPrice" validate:"gte=10,lte=1000"`
	Total           float64       `json:"total"`
	Mode            string        `json:"mode" validate:"required"`
	Status          Status        `json:"status" validate:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	PaymentMode     PaymentMode   `json:"paymentMode" validate:"paymentmode"`
	BillingMonth    int           `json:"billingMonth,omitempty" validate:"omitempty,min=1,max=12"`
	BillingYear     int           `json:"billingYear,omitempty" validate:"omitempty,min=1900,max=2100"`
	CustomerName    string        `json:"customerName,omitempty"`
	Phone           string        `json:"phone,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Sequence returns the numeric suffix of the order ID, or -1 when it has none.
func (o Order) Sequence() int {
	if n, ok := SequenceOf(o.OrderID); ok {
		return n
	}
	return -1
}
