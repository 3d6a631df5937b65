package orders

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Payload is an order as submitted by the dashboard or an import row. Nil
// fields were not sent; updates only write the fields a payload carries.
// Legacy names (customerAddress, address, totalAmount) are accepted here and
// never stored.
type Payload struct {
	OrderID         *string  `json:"orderId,omitempty"`
	Date            *string  `json:"date,omitempty"`
	DeliveryAddress *string  `json:"deliveryAddress,omitempty"`
	CustomerAddress *string  `json:"customerAddress,omitempty"`
	Address         *string  `json:"address,omitempty"`
	Quantity        *int     `json:"quantity,omitempty"`
	UnitPrice       *float64 `json:"unitPrice,omitempty"`
	Total           *float64 `json:"total,omitempty"`
	TotalAmount     *float64 `json:"totalAmount,omitempty"`
	Mode            *string  `json:"mode,omitempty"`
	Status          *string  `json:"status,omitempty"`
	PaymentStatus   *string  `json:"paymentStatus,omitempty"`
	PaymentMode     *string  `json:"paymentMode,omitempty"`
	BillingMonth    *int     `json:"billingMonth,omitempty"`
	BillingYear     *int     `json:"billingYear,omitempty"`
	CustomerName    *string  `json:"customerName,omitempty"`
	Phone           *string  `json:"phone,omitempty"`
}

// NormalizeMode trims and title-cases a meal mode ("lunch" becomes "Lunch").
func NormalizeMode(raw string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(raw)))
}

// address picks the canonical address from the accepted aliases.
func (p Payload) address() *string {
	for _, v := range []*string{p.DeliveryAddress, p.CustomerAddress, p.Address} {
		if v != nil {
			return v
		}
	}
	return nil
}

func (p Payload) total() *float64 {
	if p.Total != nil {
		return p.Total
	}
	return p.TotalAmount
}

// ApplyTo copies the carried fields onto o and returns their canonical JSON
// names. Values that cannot be interpreted are reported as field errors and
// leave o unchanged for that field.
func (p Payload) ApplyTo(o *Order) ([]string, error) {
	var touched []string
	fields := FieldErrors{}
	touch := func(name string) { touched = append(touched, name) }

	if p.OrderID != nil {
		o.OrderID = strings.TrimSpace(*p.OrderID)
		touch("orderId")
	}
	if p.Date != nil {
		touch("date")
		if strings.TrimSpace(*p.Date) == "" {
			o.Date = Date{}
		} else if t, ok := ParseDateString(*p.Date); ok {
			o.Date = Date{Time: t}
		} else {
			fields["date"] = "invalid date \"" + *p.Date + "\""
		}
	}
	if addr := p.address(); addr != nil {
		o.DeliveryAddress = strings.TrimSpace(*addr)
		touch("deliveryAddress")
	}
	if p.Quantity != nil {
		o.Quantity = *p.Quantity
		touch("quantity")
	}
	if p.UnitPrice != nil {
		o.UnitPrice = *p.UnitPrice
		touch("unitPrice")
	}
	if total := p.total(); total != nil {
		o.Total = *total
		touch("total")
	}
	if p.Mode != nil {
		o.Mode = NormalizeMode(*p.Mode)
		touch("mode")
	}
	switch {
	case p.Status != nil:
		touch("status")
		if err := SetStatus(o, *p.Status); err != nil {
			fields["status"] = ErrInvalidStatus.Error()
		}
	case p.PaymentStatus != nil:
		touch("status")
		if err := SetStatus(o, *p.PaymentStatus); err != nil {
			fields["status"] = ErrInvalidStatus.Error()
		}
	}
	if p.PaymentMode != nil {
		touch("paymentMode")
		if pm, err := NormalizePaymentMode(*p.PaymentMode); err == nil {
			o.PaymentMode = pm
		} else {
			fields["paymentMode"] = ErrInvalidPaymentMode.Error()
		}
	}
	if p.BillingMonth != nil {
		o.BillingMonth = *p.BillingMonth
		touch("billingMonth")
	}
	if p.BillingYear != nil {
		o.BillingYear = *p.BillingYear
		touch("billingYear")
	}
	if p.CustomerName != nil {
		o.CustomerName = strings.TrimSpace(*p.CustomerName)
		touch("customerName")
	}
	if p.Phone != nil {
		o.Phone = strings.TrimSpace(*p.Phone)
		touch("phone")
	}

	if len(fields) > 0 {
		return touched, &ValidationError{Fields: fields}
	}
	return touched, nil
}

// ToOrder builds a new order from the payload. A missing total is computed,
// a missing status defaults to Unpaid and the billing period is derived.
func (p Payload) ToOrder() (Order, []string, error) {
	o := Order{Status: StatusUnpaid, PaymentStatus: PaymentPending}
	touched, err := p.ApplyTo(&o)
	if err != nil {
		return o, touched, err
	}
	if p.total() == nil {
		o.Total = ComputeTotal(o.Quantity, o.UnitPrice)
	}
	ApplyBillingPeriod(&o)
	return o, touched, nil
}

// Canonicalize repairs a stored record on read: the payment status follows
// the status, an absent or inconsistent total is recomputed and the billing
// period is filled. Unmappable legacy statuses are left alone.
func Canonicalize(o *Order) {
	if st, ps, err := NormalizeStatus(string(o.Status)); err == nil {
		o.Status, o.PaymentStatus = st, ps
	} else if o.Status == "" {
		if st, ps, err := NormalizeStatus(string(o.PaymentStatus)); err == nil {
			o.Status, o.PaymentStatus = st, ps
		}
	}
	if o.Quantity > 0 && o.UnitPrice > 0 && !TotalMatches(*o) {
		o.Total = ComputeTotal(o.Quantity, o.UnitPrice)
	}
	if pm, err := NormalizePaymentMode(string(o.PaymentMode)); err == nil {
		o.PaymentMode = pm
	}
	ApplyBillingPeriod(o)
}
