package orders

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStatus      = errors.New("status must be Paid or Unpaid")
	ErrInvalidPaymentMode = errors.New("payment mode must be Cash, Online or empty")
)

// NormalizeStatus maps user and legacy spellings onto the canonical pair.
// "pending" and "unpaid" both mean Unpaid/Pending.
func NormalizeStatus(raw string) (Status, PaymentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid":
		return StatusPaid, PaymentPaid, nil
	case "unpaid", "pending":
		return StatusUnpaid, PaymentPending, nil
	default:
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidStatus, raw)
	}
}

// DisplayStatus is the read-side status. Legacy values such as "Cancelled"
// are shown as stored rather than rejected.
func DisplayStatus(s Status) string {
	if st, _, err := NormalizeStatus(string(s)); err == nil {
		return string(st)
	}
	if v := strings.TrimSpace(string(s)); v != "" {
		return v
	}
	return string(StatusUnpaid)
}

// PaymentGroup buckets an order as Paid or Pending for coarse filtering.
// It returns "" for records whose status cannot be mapped.
func PaymentGroup(o Order) PaymentStatus {
	if _, ps, err := NormalizeStatus(string(o.Status)); err == nil {
		return ps
	}
	if _, ps, err := NormalizeStatus(string(o.PaymentStatus)); err == nil && o.Status == "" {
		return ps
	}
	return ""
}

// NormalizePaymentMode accepts cash, online and none in any case.
func NormalizePaymentMode(raw string) (PaymentMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return PaymentModeNone, nil
	case "cash":
		return PaymentModeCash, nil
	case "online":
		return PaymentModeOnline, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidPaymentMode, raw)
	}
}

// SetStatus writes status and the matching payment status together.
func SetStatus(o *Order, raw string) error {
	st, ps, err := NormalizeStatus(raw)
	if err != nil {
		return err
	}
	o.Status = st
	o.PaymentStatus = ps
	return nil
}
