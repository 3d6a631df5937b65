package orders

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// FieldErrors maps a JSON field name to a human readable message.
type FieldErrors map[string]string

// ValidationError carries field-scoped messages and wraps httpx.ErrValidation.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return httpx.ErrValidation }

// FieldErrors implements httpx.FieldErrorer.
func (e *ValidationError) FieldErrors() map[string]string { return e.Fields }

var addressPattern = regexp.MustCompile(`^[A-Za-z0-9 \-/]+$`)

var messages = map[string]string{
	"orderId.required":         "is required",
	"date.required":            "is required",
	"date.notfuture":           "cannot be in the future",
	"deliveryAddress.required": "is required",
	"deliveryAddress.min":      "must be at least 3 characters",
	"deliveryAddress.address":  "may only contain letters, numbers, spaces, hyphens and slashes",
	"quantity.min":             "must be between 1 and 50",
	"quantity.max":             "must be between 1 and 50",
	"unitPrice.gte":            "must be between 10 and 1000",
	"unitPrice.lte":            "must be between 10 and 1000",
	"total.total":              "must equal quantity × unit price",
	"mode.required":            "is required",
	"status.status":            ErrInvalidStatus.Error(),
	"paymentStatus.statussync": "must match status",
	"paymentMode.paymentmode":  ErrInvalidPaymentMode.Error(),
	"billingMonth.min":         "must be between 1 and 12",
	"billingMonth.max":         "must be between 1 and 12",
}

// Validator checks orders against the record rules. Dates are compared with
// "today" in the business time zone.
type Validator struct {
	v   *validator.Validate
	loc *time.Location
	now func() time.Time
}

// NewValidator builds a Validator. A nil loc means UTC.
func NewValidator(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	ov := &Validator{v: validator.New(), loc: loc, now: time.Now}

	ov.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	ov.v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(Date); ok {
			return d.Time
		}
		return nil
	}, Date{})

	must(ov.v.RegisterValidation("address", func(fl validator.FieldLevel) bool {
		return addressPattern.MatchString(fl.Field().String())
	}))
	must(ov.v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		s := Status(fl.Field().String())
		return s == StatusPaid || s == StatusUnpaid
	}))
	must(ov.v.RegisterValidation("paymentmode", func(fl validator.FieldLevel) bool {
		switch PaymentMode(fl.Field().String()) {
		case PaymentModeNone, PaymentModeCash, PaymentModeOnline:
			return true
		}
		return false
	}, true))
	must(ov.v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok || t.IsZero() {
			return true
		}
		return !t.After(ov.today())
	}))
	ov.v.RegisterStructValidation(func(sl validator.StructLevel) {
		o := sl.Current().Interface().(Order)
		if !TotalMatches(o) {
			sl.ReportError(o.Total, "total", "Total", "total", "")
		}
		if _, ps, err := NormalizeStatus(string(o.Status)); err == nil && ps != o.PaymentStatus {
			sl.ReportError(o.PaymentStatus, "paymentStatus", "PaymentStatus", "statussync", "")
		}
	}, Order{})
	return ov
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// today is the current business day expressed as a UTC midnight so it
// compares directly with order dates.
func (v *Validator) today() time.Time {
	n := v.now().In(v.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Validate runs every rule and returns the failures keyed by field.
func (v *Validator) Validate(o Order) FieldErrors {
	out := FieldErrors{}
	err := v.v.Struct(o)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		if msg, ok := messages[field+"."+fe.Tag()]; ok {
			out[field] = msg
		} else {
			out[field] = fmt.Sprintf("failed %s validation", fe.Tag())
		}
	}
	return out
}

// ValidateTouched limits the report to fields the user has interacted with.
// Total is reported once quantity or unit price is touched.
func (v *Validator) ValidateTouched(o Order, touched []string) FieldErrors {
	all := v.Validate(o)
	out := FieldErrors{}
	for field, msg := range all {
		switch {
		case slices.Contains(touched, field):
			out[field] = msg
		case field == "total" && (slices.Contains(touched, "quantity") || slices.Contains(touched, "unitPrice")):
			out[field] = msg
		}
	}
	return out
}

// Check returns a *ValidationError when any rule fails.
func (v *Validator) Check(o Order) error {
	if fields := v.Validate(o); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// MergeFieldErrors joins validation failures from several sources.
func MergeFieldErrors(errs ...error) error {
	merged := FieldErrors{}
	for _, err := range errs {
		var ve *ValidationError
		if errors.As(err, &ve) {
			for k, msg := range ve.Fields {
				if _, ok := merged[k]; !ok {
					merged[k] = msg
				}
			}
		} else if err != nil {
			return err
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return &ValidationError{Fields: merged}
}
