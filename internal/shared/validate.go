package shared

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// Validate checks request payloads for the document resources. Field names in
// errors are the JSON names.
var Validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("no_xss", validateNoXSS); err != nil {
		panic(err)
	}
	return v
}

var xssPatterns = []string{"<script", "javascript:", "onerror=", "onload=", "<iframe", "<object", "<embed"}

func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	for _, p := range xssPatterns {
		if strings.Contains(value, p) {
			return false
		}
	}
	return true
}

// FieldsError maps field paths to messages. It wraps httpx.ErrValidation.
type FieldsError struct {
	Fields map[string]string
}

func (e *FieldsError) Error() string {
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

func (e *FieldsError) Unwrap() error { return httpx.ErrValidation }

// FieldErrors implements httpx.FieldErrorer.
func (e *FieldsError) FieldErrors() map[string]string { return e.Fields }

// ValidateStruct runs Validate over v and converts failures to a FieldsError.
func ValidateStruct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return &FieldsError{Fields: fields}
}

// fieldPath drops the root struct name: "Offer.items[0].name" -> "items[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "gtefield":
		return fmt.Sprintf("must not be before %s", fe.Param())
	case "no_xss":
		return "contains disallowed markup"
	default:
		return "is invalid"
	}
}
