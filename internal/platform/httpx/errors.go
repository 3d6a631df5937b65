// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTooLarge     = errors.New("payload too large")
)

// FieldErrorer is implemented by validation errors that carry per-field messages.
type FieldErrorer interface {
	FieldErrors() map[string]string
}

// RespondError maps domain errors to the JSON error envelope.
func RespondError(w http.ResponseWriter, err error) {
	var fe FieldErrorer
	switch {
	case errors.As(err, &fe) && errors.Is(err, ErrValidation):
		Fail(w, http.StatusBadRequest, "Validation Failed", err.Error(), fe.FieldErrors())
	case errors.Is(err, ErrNotFound):
		Fail(w, http.StatusNotFound, "Not Found", err.Error(), nil)
	case errors.Is(err, ErrDuplicate):
		Fail(w, http.StatusConflict, "Duplicate", err.Error(), nil)
	case errors.Is(err, ErrValidation):
		Fail(w, http.StatusBadRequest, "Validation Failed", err.Error(), nil)
	case errors.Is(err, ErrForbidden):
		Fail(w, http.StatusForbidden, "Forbidden", err.Error(), nil)
	case errors.Is(err, ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, "Unauthorized", err.Error(), nil)
	case errors.Is(err, ErrTooLarge):
		Fail(w, http.StatusRequestEntityTooLarge, "Payload Too Large", err.Error(), nil)
	default:
		Fail(w, http.StatusInternalServerError, "Internal Error", err.Error(), nil)
	}
}
