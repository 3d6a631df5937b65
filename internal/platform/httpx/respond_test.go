package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type fieldErr struct{ fields map[string]string }

func (e fieldErr) Error() string                  { return "deliveryAddress: too short" }
func (e fieldErr) Unwrap() error                  { return ErrValidation }
func (e fieldErr) FieldErrors() map[string]string { return e.fields }

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("order HB-1: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("orderId taken: %w", ErrDuplicate), http.StatusConflict},
		{ErrValidation, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrTooLarge, http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		require.Equal(t, tc.status, rec.Code, tc.err.Error())

		var body ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.False(t, body.Success)
		require.Equal(t, tc.err.Error(), body.Message)
	}
}

func TestRespondErrorCarriesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fieldErr{fields: map[string]string{"deliveryAddress": "too short"}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "too short", body.Fields["deliveryAddress"])
}
