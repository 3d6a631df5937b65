package importer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// Options steer reconciliation against existing orders.
//
// UpdateExisting applies to rows that carry an Order ID already in the store.
// SkipDuplicates applies to rows without an Order ID: a row is skipped when an
// order with the same address exists on the same day.
type Options struct {
	SkipDuplicates bool `json:"skipDuplicates"`
	UpdateExisting bool `json:"updateExisting"`
}

// DefaultOptions skips duplicates and never overwrites.
var DefaultOptions = Options{SkipDuplicates: true}

// ParseOptions decodes the multipart options field. Empty means DefaultOptions.
func ParseOptions(raw string) (Options, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultOptions, nil
	}
	opts := DefaultOptions
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return Options{}, fmt.Errorf("%w: options: %v", httpx.ErrValidation, err)
	}
	return opts, nil
}
