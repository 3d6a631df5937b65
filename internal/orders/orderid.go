package orders

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// MaxIDAttempts bounds the insert retries after an order ID collision.
const MaxIDAttempts = 1000

// ErrIDGeneration is returned when no free order ID was found within MaxIDAttempts.
var ErrIDGeneration = errors.New("unable to generate a unique order id")

// GenerationError records the last ID tried before giving up.
type GenerationError struct {
	Attempts int
	LastID   string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s after %d attempts (last %s)", ErrIDGeneration, e.Attempts, e.LastID)
}

func (e *GenerationError) Unwrap() error { return ErrIDGeneration }

var sequencePattern = regexp.MustCompile(`-(\d+)\s*$`)

// SequenceOf extracts the trailing sequence number of an order ID.
func SequenceOf(id string) (int, bool) {
	m := sequencePattern.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatOrderID renders HB-{Mon}'{YY}-{MM}-{NNNNNN} for the UTC month of date.
func FormatOrderID(date time.Time, seq int) string {
	d := date.UTC()
	return fmt.Sprintf("HB-%s'%02d-%02d-%06d", d.Format("Jan"), d.Year()%100, int(d.Month()), seq)
}

// MaxSequence returns the highest sequence across all orders. The sequence is
// global, not per month.
func MaxSequence(list []Order) int {
	max := 0
	for _, o := range list {
		if n, ok := SequenceOf(o.OrderID); ok && n > max {
			max = n
		}
	}
	return max
}

// NextOrderID proposes the ID following the global maximum.
func NextOrderID(date time.Time, existing []Order) string {
	return FormatOrderID(date, MaxSequence(existing)+1)
}
