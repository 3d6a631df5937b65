package orders

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of an order date.
const DateLayout = "2006-01-02"

var (
	ymdPattern   = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	dmyPattern   = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4}|\d{2})$`)
	dMonYPattern = regexp.MustCompile(`^(\d{1,2})[-\s/]+([A-Za-z]{3,9})[-\s/,]+(\d{4}|\d{2})$`)

	fallbackLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"Jan 2, 2006",
		"January 2, 2006",
		"Jan 2 2006",
		"Mon Jan 2 2006",
		"Mon, 02 Jan 2006",
	}

	monthNames = []string{
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	}
)

// ParseDate turns the heterogeneous date representations found in stored
// records, spreadsheets and API payloads into a UTC midnight. It reports false
// instead of substituting a default; callers decide how to surface that.
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return truncateUTC(t), true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return ParseDate(*t)
	case Date:
		return ParseDate(t.Time)
	case *Date:
		if t == nil {
			return time.Time{}, false
		}
		return ParseDate(t.Time)
	case string:
		return ParseDateString(t)
	case *string:
		if t == nil {
			return time.Time{}, false
		}
		return ParseDateString(*t)
	default:
		return time.Time{}, false
	}
}

// ParseDateString parses the string forms accepted by ParseDate.
func ParseDateString(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := ymdPattern.FindStringSubmatch(s); m != nil {
		return civil(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := dmyPattern.FindStringSubmatch(s); m != nil {
		return civil(expandYear(m[3]), atoi(m[2]), atoi(m[1]))
	}
	if m := dMonYPattern.FindStringSubmatch(s); m != nil {
		month, ok := monthFromName(m[2])
		if !ok {
			return time.Time{}, false
		}
		return civil(expandYear(m[3]), month, atoi(m[1]))
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateUTC(t), true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateUTC(t), true
		}
	}
	return time.Time{}, false
}

func truncateUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// civil builds a date and rejects day or month overflow such as 31-02.
func civil(year, month, day int) (time.Time, bool) {
	if year <= 0 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// expandYear maps two-digit years below 50 to 20yy and the rest to 19yy.
func expandYear(s string) int {
	y := atoi(s)
	if len(s) > 2 {
		return y
	}
	if y < 50 {
		return 2000 + y
	}
	return 1900 + y
}

func monthFromName(name string) (int, bool) {
	lower := strings.ToLower(name)
	for i, full := range monthNames {
		if strings.HasPrefix(full, lower) && len(lower) >= 3 {
			return i + 1, true
		}
	}
	return 0, false
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

// Date is a day-granular order date. The zero value means "no valid date".
type Date struct {
	time.Time
}

// NewDate truncates t to its UTC day.
func NewDate(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return Date{Time: truncateUTC(t)}
}

// Valid reports whether the date carries a value.
func (d Date) Valid() bool { return !d.IsZero() }

// String formats the date as YYYY-MM-DD, or "" when unset.
func (d Date) String() string {
	if !d.Valid() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		*d = Date{}
		return nil
	}
	t, ok := ParseDateString(raw)
	if !ok {
		return fmt.Errorf("date: invalid date %q", raw)
	}
	*d = Date{Time: t}
	return nil
}
