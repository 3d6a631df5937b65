package orders

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDateAcceptedForms(t *testing.T) {
	cases := map[string]time.Time{
		"2025-01-15":           day(2025, time.January, 15),
		"2025/1/5":             day(2025, time.January, 5),
		"15-01-2025":           day(2025, time.January, 15),
		"15/01/2025":           day(2025, time.January, 15),
		"15.01.2025":           day(2025, time.January, 15),
		"5-1-25":               day(2025, time.January, 5),
		"15-Jan-2025":          day(2025, time.January, 15),
		"15-jan-25":            day(2025, time.January, 15),
		"3 Sept 2024":          day(2024, time.September, 3),
		"01-Mar-99":            day(1999, time.March, 1),
		"2025-01-15T10:30:00Z": day(2025, time.January, 15),
		"Jan 2, 2006":          day(2006, time.January, 2),
		"  2024-02-29  ":       day(2024, time.February, 29),
	}
	for in, want := range cases {
		got, ok := ParseDate(in)
		require.True(t, ok, in)
		require.True(t, want.Equal(got), "%s: got %s", in, got)
	}
}

func TestParseDateConvertsOffsetToUTCDay(t *testing.T) {
	got, ok := ParseDate("2025-01-15T02:00:00+05:30")
	require.True(t, ok)
	require.Equal(t, day(2025, time.January, 14), got)
}

func TestParseDateNeverDefaultsToNow(t *testing.T) {
	for _, in := range []any{
		"", "   ", "not a date", "31-02-2024", "2025-13-01", "00-01-2025",
		"15-Foo-2025", "2023-02-29", nil, 42, time.Time{}, (*time.Time)(nil), Date{},
	} {
		got, ok := ParseDate(in)
		require.False(t, ok, "%v", in)
		require.True(t, got.IsZero(), "%v", in)
	}
}

func TestParseDateTypedValues(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	ts := time.Date(2025, time.March, 4, 18, 0, 0, 0, ist)

	got, ok := ParseDate(ts)
	require.True(t, ok)
	require.Equal(t, day(2025, time.March, 4), got)

	got, ok = ParseDate(&ts)
	require.True(t, ok)
	require.Equal(t, day(2025, time.March, 4), got)

	got, ok = ParseDate(NewDate(ts))
	require.True(t, ok)
	require.Equal(t, day(2025, time.March, 4), got)
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"15-01-2025"}`), &payload))
	require.Equal(t, "2025-01-15", payload.Date.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	require.JSONEq(t, `{"date":"2025-01-15"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"date":null}`), &payload))
	require.False(t, payload.Date.Valid())
	out, err = json.Marshal(payload)
	require.NoError(t, err)
	require.JSONEq(t, `{"date":null}`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"date":"yesterday"}`), &payload))
}
