package market

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the command line, in
// configuration and in CSV files.
const DateLayout = "2006-01-02"

// Bar is one dated OHLCV observation.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Date truncates the bar time to its UTC calendar day.
func (b Bar) Date() time.Time {
	return Day(b.Time)
}

// Day returns t truncated to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00", // pandas index export
	"2006-01-02 15:04:05",
}

// ParseDate accepts YYYY-MM-DD, RFC3339 or a "date time[offset]" stamp.
// Stamps with an offset are returned in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var first error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if first == nil {
			first = err
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q: %w", s, first)
}
