package util

import (
	"strconv"
	"time"
)

// DateLayout is the calendar-date layout used for evaluation dates.
const DateLayout = "2006-01-02"

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MarketZone returns a fixed zone for the exchange's offset from UTC in hours.
func MarketZone(offsetHours int) *time.Location {
	if offsetHours == 0 {
		return time.UTC
	}
	return time.FixedZone("UTC"+strconv.Itoa(offsetHours), offsetHours*3600)
}

// Today formats the current calendar date in loc.
func Today(loc *time.Location) string {
	return time.Now().In(loc).Format(DateLayout)
}

// ShiftDate adds days to a YYYY-MM-DD date. Invalid input is returned unchanged.
func ShiftDate(date string, days int) string {
	t, ok := ParseDate(date)
	if !ok {
		return date
	}
	return t.AddDate(0, 0, days).Format(DateLayout)
}
