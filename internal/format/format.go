// Package format turns backend values into display strings and download bodies.
package format

import (
	"html"
	"math"
	"strconv"
	"strings"
	"time"
)

// Display placeholders for optional values.
const (
	NotAvailable  = "N/A"
	Unknown       = "Unknown"
	UnknownPerson = "Unknown Person"
)

// Timestamp layouts the backend emits. Python's isoformat omits the offset
// for naive datetimes, which are read in the display location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp reads a backend timestamp. Values without an offset are
// interpreted in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// Time renders a timestamp as "May 1, 08:00:00" in loc. Empty input yields
// N/A; unparseable input is returned unchanged so nothing is silently lost.
func Time(s string, loc *time.Location) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	t, ok := ParseTimestamp(s, loc)
	if !ok {
		return s
	}
	return t.Format("Jan 2, 15:04:05")
}

// EpochTime renders captured-image timestamps (Unix seconds, possibly
// fractional) as "01/05 08:00:00" (day/month).
func EpochTime(sec float64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).In(loc).Format("02/01 15:04:05")
}

// HourLabel renders a bucket hour as "8h".
func HourLabel(s string, loc *time.Location) string {
	t, ok := ParseTimestamp(s, loc)
	if !ok {
		return "?h"
	}
	return strconv.Itoa(t.Hour()) + "h"
}

// Date renders t as YYYY-MM-DD, the value format of date inputs.
func Date(t time.Time) string {
	return t.Format("2006-01-02")
}

// ClockTime is the 24h header clock.
func ClockTime(t time.Time) string {
	return t.Format("15:04:05")
}

// LastUpdate is the long "last update" stamp under the clock.
func LastUpdate(t time.Time) string {
	return t.Format("1/2/2006, 3:04:05 PM")
}

// EscapeHTML escapes text for insertion into markup, attributes included.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// Percent renders a 0..1 similarity as "93.5%". Nil and zero render N/A.
func Percent(v *float64) string {
	if v == nil || *v == 0 {
		return NotAvailable
	}
	return strconv.FormatFloat(*v*100, 'f', 1, 64) + "%"
}

// OrDefault dereferences s, substituting fallback for nil or empty values.
func OrDefault(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
