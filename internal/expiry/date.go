// Package expiry turns stored expiry text into calendar dates and decides
// which notification, if any, a product deserves.
package expiry

import (
	"strconv"
	"strings"
	"time"
)

// layouts are tried in order; the first that parses wins. Day and month take
// one or two digits, the year always four.
var layouts = []string{
	"2006-1-2", // YYYY-MM-DD
	"2/1/2006", // DD/MM/YYYY
	"2-1-2006", // DD-MM-YYYY
}

// ISOLayout is the layout expiry dates are normalized to for storage.
const ISOLayout = "2006-01-02"

// ParseDate parses expiry text in any accepted layout. The result is the
// calendar date at midnight UTC. Empty or unrecognised text reports false.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// DaysUntil returns the signed number of whole days from now's calendar date
// to the expiry date. Negative means the date has passed.
func DaysUntil(expiry, now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(today).Hours() / 24)
}

// italianMonths maps the abbreviated month names a barcode scanner or a user
// typing by hand produces, e.g. "28 nov 2025".
var italianMonths = map[string]time.Month{
	"gen": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"mag": time.May,
	"giu": time.June,
	"lug": time.July,
	"ago": time.August,
	"set": time.September,
	"ott": time.October,
	"nov": time.November,
	"dic": time.December,
}

// NormalizeForStorage rewrites expiry text as YYYY-MM-DD. Besides the layouts
// ParseDate accepts, it understands "D mon YYYY" with an Italian month
// abbreviation. Anything else yields "", i.e. no tracked expiry.
func NormalizeForStorage(raw string) string {
	if d, ok := ParseDate(raw); ok {
		return d.Format(ISOLayout)
	}
	if d, ok := parseItalian(raw); ok {
		return d.Format(ISOLayout)
	}
	return ""
}

func parseItalian(raw string) (time.Time, bool) {
	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) != 3 {
		return time.Time{}, false
	}

	month, ok := italianMonths[strings.TrimSuffix(fields[1], ".")]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}, false
	}
	if len(fields[2]) != 4 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, false
	}

	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31 feb -> 3 mar), which is not a valid input.
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}
