package normalizer

import (
	"fmt"
	"strings"
	"time"
)

// Layouts tried when detecting a column's date representation. Day-first layouts
// come before month-first ones because imported statements are mostly Brazilian
// and Portuguese.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2/1/2006",
	"01/02/2006",
	"1/2/2006",
	"02/01/06",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04",
}

// DetectDateLayout returns the layout that parses the most samples, or "" when
// none parse. Ties go to the earlier layout in the preference list.
func DetectDateLayout(samples []string) string {
	best, bestHits := "", 0
	for _, layout := range dateLayouts {
		hits := 0
		for _, s := range samples {
			if _, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = layout, hits
		}
	}
	return best
}

// ParseDate parses raw with the preferred layout first, then every known layout.
// The result is truncated to a calendar date in UTC.
func ParseDate(raw, preferredLayout string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidDate
	}

	if preferredLayout != "" {
		if t, err := time.Parse(preferredLayout, raw); err == nil {
			return calendarDate(t), nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return calendarDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// IsDate reports whether raw parses as a date in any known layout.
func IsDate(raw string) bool {
	_, err := ParseDate(raw, "")
	return err == nil
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
