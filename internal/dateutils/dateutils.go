// Package dateutils provides common date and time operations used throughout the application.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayoutISO is the calendar date form used for report dates.
const DateLayoutISO = "2006-01-02"

// OccurredAtLayouts lists the timestamp layouts found in transaction exports.
// Layouts carrying an offset keep it, so the calendar date is the one written in the cell.
var OccurredAtLayouts = []string{
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayoutISO,
}

var whitespace = regexp.MustCompile(`\s+`)

// CleanDateString removes unwanted characters and normalizes a date string
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseOccurredAt parses a transaction timestamp as wall-clock time.
func ParseOccurredAt(raw string) (time.Time, error) {
	cleaned := CleanDateString(raw)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range OccurredAtLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", raw)
}

// ReportDate truncates a raw timestamp to YYYY-MM-DD without any timezone
// conversion. An unparseable cell yields "".
func ReportDate(raw string) string {
	t, err := ParseOccurredAt(raw)
	if err != nil {
		return ""
	}
	return ToISODate(t)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// IsValidReportDate reports whether s is a YYYY-MM-DD calendar date.
func IsValidReportDate(s string) bool {
	_, err := time.Parse(DateLayoutISO, s)
	return err == nil
}

// InRange reports whether date lies within [from, to]. Empty bounds are open.
// An empty date is never in range.
func InRange(date, from, to string) bool {
	if date == "" {
		return false
	}
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

// CompareDates compares two dates and returns:
//
//	-1 if date1 is before date2
//	 0 if date1 is equal to date2
//	 1 if date1 is after date2
func CompareDates(date1, date2 time.Time) int {
	date1 = time.Date(date1.Year(), date1.Month(), date1.Day(), 0, 0, 0, 0, time.UTC)
	date2 = time.Date(date2.Year(), date2.Month(), date2.Day(), 0, 0, 0, 0, time.UTC)

	if date1.Before(date2) {
		return -1
	} else if date1.After(date2) {
		return 1
	}
	return 0
}
