// package schedule implements maintenance due-date arithmetic.
//
// Dates are plain local calendar dates in MM/DD/YYYY form; there is no
// timezone handling and no recurrence exceptions. Computed state is never
// persisted.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and display format for all entity dates.
const DateLayout = "01/02/2006"

// DueSoonWindow is how far ahead of "now" an item counts as due soon.
const DueSoonWindow = 30 * 24 * time.Hour

// Frequency units accepted by maintenance schedules.
const (
	UnitDays   = "days"
	UnitWeeks  = "weeks"
	UnitMonths = "months"
	UnitYears  = "years"
)

// Status classifies a schedule relative to "now".
type Status int

const (
	StatusUnknown Status = iota // no usable anchor date
	StatusUpcoming
	StatusDueSoon
	StatusOverdue
)

func (s Status) String() string {
	switch s {
	case StatusUpcoming:
		return "upcoming"
	case StatusDueSoon:
		return "due soon"
	case StatusOverdue:
		return "overdue"
	default:
		return "unknown"
	}
}

// ParseDate parses an MM/DD/YYYY date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected MM/DD/YYYY): %w", s, err)
	}
	return t, nil
}

// FormatDate renders a time as MM/DD/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidUnit reports whether unit is an accepted frequency unit.
func ValidUnit(unit string) bool {
	switch unit {
	case UnitDays, UnitWeeks, UnitMonths, UnitYears:
		return true
	}
	return false
}

// NextDueDate computes when a schedule is next due.
//
// The anchor is the last completion date when present, otherwise the base
// date. Returns ok=false when no anchor is available or the unit is unknown.
func NextDueDate(baseDate, lastCompletion time.Time, frequency int, unit string) (time.Time, bool) {
	anchor := baseDate
	if !lastCompletion.IsZero() {
		anchor = lastCompletion
	}
	if anchor.IsZero() || frequency <= 0 {
		return time.Time{}, false
	}

	switch unit {
	case UnitDays:
		return anchor.AddDate(0, 0, frequency), true
	case UnitWeeks:
		return anchor.AddDate(0, 0, 7*frequency), true
	case UnitMonths:
		return anchor.AddDate(0, frequency, 0), true
	case UnitYears:
		return anchor.AddDate(frequency, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// Classify derives the status of a due date relative to now.
func Classify(due time.Time, now time.Time) Status {
	if due.IsZero() {
		return StatusUnknown
	}
	if due.Before(now) {
		return StatusOverdue
	}
	if due.Sub(now) <= DueSoonWindow {
		return StatusDueSoon
	}
	return StatusUpcoming
}

// NextDueFromStrings is the string-typed variant used by callers holding raw
// MM/DD/YYYY fields. Unparseable or empty anchors yield ok=false.
func NextDueFromStrings(baseDate, lastCompletion string, frequency int, unit string) (time.Time, bool) {
	var base, last time.Time
	if baseDate != "" {
		if t, err := ParseDate(baseDate); err == nil {
			base = t
		}
	}
	if lastCompletion != "" {
		if t, err := ParseDate(lastCompletion); err == nil {
			last = t
		}
	}
	return NextDueDate(base, last, frequency, unit)
}
