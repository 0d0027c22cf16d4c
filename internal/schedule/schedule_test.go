package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	t.Run("valid date", func(t *testing.T) {
		got, err := ParseDate("01/15/2024")
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if got.Year() != 2024 || got.Month() != time.January || got.Day() != 15 {
			t.Errorf("unexpected date: %v", got)
		}
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		if _, err := ParseDate("  02/01/2024 "); err != nil {
			t.Errorf("expected trimmed parse to succeed: %v", err)
		}
	})

	t.Run("rejects other layouts", func(t *testing.T) {
		for _, input := range []string{"2024-01-15", "15/01/2024", "Jan 15 2024", ""} {
			if _, err := ParseDate(input); err == nil {
				t.Errorf("expected error for %q", input)
			}
		}
	})
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(date(2024, time.February, 5)); got != "02/05/2024" {
		t.Errorf("expected 02/05/2024, got %s", got)
	}
}

func TestValidUnit(t *testing.T) {
	for _, unit := range []string{UnitDays, UnitWeeks, UnitMonths, UnitYears} {
		if !ValidUnit(unit) {
			t.Errorf("expected %q to be valid", unit)
		}
	}
	for _, unit := range []string{"", "fortnights", "Days"} {
		if ValidUnit(unit) {
			t.Errorf("expected %q to be invalid", unit)
		}
	}
}

func TestNextDueDate(t *testing.T) {
	base := date(2024, time.January, 15)

	tc := []struct {
		name      string
		base      time.Time
		last      time.Time
		frequency int
		unit      string
		want      time.Time
		ok        bool
	}{
		{"monthly from base", base, time.Time{}, 1, UnitMonths, date(2024, time.February, 15), true},
		{"completion overrides base", base, date(2024, time.March, 1), 1, UnitMonths, date(2024, time.April, 1), true},
		{"days", base, time.Time{}, 10, UnitDays, date(2024, time.January, 25), true},
		{"weeks", base, time.Time{}, 2, UnitWeeks, date(2024, time.January, 29), true},
		{"years", base, time.Time{}, 1, UnitYears, date(2025, time.January, 15), true},
		{"no anchor", time.Time{}, time.Time{}, 1, UnitMonths, time.Time{}, false},
		{"zero frequency", base, time.Time{}, 0, UnitMonths, time.Time{}, false},
		{"unknown unit", base, time.Time{}, 1, "fortnights", time.Time{}, false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextDueDate(tt.base, tt.last, tt.frequency, tt.unit)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	now := date(2024, time.February, 20)

	tc := []struct {
		name string
		due  time.Time
		want Status
	}{
		{"past due is overdue", date(2024, time.February, 15), StatusOverdue},
		{"inside the window is due soon", date(2024, time.March, 10), StatusDueSoon},
		{"window boundary is due soon", now.Add(DueSoonWindow), StatusDueSoon},
		{"far future is upcoming", date(2024, time.June, 1), StatusUpcoming},
		{"zero date is unknown", time.Time{}, StatusUnknown},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.due, now); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextDueFromStrings(t *testing.T) {
	t.Run("monthly item completed mid-january is due mid-february", func(t *testing.T) {
		got, ok := NextDueFromStrings("", "01/15/2024", 1, UnitMonths)
		if !ok {
			t.Fatal("expected a due date")
		}
		if FormatDate(got) != "02/15/2024" {
			t.Errorf("expected 02/15/2024, got %s", FormatDate(got))
		}
	})

	t.Run("empty anchors yield no due date", func(t *testing.T) {
		if _, ok := NextDueFromStrings("", "", 1, UnitMonths); ok {
			t.Error("expected ok=false")
		}
	})

	t.Run("garbage dates are ignored", func(t *testing.T) {
		if _, ok := NextDueFromStrings("not a date", "", 1, UnitMonths); ok {
			t.Error("expected ok=false")
		}
	})
}

func TestStatusString(t *testing.T) {
	tc := map[Status]string{
		StatusUpcoming: "upcoming",
		StatusDueSoon:  "due soon",
		StatusOverdue:  "overdue",
		StatusUnknown:  "unknown",
	}
	for status, want := range tc {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}
