package engine

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Day-granular point with format normalization
// =============================================================================

// Date is a calendar day. Source records carry dates in two literal
// forms, dot-separated ("2025.03.10") and dash-separated
// ("2025-03-10"); ParseDate is the single normalization point so no
// unnormalized comparison can slip through.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts both recognized literal formats. Anything else
// fails loudly: skipping a malformed date would silently under-count
// an instructor's pay or conflicts.
func ParseDate(s string) (Date, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), ".", "-")
	t, err := time.Parse("2006-1-2", normalized)
	if err != nil {
		return Date{}, &MalformedDateError{Input: s}
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// Today returns the current calendar day.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// MustDate is for tests and seed data only.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// MonthKey returns the calendar month the date falls in.
func (d Date) MonthKey() Month { return Month{Year: d.Year(), Month: d.Month()} }

// =============================================================================
// MONTH - Calendar month key for aggregation and capacity grouping
// =============================================================================

type Month struct {
	Year  int
	Month time.Month
}

func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) Contains(d Date) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

// MonthsSpanned returns every calendar month in [from, to], inclusive.
func MonthsSpanned(from, to Date) []Month {
	var months []Month
	current := from.MonthKey()
	last := to.MonthKey()
	for {
		months = append(months, current)
		if !current.Before(last) {
			break
		}
		current = current.Next()
	}
	return months
}

// =============================================================================
// TIME OF DAY / TIME RANGE - Lesson scheduling
// =============================================================================

// TimeOfDay is minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, &MalformedTimeError{Input: s}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, &MalformedTimeError{Input: s}
	}
	return TimeOfDay(h*60 + m), nil
}

func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60) }

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start TimeOfDay
	End   TimeOfDay
}

func NewTimeRange(start, end TimeOfDay) TimeRange { return TimeRange{Start: start, End: end} }

func (r TimeRange) Valid() bool { return r.Start < r.End }

// Overlaps reports whether two half-open ranges intersect:
// [s1,e1) and [s2,e2) overlap iff s1 < e2 && s2 < e1. Back-to-back
// ranges (e1 == s2) do not overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start < o.End && o.Start < r.End
}

func (r TimeRange) String() string { return r.Start.String() + "-" + r.End.String() }
