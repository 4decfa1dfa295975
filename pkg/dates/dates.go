// Package dates holds the calendar arithmetic shared by the expander, the
// conflict resolver and the month grid. Every function interprets a time in its
// own location, so callers pass values already in the host's local calendar.
package dates

import (
	"fmt"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04"
	MonthYearLayout = "January 2006"
)

type Direction int

const (
	Prev Direction = iota
	Next
)

// DayBounds returns midnight and the last millisecond (23:59:59.999) of t's day.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
	return start, end
}

// AddMonths moves t by n calendar months keeping the wall clock. When the
// day-of-month does not exist in the target month it is clamped to the last
// day of that month, so Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// MonthShift is the month navigation step of the calendar header.
func MonthShift(t time.Time, direction Direction) time.Time {
	if direction == Next {
		return AddMonths(t, 1)
	}
	return AddMonths(t, -1)
}

// RangesOverlap reports whether the closed intervals [startA, endA] and
// [startB, endB] intersect. Touching endpoints overlap.
func RangesOverlap(startA, endA, startB, endB time.Time) bool {
	return !endA.Before(startB) && !startA.After(endB)
}

func IsSameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsInMonth reports whether t falls in the same year and month as anchor.
func IsInMonth(t, anchor time.Time) bool {
	return t.Year() == anchor.Year() && t.Month() == anchor.Month()
}

func IsToday(clock Clock, t time.Time) bool {
	return IsSameCalendarDay(clock.Now().In(t.Location()), t)
}

// IsDateInRange reports whether any part of day overlaps [start, end].
func IsDateInRange(day, start, end time.Time) bool {
	dayStart, dayEnd := DayBounds(day)
	return RangesOverlap(dayStart, dayEnd, start, end)
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last millisecond of t's month.
func EndOfMonth(t time.Time) time.Time {
	last := time.Date(t.Year(), t.Month(), daysIn(t.Year(), t.Month()), 0, 0, 0, 0, t.Location())
	_, end := DayBounds(last)
	return end
}

// StartOfWeek returns midnight of the Sunday on or before t.
func StartOfWeek(t time.Time) time.Time {
	start, _ := DayBounds(t)
	return start.AddDate(0, 0, -int(start.Weekday()))
}

// GridDays lists the days of a Sunday-first month grid: the week holding the
// 1st through the week holding the last day of anchor's month. That is five or
// six weeks, or four for a February starting on a Sunday in a common year.
func GridDays(anchor time.Time) []time.Time {
	first := StartOfMonth(anchor)
	last := time.Date(first.Year(), first.Month(), daysIn(first.Year(), first.Month()), 0, 0, 0, 0, first.Location())
	gridStart := StartOfWeek(first)
	gridEnd := StartOfWeek(last).AddDate(0, 0, 6)

	days := make([]time.Time, 0, 42)
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

// ParseDateTime combines a "YYYY-MM-DD" date and an "HH:MM" time into an
// instant in loc.
func ParseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

func FormatMonthYear(t time.Time) string {
	return t.Format(MonthYearLayout)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
