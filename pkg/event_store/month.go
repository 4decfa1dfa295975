package event_store

import (
	"time"

	"github.com/klokku/monthcal/pkg/calendar"
	"github.com/klokku/monthcal/pkg/dates"
)

type DayCell struct {
	Date    time.Time        `json:"date"`
	InMonth bool             `json:"inMonth"`
	IsToday bool             `json:"isToday"`
	Events  []calendar.Event `json:"events"`
}

// MonthView is the month grid around an anchor date: whole weeks from the
// Sunday before the first of the month to the Saturday after its last day.
type MonthView struct {
	Title string    `json:"title"`
	Month time.Time `json:"month"`
	Prev  time.Time `json:"prev"`
	Next  time.Time `json:"next"`
	Days  []DayCell `json:"days"`
}

func (s *Store) MonthView(anchor time.Time) MonthView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grid := dates.GridDays(anchor)
	days := make([]DayCell, 0, len(grid))
	for _, day := range grid {
		days = append(days, DayCell{
			Date:    day,
			InMonth: dates.IsInMonth(day, anchor),
			IsToday: dates.IsToday(s.clock, day),
			Events:  calendar.CloneAll(calendar.EventsForDate(s.visible, day)),
		})
	}

	return MonthView{
		Title: dates.FormatMonthYear(anchor),
		Month: dates.StartOfMonth(anchor),
		Prev:  dates.StartOfMonth(dates.MonthShift(anchor, dates.Prev)),
		Next:  dates.StartOfMonth(dates.MonthShift(anchor, dates.Next)),
		Days:  days,
	}
}
