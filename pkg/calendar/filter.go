package calendar

import (
	"slices"
	"strings"
	"time"

	"github.com/klokku/monthcal/pkg/dates"
)

// Search keeps events whose title or description contains query, ignoring case.
// A blank query keeps everything.
func Search(events []Event, query string) []Event {
	if strings.TrimSpace(query) == "" {
		return events
	}
	needle := strings.ToLower(query)

	matched := make([]Event, 0, len(events))
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Title), needle) ||
			strings.Contains(strings.ToLower(e.Description), needle) {
			matched = append(matched, e)
		}
	}
	return matched
}

// FilterByCategories keeps events in one of the given categories. An empty set
// keeps everything.
func FilterByCategories(events []Event, categories []Category) []Event {
	if len(categories) == 0 {
		return events
	}

	matched := make([]Event, 0, len(events))
	for _, e := range events {
		if slices.Contains(categories, e.Category) {
			matched = append(matched, e)
		}
	}
	return matched
}

// EventsForDate returns the events touching any part of day.
func EventsForDate(events []Event, day time.Time) []Event {
	matched := make([]Event, 0)
	for _, e := range events {
		if dates.IsDateInRange(day, e.StartDate, e.EndDate) {
			matched = append(matched, e)
		}
	}
	return matched
}

// InWindow returns the events overlapping [from, to].
func InWindow(events []Event, from, to time.Time) []Event {
	matched := make([]Event, 0, len(events))
	for _, e := range events {
		if dates.RangesOverlap(e.StartDate, e.EndDate, from, to) {
			matched = append(matched, e)
		}
	}
	return matched
}
