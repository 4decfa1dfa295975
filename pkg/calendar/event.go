package calendar

import (
	"time"
)

type Color string

const (
	ColorBlue    Color = "blue"
	ColorPurple  Color = "purple"
	ColorEmerald Color = "emerald"
	ColorOrange  Color = "orange"
	ColorRed     Color = "red"
	ColorYellow  Color = "yellow"
	ColorPink    Color = "pink"
	ColorIndigo  Color = "indigo"
)

var Colors = []Color{ColorBlue, ColorPurple, ColorEmerald, ColorOrange, ColorRed, ColorYellow, ColorPink, ColorIndigo}

type Category string

const (
	CategoryWork      Category = "work"
	CategoryPersonal  Category = "personal"
	CategoryHealth    Category = "health"
	CategorySocial    Category = "social"
	CategoryEducation Category = "education"
	CategoryFamily    Category = "family"
	CategoryTravel    Category = "travel"
	CategoryOther     Category = "other"
)

var Categories = []Category{
	CategoryWork, CategoryPersonal, CategoryHealth, CategorySocial,
	CategoryEducation, CategoryFamily, CategoryTravel, CategoryOther,
}

type RecurrenceType string

const (
	Daily   RecurrenceType = "daily"
	Weekly  RecurrenceType = "weekly"
	Monthly RecurrenceType = "monthly"
	Custom  RecurrenceType = "custom"
)

type RecurrencePattern struct {
	Type     RecurrenceType `json:"type"`
	Interval int            `json:"interval"`
	// DaysOfWeek holds weekday indexes, 0 = Sunday. Only used by weekly patterns.
	DaysOfWeek []int `json:"daysOfWeek,omitempty"`
	// DayOfMonth anchors monthly patterns; 0 means unset.
	DayOfMonth          int        `json:"dayOfMonth,omitempty"`
	EndDate             *time.Time `json:"endDate,omitempty"`
	EndAfterOccurrences int        `json:"endAfterOccurrences,omitempty"`
}

// Event is both the persisted base definition and a derived occurrence.
// Occurrences carry OriginalEventID pointing at their base event.
type Event struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description,omitempty"`
	StartDate       time.Time          `json:"startDate"`
	EndDate         time.Time          `json:"endDate"`
	Color           Color              `json:"color"`
	Category        Category           `json:"category"`
	IsRecurring     bool               `json:"isRecurring"`
	Recurrence      *RecurrencePattern `json:"recurrence,omitempty"`
	OriginalEventID string             `json:"originalEventId,omitempty"`
}

func (e Event) Duration() time.Duration {
	return e.EndDate.Sub(e.StartDate)
}

// IsOccurrence reports whether e was derived from a recurring base event.
func (e Event) IsOccurrence() bool {
	return e.OriginalEventID != ""
}

func (p *RecurrencePattern) Clone() *RecurrencePattern {
	if p == nil {
		return nil
	}
	pattern := *p
	if pattern.DaysOfWeek != nil {
		pattern.DaysOfWeek = append([]int(nil), pattern.DaysOfWeek...)
	}
	if pattern.EndDate != nil {
		endDate := *pattern.EndDate
		pattern.EndDate = &endDate
	}
	return &pattern
}

// Clone returns a copy that shares no mutable state with e.
func (e Event) Clone() Event {
	e.Recurrence = e.Recurrence.Clone()
	return e
}

func CloneAll(events []Event) []Event {
	cloned := make([]Event, 0, len(events))
	for _, e := range events {
		cloned = append(cloned, e.Clone())
	}
	return cloned
}
