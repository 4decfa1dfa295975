package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/klokku/monthcal/pkg/dates"
)

var ErrInvalidForm = errors.New("invalid event form")

// FormInput is the flat record submitted by the event editor. Dates are
// "YYYY-MM-DD" and times "HH:MM", both read in the host's local calendar.
type FormInput struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	StartDate   string             `json:"startDate"`
	StartTime   string             `json:"startTime"`
	EndDate     string             `json:"endDate"`
	EndTime     string             `json:"endTime"`
	Color       Color              `json:"color"`
	Category    Category           `json:"category"`
	IsRecurring bool               `json:"isRecurring"`
	Recurrence  *RecurrencePattern `json:"recurrence,omitempty"`
}

// ToEvent builds a base event with the given id. The recurrence pattern is
// dropped unless the form marks the event as recurring.
func (f FormInput) ToEvent(id string, loc *time.Location) (Event, error) {
	start, err := dates.ParseDateTime(f.StartDate, f.StartTime, loc)
	if err != nil {
		return Event{}, fmt.Errorf("%w: start: %v", ErrInvalidForm, err)
	}
	end, err := dates.ParseDateTime(f.EndDate, f.EndTime, loc)
	if err != nil {
		return Event{}, fmt.Errorf("%w: end: %v", ErrInvalidForm, err)
	}

	event := Event{
		ID:          id,
		Title:       f.Title,
		Description: f.Description,
		StartDate:   start,
		EndDate:     end,
		Color:       f.Color,
		Category:    f.Category,
		IsRecurring: f.IsRecurring,
	}
	if f.IsRecurring {
		event.Recurrence = f.Recurrence.Clone()
	}
	return event, nil
}

// FormFromEvent prefills the editor for an existing event.
func FormFromEvent(e Event) FormInput {
	return FormInput{
		Title:       e.Title,
		Description: e.Description,
		StartDate:   dates.FormatDate(e.StartDate),
		StartTime:   dates.FormatTime(e.StartDate),
		EndDate:     dates.FormatDate(e.EndDate),
		EndTime:     dates.FormatTime(e.EndDate),
		Color:       e.Color,
		Category:    e.Category,
		IsRecurring: e.IsRecurring,
		Recurrence:  e.Recurrence.Clone(),
	}
}
