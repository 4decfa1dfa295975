package event_bus

import "time"

const (
	CalendarEventCreatedType EventType = "calendar.event.created"
	CalendarEventUpdatedType EventType = "calendar.event.updated"
	CalendarEventDeletedType EventType = "calendar.event.deleted"
	CalendarEventMovedType   EventType = "calendar.event.moved"
)

type CalendarEventCreated struct {
	ID          string
	Title       string
	StartDate   time.Time
	EndDate     time.Time
	IsRecurring bool
}

type CalendarEventUpdated struct {
	ID          string
	Title       string
	StartDate   time.Time
	EndDate     time.Time
	IsRecurring bool
}

type CalendarEventDeleted struct {
	ID string
}

// CalendarEventMoved is published after an accepted move. Persisted is false
// for recurring instances, whose move lives only in the occurrence cache.
type CalendarEventMoved struct {
	ID        string
	StartDate time.Time
	EndDate   time.Time
	Persisted bool
}
