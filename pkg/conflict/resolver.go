// Package conflict decides whether events overlap and whether an event may be
// moved to a new start without colliding with others.
package conflict

import (
	"time"

	"github.com/klokku/monthcal/pkg/calendar"
	"github.com/klokku/monthcal/pkg/dates"
)

type Decision struct {
	Allowed   bool             `json:"allowed"`
	Conflicts []calendar.Event `json:"conflicts"`
}

// ConflictsFor returns the events of pool overlapping candidate. An entry with
// the candidate's own id is never a conflict.
func ConflictsFor(candidate calendar.Event, pool []calendar.Event) []calendar.Event {
	conflicts := make([]calendar.Event, 0)
	for _, other := range pool {
		if other.ID == candidate.ID {
			continue
		}
		if dates.RangesOverlap(candidate.StartDate, candidate.EndDate, other.StartDate, other.EndDate) {
			conflicts = append(conflicts, other)
		}
	}
	return conflicts
}

// Relocate returns a copy of event starting at newStart with the same duration.
func Relocate(event calendar.Event, newStart time.Time) calendar.Event {
	duration := event.Duration()
	event.StartDate = newStart
	event.EndDate = newStart.Add(duration)
	return event
}

// CanRelocate checks the relocated copy of event against pool. It never
// modifies its arguments.
func CanRelocate(event calendar.Event, newStart time.Time, pool []calendar.Event) Decision {
	conflicts := ConflictsFor(Relocate(event, newStart), pool)
	return Decision{
		Allowed:   len(conflicts) == 0,
		Conflicts: conflicts,
	}
}
