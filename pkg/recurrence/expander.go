// Package recurrence materializes recurring base events into concrete
// occurrences over a window.
package recurrence

import (
	"fmt"
	"slices"
	"time"

	"github.com/klokku/monthcal/pkg/calendar"
	"github.com/klokku/monthcal/pkg/dates"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxOccurrences bounds expansion of patterns without an occurrence cap.
const DefaultMaxOccurrences = 365

// ConfigurationError reports a recurrence pattern that cannot be expanded.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid recurrence %s: %s", e.Field, e.Reason)
}

// Validate rejects patterns that would make no progress or expand without a
// defined step. A nil pattern is valid.
func Validate(p *calendar.RecurrencePattern) error {
	if p == nil {
		return nil
	}
	switch p.Type {
	case calendar.Daily, calendar.Weekly, calendar.Monthly, calendar.Custom:
	default:
		return &ConfigurationError{Field: "type", Reason: fmt.Sprintf("unknown type %q", p.Type)}
	}
	if p.Interval <= 0 {
		return &ConfigurationError{Field: "interval", Reason: fmt.Sprintf("must be positive, got %d", p.Interval)}
	}
	if p.DayOfMonth < 0 {
		return &ConfigurationError{Field: "dayOfMonth", Reason: fmt.Sprintf("must not be negative, got %d", p.DayOfMonth)}
	}
	if p.EndAfterOccurrences < 0 {
		return &ConfigurationError{Field: "endAfterOccurrences", Reason: fmt.Sprintf("must not be negative, got %d", p.EndAfterOccurrences)}
	}
	return nil
}

// Expand returns the occurrences of base starting inside [windowStart, windowEnd).
//
// Steps are counted from the pattern start, so steps before windowStart are
// skipped but still consume the occurrence cap and the occurrence index used
// in the "{baseID}-{index}" ids. A non-recurring event is returned unchanged.
func Expand(base calendar.Event, windowStart, windowEnd time.Time) ([]calendar.Event, error) {
	if !base.IsRecurring || base.Recurrence == nil {
		return []calendar.Event{base}, nil
	}
	pattern := base.Recurrence
	if err := Validate(pattern); err != nil {
		return nil, fmt.Errorf("expand event %s: %w", base.ID, err)
	}

	limit := pattern.EndAfterOccurrences
	if limit == 0 {
		limit = DefaultMaxOccurrences
	}
	duration := base.Duration()

	occurrences := make([]calendar.Event, 0)
	current := base.StartDate
	for index := 0; index < limit && current.Before(windowEnd); index++ {
		if pattern.EndDate != nil && !current.Before(*pattern.EndDate) {
			break
		}
		if !current.Before(windowStart) {
			occurrence := base
			occurrence.ID = fmt.Sprintf("%s-%d", base.ID, index)
			occurrence.StartDate = current
			occurrence.EndDate = current.Add(duration)
			occurrence.OriginalEventID = base.ID
			occurrences = append(occurrences, occurrence)
		}
		current = nextStep(current, pattern)
	}
	return occurrences, nil
}

// ExpandAll expands every base event over the window. Events with an invalid
// pattern are logged and kept as a single unexpanded entry.
func ExpandAll(events []calendar.Event, windowStart, windowEnd time.Time) []calendar.Event {
	all := make([]calendar.Event, 0, len(events))
	for _, event := range events {
		occurrences, err := Expand(event, windowStart, windowEnd)
		if err != nil {
			log.Warnf("keeping event unexpanded: %v", err)
			all = append(all, event)
			continue
		}
		all = append(all, occurrences...)
	}
	log.Debugf("expanded %d base events into %d occurrences", len(events), len(all))
	return all
}

func nextStep(current time.Time, p *calendar.RecurrencePattern) time.Time {
	switch p.Type {
	case calendar.Weekly:
		if len(p.DaysOfWeek) > 0 {
			probe := current
			for range 7 {
				probe = probe.AddDate(0, 0, 1)
				if slices.Contains(p.DaysOfWeek, int(probe.Weekday())) {
					return probe
				}
			}
		}
		return current.AddDate(0, 0, 7*p.Interval)
	case calendar.Monthly:
		shifted := dates.AddMonths(current, p.Interval)
		if p.DayOfMonth > 0 {
			// Days past the end of the month roll into the next one.
			return time.Date(shifted.Year(), shifted.Month(), min(p.DayOfMonth, 31),
				current.Hour(), current.Minute(), current.Second(), current.Nanosecond(), current.Location())
		}
		return shifted
	default:
		return current.AddDate(0, 0, p.Interval)
	}
}
