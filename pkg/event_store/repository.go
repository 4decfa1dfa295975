package event_store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klokku/monthcal/pkg/calendar"
)

// ErrCorruptData is returned by Load when stored data cannot be decoded.
var ErrCorruptData = errors.New("stored events are corrupt")

// Repository persists the list of base events as a whole. Occurrences are
// never stored.
type Repository interface {
	// Load returns the stored base events, or an empty list when nothing was saved yet.
	Load(ctx context.Context) ([]calendar.Event, error)
	// Save replaces the stored list with events.
	Save(ctx context.Context, events []calendar.Event) error
	Clear(ctx context.Context) error
}

func encodeEvents(events []calendar.Event) ([]byte, error) {
	if events == nil {
		events = []calendar.Event{}
	}
	payload, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("could not encode events: %w", err)
	}
	return payload, nil
}

func decodeEvents(payload []byte) ([]calendar.Event, error) {
	if len(payload) == 0 {
		return []calendar.Event{}, nil
	}
	var events []calendar.Event
	if err := json.Unmarshal(payload, &events); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if events == nil {
		events = []calendar.Event{}
	}
	return events, nil
}
