package event_store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/monthcal/internal/event_bus"
	"github.com/klokku/monthcal/pkg/calendar"
	"github.com/klokku/monthcal/pkg/conflict"
	"github.com/klokku/monthcal/pkg/dates"
	"github.com/klokku/monthcal/pkg/recurrence"
	log "github.com/sirupsen/logrus"
)

// Horizon is the window, in whole months around now, over which recurring
// events are materialized.
type Horizon struct {
	MonthsBefore int
	MonthsAfter  int
}

var DefaultHorizon = Horizon{MonthsBefore: 6, MonthsAfter: 12}

// Window returns the start of the first month and the end of the last month
// of the horizon around now.
func (h Horizon) Window(now time.Time) (time.Time, time.Time) {
	from := dates.StartOfMonth(dates.AddMonths(now, -h.MonthsBefore))
	to := dates.EndOfMonth(dates.AddMonths(now, h.MonthsAfter))
	return from, to
}

// Store owns the base events and the views derived from them. Every mutator
// persists the base list and ends with recomputeAll.
//
// The occurrence cache may diverge from what the base events would expand to:
// moving a recurring instance edits only its cached entry, and that edit is
// discarded by the next recomputation.
type Store struct {
	mu      sync.RWMutex
	repo    Repository
	clock   dates.Clock
	bus     *event_bus.EventBus
	horizon Horizon

	baseEvents  []calendar.Event
	occurrences []calendar.Event
	visible     []calendar.Event

	query      string
	categories []calendar.Category
}

// NewStore loads the persisted base events. A failed load is logged and the
// store starts empty.
func NewStore(ctx context.Context, repo Repository, clock dates.Clock, bus *event_bus.EventBus, horizon Horizon) *Store {
	s := &Store{
		repo:    repo,
		clock:   clock,
		bus:     bus,
		horizon: horizon,
	}

	events, err := repo.Load(ctx)
	if err != nil {
		log.Errorf("failed to load calendar events, starting empty: %v", err)
		events = []calendar.Event{}
	}
	s.baseEvents = events
	s.recomputeAll()
	log.Infof("calendar store ready with %d base events", len(s.baseEvents))
	return s
}

// Add creates a base event from form with a fresh id.
func (s *Store) Add(ctx context.Context, form calendar.FormInput) (calendar.Event, error) {
	event, err := s.eventFromForm(uuid.NewString(), form)
	if err != nil {
		return calendar.Event{}, err
	}

	s.mu.Lock()
	s.baseEvents = append(s.baseEvents, event)
	s.persist(ctx)
	s.recomputeAll()
	s.mu.Unlock()

	s.publish(ctx, event_bus.CalendarEventCreatedType, event_bus.CalendarEventCreated{
		ID:          event.ID,
		Title:       event.Title,
		StartDate:   event.StartDate,
		EndDate:     event.EndDate,
		IsRecurring: event.IsRecurring,
	})
	return event.Clone(), nil
}

// Update replaces the fields of the base event addressed by id, which may
// also be the id of one of its occurrences. The base event keeps its id.
// It returns false when nothing matched.
func (s *Store) Update(ctx context.Context, id string, form calendar.FormInput) (calendar.Event, bool, error) {
	s.mu.Lock()
	target := s.resolveBaseID(id)
	index := -1
	for i, e := range s.baseEvents {
		if e.ID == target || e.OriginalEventID == target {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		log.Debugf("update: no event with id %s", id)
		return calendar.Event{}, false, nil
	}

	updated, err := s.eventFromForm(s.baseEvents[index].ID, form)
	if err != nil {
		s.mu.Unlock()
		return calendar.Event{}, true, err
	}
	s.baseEvents[index] = updated
	s.persist(ctx)
	s.recomputeAll()
	s.mu.Unlock()

	s.publish(ctx, event_bus.CalendarEventUpdatedType, event_bus.CalendarEventUpdated{
		ID:          updated.ID,
		Title:       updated.Title,
		StartDate:   updated.StartDate,
		EndDate:     updated.EndDate,
		IsRecurring: updated.IsRecurring,
	})
	return updated.Clone(), true, nil
}

// Delete removes the base event addressed by id. Passing an occurrence id
// removes its whole series.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	target := s.resolveBaseID(id)
	kept := make([]calendar.Event, 0, len(s.baseEvents))
	for _, e := range s.baseEvents {
		if e.ID == target || e.OriginalEventID == target {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == len(s.baseEvents) {
		s.mu.Unlock()
		log.Debugf("delete: no event with id %s", id)
		return false
	}
	s.baseEvents = kept
	s.persist(ctx)
	s.recomputeAll()
	s.mu.Unlock()

	s.publish(ctx, event_bus.CalendarEventDeletedType, event_bus.CalendarEventDeleted{ID: target})
	return true
}

// Move relocates the occurrence id to newStart, keeping its duration, when it
// does not collide with any visible event. A plain event is moved in the base
// list and persisted; a recurring instance is moved in the occurrence cache
// only. The second result is false when id is not a known occurrence.
func (s *Store) Move(ctx context.Context, id string, newStart time.Time) (conflict.Decision, bool) {
	s.mu.Lock()
	index := -1
	for i, o := range s.occurrences {
		if o.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return conflict.Decision{}, false
	}

	occurrence := s.occurrences[index]
	decision := conflict.CanRelocate(occurrence, newStart, s.visible)
	if !decision.Allowed {
		s.mu.Unlock()
		log.Debugf("move of %s to %s rejected, %d conflicts", id, newStart, len(decision.Conflicts))
		return decision, true
	}

	moved := conflict.Relocate(occurrence, newStart)
	persisted := !occurrence.IsOccurrence()
	if persisted {
		for i := range s.baseEvents {
			if s.baseEvents[i].ID == occurrence.ID {
				s.baseEvents[i].StartDate = moved.StartDate
				s.baseEvents[i].EndDate = moved.EndDate
			}
		}
		s.persist(ctx)
		s.recomputeAll()
	} else {
		s.occurrences[index] = moved
		s.applyFilters()
	}
	s.mu.Unlock()

	s.publish(ctx, event_bus.CalendarEventMovedType, event_bus.CalendarEventMoved{
		ID:        moved.ID,
		StartDate: moved.StartDate,
		EndDate:   moved.EndDate,
		Persisted: persisted,
	})
	return decision, true
}

// Lookup finds id among the occurrences first, then among the base events.
func (s *Store) Lookup(id string) (calendar.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.occurrences {
		if o.ID == id {
			return o.Clone(), true
		}
	}
	for _, e := range s.baseEvents {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return calendar.Event{}, false
}

func (s *Store) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.applyFilters()
}

func (s *Store) SetCategories(categories []calendar.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]calendar.Category(nil), categories...)
	s.applyFilters()
}

// Filters returns the active search query and category set.
func (s *Store) Filters() (string, []calendar.Category) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query, append([]calendar.Category(nil), s.categories...)
}

func (s *Store) Visible() []calendar.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return calendar.CloneAll(s.visible)
}

// VisibleBetween returns the visible events overlapping [from, to].
func (s *Store) VisibleBetween(from, to time.Time) []calendar.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return calendar.CloneAll(calendar.InWindow(s.visible, from, to))
}

func (s *Store) Occurrences() []calendar.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return calendar.CloneAll(s.occurrences)
}

func (s *Store) BaseEvents() []calendar.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return calendar.CloneAll(s.baseEvents)
}

// EventsForDate returns the visible events touching day.
func (s *Store) EventsForDate(day time.Time) []calendar.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return calendar.CloneAll(calendar.EventsForDate(s.visible, day))
}

// Refresh re-expands the base events over the horizon around the current time.
func (s *Store) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputeAll()
}

// Clear removes every base event, in memory and in the repository.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear calendar events: %w", err)
	}
	s.baseEvents = []calendar.Event{}
	s.recomputeAll()
	return nil
}

// Location is the calendar location used to read form dates and grid days.
func (s *Store) Location() *time.Location {
	return s.clock.Now().Location()
}

func (s *Store) eventFromForm(id string, form calendar.FormInput) (calendar.Event, error) {
	event, err := form.ToEvent(id, s.Location())
	if err != nil {
		return calendar.Event{}, err
	}
	if event.IsRecurring {
		if err := recurrence.Validate(event.Recurrence); err != nil {
			return calendar.Event{}, err
		}
	}
	return event, nil
}

// resolveBaseID maps an occurrence id to the id of its base event. Any other
// id is returned unchanged. Callers hold s.mu.
func (s *Store) resolveBaseID(id string) string {
	for _, o := range s.occurrences {
		if o.ID == id && o.IsOccurrence() {
			return o.OriginalEventID
		}
	}
	return id
}

// persist saves the base events. Failures are logged and memory is kept.
// Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	if err := s.repo.Save(ctx, calendar.CloneAll(s.baseEvents)); err != nil {
		log.Errorf("failed to persist calendar events: %v", err)
	}
}

// recomputeAll rebuilds the occurrence cache and the visible list. Callers
// hold s.mu.
func (s *Store) recomputeAll() {
	from, to := s.horizon.Window(s.clock.Now())
	s.occurrences = recurrence.ExpandAll(s.baseEvents, from, to)
	s.applyFilters()
}

func (s *Store) applyFilters() {
	filtered := calendar.Search(s.occurrences, s.query)
	s.visible = calendar.FilterByCategories(filtered, s.categories)
}

func (s *Store) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Warnf("failed to publish %s: %v", eventType, err)
	}
}
