package event_store

import (
	"context"
	"sync"

	"github.com/klokku/monthcal/pkg/calendar"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	events  []calendar.Event
	saves   int
	loadErr error
	saveErr error
}

func NewRepositoryStub(events ...calendar.Event) *RepositoryStub {
	return &RepositoryStub{events: calendar.CloneAll(events)}
}

func (r *RepositoryStub) Load(ctx context.Context) ([]calendar.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return calendar.CloneAll(r.events), nil
}

func (r *RepositoryStub) Save(ctx context.Context, events []calendar.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.events = calendar.CloneAll(events)
	return nil
}

func (r *RepositoryStub) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = nil
	return nil
}

// Helper method to make Load fail (for testing corrupt storage)
func (r *RepositoryStub) SetLoadError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadErr = err
}

// Helper method to make Save fail (for testing write failures)
func (r *RepositoryStub) SetSaveError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

// Helper method to get the persisted events (useful for test assertions)
func (r *RepositoryStub) Stored() []calendar.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return calendar.CloneAll(r.events)
}

// Helper method to count Save calls, failed ones included
func (r *RepositoryStub) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
