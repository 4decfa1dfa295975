package event_store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klokku/monthcal/pkg/calendar"
)

// FileRepository keeps the event list as a JSON document on disk.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Load(ctx context.Context) ([]calendar.Event, error) {
	payload, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []calendar.Event{}, nil
		}
		return nil, fmt.Errorf("could not read %s: %w", r.path, err)
	}
	return decodeEvents(payload)
}

// Save replaces the file through a rename of a temporary sibling.
func (r *FileRepository) Save(ctx context.Context, events []calendar.Event) error {
	payload, err := encodeEvents(events)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("could not create directory for %s: %w", r.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write events: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("could not replace %s: %w", r.path, err)
	}
	return nil
}

func (r *FileRepository) Clear(ctx context.Context) error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not remove %s: %w", r.path, err)
	}
	return nil
}
