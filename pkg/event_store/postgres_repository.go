package event_store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/monthcal/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

// PostgresRepository stores one row per base event, keeping list order in
// the position column.
type PostgresRepository struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *PostgresRepository) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *PostgresRepository) WithTransaction(ctx context.Context, fn func(repo *PostgresRepository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &PostgresRepository{db: r.db, tx: tx}
	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Load(ctx context.Context) ([]calendar.Event, error) {
	query := `SELECT payload FROM calendar_event ORDER BY position`

	rows, err := r.getQueryer().Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]calendar.Event, 0, 16)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		var event calendar.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read calendar events: %w", err)
	}
	return events, nil
}

func (r *PostgresRepository) Save(ctx context.Context, events []calendar.Event) error {
	return r.WithTransaction(ctx, func(repo *PostgresRepository) error {
		if err := repo.deleteAll(ctx); err != nil {
			return err
		}
		query := `INSERT INTO calendar_event (id, position, payload) VALUES ($1, $2, $3)`
		for position, event := range events {
			payload, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("could not encode event %s: %w", event.ID, err)
			}
			if _, err := repo.getQueryer().Exec(ctx, query, event.ID, position, payload); err != nil {
				err := fmt.Errorf("could not insert event %s: %w", event.ID, err)
				log.Error(err)
				return err
			}
		}
		return nil
	})
}

func (r *PostgresRepository) Clear(ctx context.Context) error {
	return r.deleteAll(ctx)
}

func (r *PostgresRepository) deleteAll(ctx context.Context) error {
	if _, err := r.getQueryer().Exec(ctx, `DELETE FROM calendar_event`); err != nil {
		err := fmt.Errorf("could not delete calendar events: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
