package app

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/monthcal/internal/config"
	"github.com/klokku/monthcal/internal/database"
	"github.com/klokku/monthcal/internal/event_bus"
	"github.com/klokku/monthcal/pkg/dates"
	"github.com/klokku/monthcal/pkg/event_store"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    dates.Clock
	EventBus *event_bus.EventBus

	Repository event_store.Repository
	Store      *event_store.Store
	Handler    *event_store.Handler

	db    *pgxpool.Pool
	redis *redis.Client
}

// BuildDependencies initializes the configured repository and the store on top of it.
func BuildDependencies(ctx context.Context, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = dates.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()
	subscribeAuditLog(deps.EventBus)

	switch cfg.Storage.Driver {
	case config.StorageFile:
		deps.Repository = event_store.NewFileRepository(cfg.Storage.Path)
	case config.StoragePostgres:
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(cfg.Database); err != nil {
			db.Close()
			return nil, err
		}
		deps.db = db
		deps.Repository = event_store.NewPostgresRepository(db)
	case config.StorageRedis:
		client, err := event_store.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		deps.redis = client
		deps.Repository = event_store.NewRedisRepository(client, cfg.Redis.Key)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	log.Infof("Using %s storage", cfg.Storage.Driver)

	horizon := event_store.Horizon{
		MonthsBefore: cfg.Horizon.MonthsBefore,
		MonthsAfter:  cfg.Horizon.MonthsAfter,
	}
	deps.Store = event_store.NewStore(ctx, deps.Repository, deps.Clock, deps.EventBus, horizon)
	deps.Handler = event_store.NewHandler(deps.Store)

	return deps, nil
}

// Close releases storage connections.
func (d *Dependencies) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Warnf("failed to close redis client: %v", err)
		}
	}
}

func subscribeAuditLog(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.CalendarEventCreatedType, func(e event_bus.EventT[event_bus.CalendarEventCreated]) error {
		log.Infof("event created: %s %q (%s - %s, recurring: %t)", e.Data.ID, e.Data.Title, e.Data.StartDate, e.Data.EndDate, e.Data.IsRecurring)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.CalendarEventUpdatedType, func(e event_bus.EventT[event_bus.CalendarEventUpdated]) error {
		log.Infof("event updated: %s %q", e.Data.ID, e.Data.Title)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.CalendarEventDeletedType, func(e event_bus.EventT[event_bus.CalendarEventDeleted]) error {
		log.Infof("event deleted: %s", e.Data.ID)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.CalendarEventMovedType, func(e event_bus.EventT[event_bus.CalendarEventMoved]) error {
		if !e.Data.Persisted {
			log.Infof("occurrence %s moved to %s until the next refresh", e.Data.ID, e.Data.StartDate)
			return nil
		}
		log.Infof("event moved: %s to %s", e.Data.ID, e.Data.StartDate)
		return nil
	})
}
