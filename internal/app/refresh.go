package app

import (
	"fmt"

	"github.com/klokku/monthcal/internal/config"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type refresher interface {
	Refresh()
}

// Refresher re-expands the horizon on a cron schedule so occurrences follow
// the current date while the process runs.
type Refresher struct {
	cron *cron.Cron
}

// StartRefresh schedules store.Refresh. An empty schedule returns a stopped
// Refresher.
func StartRefresh(cfg config.Refresh, store refresher) (*Refresher, error) {
	if cfg.Schedule == "" {
		log.Info("Horizon refresh disabled")
		return &Refresher{}, nil
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.Schedule, func() {
		log.Debug("Refreshing occurrence horizon")
		store.Refresh()
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", cfg.Schedule, err)
	}
	c.Start()
	log.Infof("Horizon refresh scheduled (%s)", cfg.Schedule)
	return &Refresher{cron: c}, nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}
