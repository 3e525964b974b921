// Package stats rolls raw click rows up into per-day counts.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"linkshrink-backend/internal/repository"
)

const runTimeout = time.Minute

// Aggregator periodically aggregates the previous day's clicks into the
// daily_stats table.
type Aggregator struct {
	storage repository.Storage
	log     *zap.Logger
	cron    *cron.Cron
	spec    string
}

func NewAggregator(storage repository.Storage, log *zap.Logger, spec string) *Aggregator {
	return &Aggregator{
		storage: storage,
		log:     log,
		cron:    cron.New(),
		spec:    spec,
	}
}

// Start schedules the nightly aggregation and runs one catch-up pass for
// yesterday, covering downtime across the schedule boundary.
func (a *Aggregator) Start() error {
	if _, err := a.cron.AddFunc(a.spec, a.runYesterday); err != nil {
		return fmt.Errorf("failed to schedule stats aggregation: %w", err)
	}

	a.cron.Start()
	a.log.Info("stats aggregator started", zap.String("schedule", a.spec))

	go a.runYesterday()
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (a *Aggregator) Stop() {
	<-a.cron.Stop().Done()
	a.log.Info("stats aggregator stopped")
}

func (a *Aggregator) runYesterday() {
	a.Run(time.Now().UTC().AddDate(0, 0, -1))
}

// Run aggregates clicks for the given day.
func (a *Aggregator) Run(day time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	rows, err := a.storage.AggregateDailyStats(ctx, day)
	if err != nil {
		a.log.Error("daily stats aggregation failed",
			zap.Time("day", day),
			zap.Error(err),
		)
		return
	}

	a.log.Info("daily stats aggregated",
		zap.Time("day", day),
		zap.Int64("rows", rows),
	)
}
