package poller

import (
	"context"
	"time"

	"github.com/specwatch/specwatch/internal/logger"
)

// Watch runs the scheduler loop: one PollAll pass plus one ScanDue pass
// per tick, until the context is cancelled. A failed pass is logged and
// the loop keeps going.
type Watch struct {
	poller   *Poller
	scans    *ScanService
	interval time.Duration
	log      logger.Logger
}

// NewWatch creates the scheduler loop. The scan service is optional.
func NewWatch(poller *Poller, scans *ScanService, interval time.Duration, log logger.Logger) *Watch {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Watch{
		poller:   poller,
		scans:    scans,
		interval: interval,
		log:      log,
	}
}

// Run blocks until ctx is cancelled. The first pass runs immediately.
func (w *Watch) Run(ctx context.Context) error {
	w.log.WithField("interval", w.interval.String()).Info("watch loop started")

	w.pass(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.pass(ctx)
		case <-ctx.Done():
			w.log.Info("watch loop stopped")
			return ctx.Err()
		}
	}
}

func (w *Watch) pass(ctx context.Context) {
	if _, err := w.poller.PollAll(ctx); err != nil && ctx.Err() == nil {
		w.log.Error("poll pass failed", err)
	}
	if w.scans != nil {
		if err := w.scans.ScanDue(ctx); err != nil && ctx.Err() == nil {
			w.log.Error("scan pass failed", err)
		}
	}
}
