package snapshot

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Scheduler drives periodic regeneration independent of read traffic.
type Scheduler struct {
	svc      *Service
	interval time.Duration
	log      *zap.Logger
}

func NewScheduler(svc *Service, interval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{svc: svc, interval: interval, log: log}
}

// Run refreshes once immediately, then on every tick until the context
// is cancelled. In-flight network calls are abandoned on shutdown via
// the shared context.
func (s *Scheduler) Run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	snaps, err := s.svc.RefreshAll(ctx)
	switch {
	case errors.Is(err, ErrRefreshInFlight):
		s.log.Info("skipping refresh; previous cycle still running")
	case err != nil:
		s.log.Error("refresh cycle failed; serving prior snapshots", zap.Error(err))
	default:
		s.log.Info("refresh cycle complete",
			zap.Int("categories", len(snaps)),
			zap.Duration("took", time.Since(start)))
	}
}
