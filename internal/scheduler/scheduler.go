package scheduler

import (
	"context"
	"time"

	"ride-agent/internal/application/port/output"
)

// TickFunc performs one complete workflow run. Each tick gets a fresh
// workflow context; no state crosses ticks beyond configuration.
type TickFunc func(ctx context.Context)

// Scheduler drives at most one workflow instance at a time: ticks run
// synchronously, so a run still in flight simply delays the next tick
// rather than racing it against the same account.
type Scheduler struct {
	interval time.Duration
	logger   output.LoggerPort
	tick     TickFunc
}

func New(interval time.Duration, logger output.LoggerPort, tick TickFunc) *Scheduler {
	return &Scheduler{interval: interval, logger: logger, tick: tick}
}

// Run ticks immediately, then on every interval until the context ends.
func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	s.runTick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.runTick(ctx)
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	started := time.Now()
	s.logger.Info("Scheduled run starting", "interval", s.interval.String())
	s.tick(ctx)
	s.logger.Info("Scheduled run finished", "duration", time.Since(started).String())
}
