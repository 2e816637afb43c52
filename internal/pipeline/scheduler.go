package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

// Runner runs one generation cycle.
type Runner interface {
	RunOnce(ctx context.Context) (domain.Generation, error)
}

// Scheduler triggers a Runner immediately and then on a fixed interval.
// Failed cycles are retried on the next tick, never in between.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewScheduler creates a Scheduler driven by the package clock.
func NewScheduler(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		clock:    domain.Clock(),
		logger:   logger,
	}
}

// Run triggers cycles until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.trigger(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			s.trigger(ctx)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context) {
	_, err := s.runner.RunOnce(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrRunInProgress):
		s.logger.Info("generation skipped, previous cycle still running")
	case ctx.Err() != nil:
	default:
		s.logger.Error("scheduled generation failed", "error", err)
	}
}
