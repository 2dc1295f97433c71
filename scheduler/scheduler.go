package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Reconciler rebuilds standings that may have drifted after a failed recompute.
type Reconciler interface {
	Reconcile(ctx context.Context) error
}

type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	logger     *slog.Logger
	timeout    time.Duration
}

func New(reconciler Reconciler, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:       c,
		reconciler: reconciler,
		logger:     logger,
		timeout:    time.Minute,
	}
}

// Start registers the reconciliation job on schedule (standard cron syntax or
// descriptors such as "@every 5m") and starts the scheduler.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.RunNow); err != nil {
		return fmt.Errorf("schedule standings reconciliation %q: %w", schedule, err)
	}
	s.cron.Start()
	s.logger.Info("standings reconciliation scheduled", slog.String("schedule", schedule))
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

// RunNow runs one reconciliation pass synchronously.
func (s *Scheduler) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.reconciler.Reconcile(ctx); err != nil {
		s.logger.Error("standings reconciliation failed", slog.Any("error", err))
		return
	}
	s.logger.Debug("standings reconciliation completed", slog.Duration("duration", time.Since(start)))
}
