// Package scheduler runs the engine's periodic jobs, currently the daily
// challenge rollover.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// rolloverAt is shortly past UTC midnight so all challenges of the previous
// day have expired before the sweep runs.
const rolloverAt = "00:05"

// RolloverJob is the work the daily sweep performs.
type RolloverJob interface {
	RecordExpiredFailures(ctx context.Context) error
}

// Scheduler manages scheduled tasks for the application.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       RolloverJob
	logger    *slog.Logger
}

// New creates a new scheduler instance running on UTC.
func New(job RolloverJob, logger *slog.Logger) *Scheduler {
	if job == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("job cannot be nil for Scheduler")
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		job:       job,
		logger:    logger.With(slog.String("component", "scheduler")),
	}
}

// Start begins running all scheduled tasks in the background.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(rolloverAt).Do(s.runRollover); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", slog.String("rollover_at", rolloverAt))
	return nil
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runRollover() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.job.RecordExpiredFailures(ctx); err != nil {
		s.logger.Error("daily challenge rollover failed",
			slog.String("error", err.Error()))
	}
}
