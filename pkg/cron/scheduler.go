// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the archive sweep daily at 3:00 AM.
const DefaultSchedule = "0 3 * * *"

// Sweeper removes archived statements older than a retention window.
type Sweeper interface {
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	sweeper   Sweeper
	schedule  string
	retention time.Duration
	logger    *slog.Logger
}

// NewScheduler creates a new job scheduler. An empty schedule means
// DefaultSchedule.
func NewScheduler(sweeper Sweeper, schedule string, retention time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	// Standard 5-field format, seconds disabled.
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:      c,
		sweeper:   sweeper,
		schedule:  schedule,
		retention: retention,
		logger:    logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweepArchive); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("schedule", s.schedule),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the archive sweep.
func (s *Scheduler) RunNow() {
	go s.sweepArchive()
}

func (s *Scheduler) sweepArchive() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	s.logger.Info("starting archive sweep", slog.Duration("retention", s.retention))
	removed, err := s.sweeper.Sweep(ctx, s.retention)
	if err != nil {
		s.logger.Error("archive sweep failed",
			slog.Int("removed", removed),
			slog.Any("error", err),
		)
		return
	}
	s.logger.Info("archive sweep completed", slog.Int("removed", removed))
}
