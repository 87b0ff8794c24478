// Package cleanup removes expired movie records on a schedule and on demand.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vmunix/marquee/internal/catalog"
)

// Purger is the part of the catalog the scheduler drives.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
	Counts(ctx context.Context) (catalog.Counts, error)
}

// Config for the cleanup scheduler.
type Config struct {
	Hour, Minute int           // daily run, local time
	Interval     time.Duration // extra periodic run; 0 disables
}

// Report describes one cleanup run.
type Report struct {
	Before    catalog.Counts
	Deleted   int64
	After     catalog.Counts
	StartedAt time.Time
	Duration  time.Duration
}

// Scheduler runs expiry cleanup daily at a fixed time of day, optionally on
// an interval, and on demand. Runs never overlap.
type Scheduler struct {
	purger Purger
	config Config
	now    func() time.Time
	logger *slog.Logger

	mu   sync.Mutex
	last *Report
}

// New creates a scheduler.
func New(purger Purger, cfg Config, logger *slog.Logger) (*Scheduler, error) {
	if cfg.Hour < 0 || cfg.Hour > 23 || cfg.Minute < 0 || cfg.Minute > 59 {
		return nil, fmt.Errorf("invalid daily time %02d:%02d", cfg.Hour, cfg.Minute)
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("invalid interval %s", cfg.Interval)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		purger: purger,
		config: cfg,
		now:    time.Now,
		logger: logger.With("component", "cleanup"),
	}, nil
}

// Run fires cleanup until ctx is canceled. A failed or panicking run is
// logged and the schedule continues.
func (s *Scheduler) Run(ctx context.Context) error {
	var intervalC <-chan time.Time
	if s.config.Interval > 0 {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		intervalC = ticker.C
	}

	next := nextDaily(s.now(), s.config.Hour, s.config.Minute)
	daily := time.NewTimer(time.Until(next))
	defer daily.Stop()

	s.logger.Info("cleanup scheduled",
		"next_run", next.Format(time.RFC3339),
		"interval", s.config.Interval,
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-daily.C:
			s.runScheduled(ctx, "daily")
			next = nextDaily(s.now(), s.config.Hour, s.config.Minute)
			daily.Reset(time.Until(next))

		case <-intervalC:
			s.runScheduled(ctx, "interval")
		}
	}
}

func (s *Scheduler) runScheduled(ctx context.Context, trigger string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("cleanup panicked", "trigger", trigger, "panic", r)
		}
	}()
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("cleanup failed", "trigger", trigger, "error", err)
	}
}

// RunOnce purges expired records immediately and reports what changed.
func (s *Scheduler) RunOnce(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.now()
	before, err := s.purger.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count before cleanup: %w", err)
	}
	deleted, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		return nil, fmt.Errorf("purge expired: %w", err)
	}
	after, err := s.purger.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count after cleanup: %w", err)
	}

	r := &Report{
		Before:    before,
		Deleted:   deleted,
		After:     after,
		StartedAt: started,
		Duration:  s.now().Sub(started),
	}
	s.last = r

	s.logger.Info("cleanup complete",
		"before", before.Total,
		"deleted", deleted,
		"after", after.Total,
		"duration", r.Duration,
	)
	return r, nil
}

// LastReport returns the most recent successful run, or nil.
func (s *Scheduler) LastReport() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// nextDaily returns the first hour:minute strictly after now, in now's location.
func nextDaily(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
