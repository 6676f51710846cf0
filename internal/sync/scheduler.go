package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Runner is the syncer surface the scheduler drives.
type Runner interface {
	SyncAll(ctx context.Context) (RunResult, error)
	Cleanup(ctx context.Context) (int64, error)
}

// Schedule fixes when the recurring jobs fire. All times are UTC.
type Schedule struct {
	SyncHour          int
	CleanupWeekday    time.Weekday
	CleanupHour       int
	HeartbeatInterval time.Duration
}

// Scheduler drives the recurring jobs: the daily full sync, the weekly
// retention cleanup, and an hourly heartbeat log line.
type Scheduler struct {
	runner   Runner
	schedule Schedule
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewScheduler creates a scheduler around a runner.
func NewScheduler(runner Runner, schedule Schedule, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		schedule: schedule,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
	}
}

// SetClock swaps the time source so tests can step through days in an
// instant.
func (s *Scheduler) SetClock(c clockwork.Clock) {
	s.clock = c
}

// Run blocks until ctx is cancelled, firing the scheduled jobs at their
// appointed times.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		s.dailySyncLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.weeklyCleanupLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.heartbeatLoop(ctx)
	}()
	wg.Wait()
}

func (s *Scheduler) dailySyncLoop(ctx context.Context) {
	for {
		now := s.clock.Now().UTC()
		next := nextDaily(now, s.schedule.SyncHour)
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(next.Sub(now)):
		}

		result, err := s.runner.SyncAll(ctx)
		if err != nil {
			s.logger.Error("scheduled sync failed", "error", err)
			continue
		}
		s.logger.Info("scheduled sync finished", "synced", result.Synced, "skipped", result.Skipped, "errors", result.Errors)
	}
}

func (s *Scheduler) weeklyCleanupLoop(ctx context.Context) {
	for {
		now := s.clock.Now().UTC()
		next := nextWeekly(now, s.schedule.CleanupWeekday, s.schedule.CleanupHour)
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(next.Sub(now)):
		}

		if _, err := s.runner.Cleanup(ctx); err != nil {
			s.logger.Error("scheduled cleanup failed", "error", err)
		}
	}
}

func (s *Scheduler) heartbeatLoop(ctx context.Context) {
	ticker := s.clock.NewTicker(s.schedule.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.logger.Info("scheduler heartbeat")
		}
	}
}

// nextDaily returns the next occurrence of hour:00 UTC strictly after now.
func nextDaily(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// nextWeekly returns the next occurrence of the weekday at hour:00 UTC
// strictly after now.
func nextWeekly(now time.Time, weekday time.Weekday, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}
