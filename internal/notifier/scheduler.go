package notifier

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is how often the expiry sweep runs.
const DefaultInterval = 6 * time.Hour

// ErrSweepInProgress is returned by RunNow when a sweep is already running.
var ErrSweepInProgress = errors.New("expiry sweep already in progress")

// SweepFunc is the job a Scheduler runs.
type SweepFunc func(ctx context.Context) (SweepResult, error)

// Scheduler runs a sweep on a fixed interval for the lifetime of the process.
// At most one sweep runs at a time.
type Scheduler struct {
	sweep      SweepFunc
	interval   time.Duration
	runOnStart bool
	logger     *slog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	running sync.Mutex // held for the duration of a sweep
}

// SchedulerOption customizes a Scheduler.
type SchedulerOption func(*Scheduler)

// WithRunOnStart also sweeps immediately when the scheduler starts, instead of
// waiting one full interval.
func WithRunOnStart(v bool) SchedulerOption {
	return func(s *Scheduler) { s.runOnStart = v }
}

// WithSchedulerLogger sets the logger. The default is slog.Default().
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler creates a scheduler for sweep. A non-positive interval falls
// back to DefaultInterval.
func NewScheduler(sweep SweepFunc, interval time.Duration, opts ...SchedulerOption) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		sweep:    sweep,
		interval: interval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the timer goroutine. Calling Start again, even after Stop,
// does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	s.logger.Info("expiry scheduler started", "interval", s.interval, "run_on_start", s.runOnStart)
	go s.loop(ctx)
}

// Stop cancels the timer and waits for a sweep in progress to return. It is
// safe to call more than once, and before Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RunNow sweeps immediately, outside the timer. If a sweep is already running
// it returns ErrSweepInProgress without waiting.
func (s *Scheduler) RunNow(ctx context.Context) (SweepResult, error) {
	if !s.running.TryLock() {
		return SweepResult{}, ErrSweepInProgress
	}
	defer s.running.Unlock()

	return s.sweep(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.runOnStart {
		s.tick(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()

	res, err := s.RunNow(ctx)
	switch {
	case errors.Is(err, ErrSweepInProgress):
		s.logger.Info("expiry sweep skipped, previous run still in progress")
	case err != nil:
		s.logger.Error("expiry sweep failed", "error", err)
	default:
		s.logger.Info("expiry sweep finished",
			"scanned", res.Scanned, "skipped", res.Skipped,
			"notified", res.Notified, "failed", res.Failed,
			"duration", time.Since(start).Round(time.Millisecond))
	}
}
