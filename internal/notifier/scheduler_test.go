package notifier

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingSweep(calls *atomic.Int32) SweepFunc {
	return func(context.Context) (SweepResult, error) {
		calls.Add(1)
		return SweepResult{}, nil
	}
}

func TestSchedulerRunsOnInterval(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(countingSweep(&calls), 20*time.Millisecond, WithSchedulerLogger(quietLogger()))

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestSchedulerWaitsFullIntervalByDefault(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(countingSweep(&calls), time.Hour, WithSchedulerLogger(quietLogger()))

	s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(0), calls.Load())
}

func TestSchedulerRunOnStart(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(countingSweep(&calls), time.Hour, WithRunOnStart(true), WithSchedulerLogger(quietLogger()))

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSchedulerStartTwiceIsNoop(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(countingSweep(&calls), time.Hour, WithRunOnStart(true), WithSchedulerLogger(quietLogger()))

	s.Start(context.Background())
	s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	// A second timer would have swept on start as well.
	assert.Equal(t, int32(1), calls.Load())
}

func TestSchedulerStopWaitsForSweep(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool

	sweep := func(ctx context.Context) (SweepResult, error) {
		close(started)
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		return SweepResult{}, ctx.Err()
	}
	s := NewScheduler(sweep, time.Hour, WithRunOnStart(true), WithSchedulerLogger(quietLogger()))

	s.Start(context.Background())
	<-started
	s.Stop()

	assert.True(t, finished.Load(), "Stop returned before the sweep finished")
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := NewScheduler(countingSweep(new(atomic.Int32)), time.Hour)
	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
}

func TestRunNowRejectsConcurrentSweep(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	sweep := func(context.Context) (SweepResult, error) {
		close(started)
		<-release
		return SweepResult{Scanned: 1}, nil
	}
	s := NewScheduler(sweep, time.Hour, WithSchedulerLogger(quietLogger()))

	errc := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background())
		errc <- err
	}()
	<-started

	_, err := s.RunNow(context.Background())
	assert.True(t, errors.Is(err, ErrSweepInProgress))

	close(release)
	require.NoError(t, <-errc)
}

func TestRunNowReturnsSweepResult(t *testing.T) {
	s := NewScheduler(func(context.Context) (SweepResult, error) {
		return SweepResult{Scanned: 3, Notified: 1}, nil
	}, 0)

	res, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Scanned: 3, Notified: 1}, res)
	assert.Equal(t, DefaultInterval, s.interval)
}
