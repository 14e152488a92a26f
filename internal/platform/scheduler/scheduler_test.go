package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newStartedScheduler(t *testing.T) *Scheduler {
	t.Helper()

	s, err := New(Config{TaskTimeout: time.Second}, nil)
	require.NoError(t, err)
	s.Start()
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func TestScheduler_RunsDelayedTask(t *testing.T) {
	s := newStartedScheduler(t)

	var runs atomic.Int32
	require.NoError(t, s.Schedule("round-timeout:r1", 100*time.Millisecond, func(context.Context) {
		runs.Add(1)
	}))
	require.True(t, s.Pending("round-timeout:r1"))

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.False(t, s.Pending("round-timeout:r1"))
}

func TestScheduler_CancelPreventsRun(t *testing.T) {
	s := newStartedScheduler(t)

	var runs atomic.Int32
	require.NoError(t, s.Schedule("round-timeout:r2", 150*time.Millisecond, func(context.Context) {
		runs.Add(1)
	}))
	s.Cancel("round-timeout:r2")

	time.Sleep(400 * time.Millisecond)
	require.Equal(t, int32(0), runs.Load())
}

func TestScheduler_RescheduleReplacesPendingTask(t *testing.T) {
	s := newStartedScheduler(t)

	var first, second atomic.Int32
	require.NoError(t, s.Schedule("round-timeout:r3", time.Second, func(context.Context) {
		first.Add(1)
	}))
	require.NoError(t, s.Schedule("round-timeout:r3", 100*time.Millisecond, func(context.Context) {
		second.Add(1)
	}))

	require.Eventually(t, func() bool { return second.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(1200 * time.Millisecond)
	require.Equal(t, int32(0), first.Load())
}

func TestScheduler_ZeroDelayRunsImmediately(t *testing.T) {
	s := newStartedScheduler(t)

	done := make(chan struct{})
	require.NoError(t, s.Schedule("matchmaking-drain", 0, func(context.Context) {
		close(done)
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected immediate task to run")
	}
}

func TestScheduler_ScheduleValidatesInput(t *testing.T) {
	s := newStartedScheduler(t)

	require.Error(t, s.Schedule("", time.Second, func(context.Context) {}))
	require.Error(t, s.Schedule("k", time.Second, nil))
	require.Error(t, s.Every("drain", 0, func(context.Context) {}))
}
