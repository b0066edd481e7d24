package common

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestStopwatch(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}
	stopwatch := NewStopwatch(time.Minute)
	stopwatch.now = clock.Now

	// Not running yet
	stopped, _ := stopwatch.Stopped()
	assert.True(t, stopped)

	stopwatch.Start()
	stopped, elapsed := stopwatch.Stopped()
	assert.False(t, stopped)
	assert.Equal(t, -time.Minute, elapsed)

	clock.now = clock.now.Add(90 * time.Second)
	stopped, elapsed = stopwatch.Stopped()
	assert.True(t, stopped)
	assert.Equal(t, 30*time.Second, elapsed)

	stopwatch.Stop()
	stopped, _ = stopwatch.Stopped()
	assert.True(t, stopped)
}

func TestTimedExecutorExecute(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}
	calls := 0
	executor := NewTimedExecutor(time.Minute, func(context.Context) { calls++ })
	executor.stopwatch.now = clock.Now

	// First call always runs
	assert.True(t, executor.Execute(context.Background()))
	assert.False(t, executor.Execute(context.Background()))

	clock.now = clock.now.Add(time.Minute)
	assert.True(t, executor.Execute(context.Background()))
	assert.Equal(t, 2, calls)

	executor.Reset()
	assert.False(t, executor.Execute(context.Background()))
}

func TestTimedExecutorRun(t *testing.T) {
	var calls atomic.Int32
	executor := NewTimedExecutor(10*time.Millisecond, func(context.Context) { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		executor.Run(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("executor did not stop after cancellation")
	}
}
