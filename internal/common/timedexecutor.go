package common

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Give the timed executor a task and a timeout.
// Call the execute function from time to time.
// If the function gets called when the timeout has been reached,
// the provided task will execute. If not, the call will do nothing
type TimedExecutor struct {
	stopwatch Stopwatch
	task      func(ctx context.Context)
}

// Create a timed executor provided a timeout and a task
func NewTimedExecutor(timeout time.Duration, task func(ctx context.Context)) *TimedExecutor {
	return &TimedExecutor{NewStopwatch(timeout), task}
}

// Execute the task if the timeout has been reached, else do nothing.
// Report whether the task ran
func (te *TimedExecutor) Execute(ctx context.Context) bool {
	if stopped, _ := te.stopwatch.Stopped(); stopped {
		te.stopwatch.Start()
		te.task(ctx)
		return true
	}
	return false
}

// Mark the task as just executed, so the next run happens one timeout from now
func (te *TimedExecutor) Reset() {
	te.stopwatch.Start()
}

// Keep executing the task every timeout until the context is cancelled.
// The stopwatch is checked every resolution
func (te *TimedExecutor) Run(ctx context.Context, resolution time.Duration) {
	if resolution <= 0 || resolution > te.stopwatch.Timeout {
		resolution = te.stopwatch.Timeout
	}
	ticker := time.NewTicker(resolution)
	defer ticker.Stop()

	log.Debug().Dur("timeout", te.stopwatch.Timeout).Msg("Starting timed executor")
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Stopping timed executor")
			return
		case <-ticker.C:
			te.Execute(ctx)
		}
	}
}
