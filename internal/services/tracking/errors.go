package tracking

import "errors"

var (
	// ErrTimerAlreadyRunning indicates a start on a task that already has an
	// open time entry. A second start is rejected, never merged.
	ErrTimerAlreadyRunning = errors.New("timer already running")
	// ErrTimerNotRunning indicates a stop on a task with no open time entry.
	ErrTimerNotRunning = errors.New("timer not running")
)
