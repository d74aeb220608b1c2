package todo

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation names a todo that is not in
// scope, e.g. a timer update for a todo outside today's list.
var ErrNotFound = errors.New("todo not found")

// AlreadyRunningError is returned when a timer start is attempted while
// another todo's timer is active. It carries the active todo's ID so the UI
// can name the offender.
type AlreadyRunningError struct {
	ActiveID int64
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("another timer is already running (todo %d)", e.ActiveID)
}

// SaveFailedError wraps a persistence failure during a timer pause or reset.
type SaveFailedError struct {
	Err error
}

func (e *SaveFailedError) Error() string {
	return fmt.Sprintf("saving timer failed: %v", e.Err)
}

func (e *SaveFailedError) Unwrap() error { return e.Err }
