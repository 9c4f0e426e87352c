package sync

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned when a sync is requested while another one
// is still in flight. Requests are rejected immediately, never queued.
var ErrSyncInProgress = errors.New("sync already in progress")

// SyncError wraps a failure from one phase of a sync run. The local state
// is untouched when a SyncError is returned.
type SyncError struct {
	Op  string // The phase that failed (e.g., "push decks", "commit")
	Err error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed during %s: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SyncError) Unwrap() error {
	return e.Err
}

func newSyncError(op string, err error) *SyncError {
	return &SyncError{Op: op, Err: err}
}
