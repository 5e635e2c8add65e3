package journal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Run status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("journal is closed")

// Run is one recorded prune run.
type Run struct {
	ID        string        `json:"id"`
	Job       string        `json:"job"`
	Source    string        `json:"source"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`

	Kept     int `json:"kept"`
	Dropped  int `json:"dropped"`
	Warnings int `json:"warnings"`

	// DroppedNames lists the entries the run reported for removal.
	DroppedNames []string `json:"dropped_names,omitempty"`
}

// Query filters the runs returned by List. Zero values match everything.
type Query struct {
	Job   string
	Since time.Time

	// Limit caps the number of runs returned. Default: 100
	Limit int
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return 100
	}
	return q.Limit
}

func (q Query) matches(r *Run) bool {
	if q.Job != "" && r.Job != q.Job {
		return false
	}
	if !q.Since.IsZero() && r.StartedAt.Before(q.Since) {
		return false
	}
	return true
}

// Store persists runs.
type Store interface {
	// Record appends a run.
	Record(ctx context.Context, run *Run) error

	// List returns matching runs, newest first.
	List(ctx context.Context, q Query) ([]*Run, error)

	// Prune removes runs that started before cutoff and returns how many
	// were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases the store.
	Close() error
}

// StoreError wraps a failure in a journal backend.
type StoreError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("journal error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

func newStoreError(backend, operation string, cause error) *StoreError {
	return &StoreError{Backend: backend, Operation: operation, Cause: cause}
}
