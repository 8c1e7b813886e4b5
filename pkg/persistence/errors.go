// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrProcessNotFound indicates a process was not found by the given identifier.
	ErrProcessNotFound = errors.New("process not found")

	// ErrSnapshotNotFound indicates a snapshot was not found for the given process.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrInvalidSortField indicates an unsupported sort field was requested.
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrInvalidSortOrder indicates an unsupported sort order was requested.
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

// ProcessError wraps process-related errors with additional context.
type ProcessError struct {
	Op         string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	ProcessID  string // Process ID if applicable
	SnapshotID string // Snapshot ID if applicable
	Err        error  // Underlying error
}

func (e *ProcessError) Error() string {
	if e.SnapshotID != "" {
		return fmt.Sprintf("%s operation failed for snapshot %s of process %s: %v", e.Op, e.SnapshotID, e.ProcessID, e.Err)
	}

	return fmt.Sprintf("%s operation failed for process %s: %v", e.Op, e.ProcessID, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for process errors.
func (e *ProcessError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewProcessError creates a new process error with context.
func NewProcessError(op, processID string, err error) *ProcessError {
	return &ProcessError{
		Op:        op,
		ProcessID: processID,
		Err:       err,
	}
}

// NewSnapshotError creates a new process error for snapshot operations.
func NewSnapshotError(op, processID, snapshotID string, err error) *ProcessError {
	return &ProcessError{
		Op:         op,
		ProcessID:  processID,
		SnapshotID: snapshotID,
		Err:        err,
	}
}

// IsProcessNotFound checks if an error indicates a process was not found.
func IsProcessNotFound(err error) bool {
	return errors.Is(err, ErrProcessNotFound)
}

// IsSnapshotNotFound checks if an error indicates a snapshot was not found.
func IsSnapshotNotFound(err error) bool {
	return errors.Is(err, ErrSnapshotNotFound)
}

// IsInvalidSortField checks if an error indicates an invalid sort field.
func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField) || errors.Is(err, ErrInvalidSortOrder)
}
