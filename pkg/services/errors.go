// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/swimlane/pkg/intake"
	"github.com/dukex/swimlane/pkg/persistence"
	"github.com/dukex/swimlane/pkg/quality"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrEmptyOwnerID     = errors.New("owner ID cannot be empty")
	ErrEmptyPayload     = errors.New("process graph payload cannot be empty")

	// Not Found Errors (404 Not Found).
	ErrProcessNotFound  = persistence.ErrProcessNotFound
	ErrSnapshotNotFound = persistence.ErrSnapshotNotFound

	// Business Logic Conflicts (409 Conflict).
	ErrOwnerMismatch = errors.New("process belongs to another owner")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
// Malformed external graphs and contract violations of submitted graphs count as validation errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrEmptyOwnerID) ||
		errors.Is(err, ErrEmptyPayload) ||
		intake.IsMalformed(err) ||
		quality.IsContractViolation(err)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrProcessNotFound) || errors.Is(err, ErrSnapshotNotFound)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrOwnerMismatch)
}

// IsRejectedError checks if an external graph failed the quality gate (HTTP 422).
func IsRejectedError(err error) bool {
	return intake.IsRejected(err)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
