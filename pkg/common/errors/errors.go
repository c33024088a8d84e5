package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the brakepedal packages

var (
	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrThrottled indicates that a key exceeded one of its limiters
	ErrThrottled = errors.New("throttled")

	// ErrLocked indicates that a key is inside an active lock window
	ErrLocked = errors.New("locked")

	// ErrNoLockDuration is raised when a lock operation is attempted on a
	// limiter that was built without LockFor.
	ErrNoLockDuration = fmt.Errorf("%w: limiter has no lock duration", ErrInvalidConfiguration)
)

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string

	// Sentinel overrides the error returned by Unwrap. Defaults to
	// ErrInvalidConfiguration.
	Sentinel error
}

// NewValidationError creates a ValidationError without a hint.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint attaches a remediation hint and returns the same error for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

// WithSentinel sets the sentinel reported by Unwrap and returns the same error.
func (e *ValidationError) WithSentinel(sentinel error) *ValidationError {
	e.Sentinel = sentinel
	return e
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	if e.Sentinel != nil {
		return e.Sentinel
	}
	return ErrInvalidConfiguration
}

// OperationError wraps a failure of a store or component operation.
type OperationError struct {
	Module    string
	Operation string
	Cause     error
	Context   string
}

// NewOperationError creates an OperationError for module.operation.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// WithContext attaches extra detail (usually the store key) and returns the
// same error for chaining.
func (e *OperationError) WithContext(context string) *OperationError {
	e.Context = context
	return e
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// IsTemporary returns true if the error indicates a temporary condition
func IsTemporary(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsBlocked reports whether err signals a throttle decision rather than a failure.
func IsBlocked(err error) bool {
	return errors.Is(err, ErrThrottled) || errors.Is(err, ErrLocked)
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
