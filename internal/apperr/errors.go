package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that the target id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation reports malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence reports a storage or backend failure.
	ErrPersistence = errors.New("persistence failure")
)

// Validation wraps ErrValidation with a human readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Persistence wraps a storage error so callers can match ErrPersistence
// while keeping the cause.
func Persistence(op string, err error) error {
	return &persistenceError{op: op, err: err}
}

type persistenceError struct {
	op  string
	err error
}

func (e *persistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *persistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.err}
}

// DecodeError describes a snapshot payload that could not be decoded.
// It is recovered where it occurs and never crosses the wire.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode snapshot payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
