// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by use cases
// and mapped to appropriate HTTP status codes by handlers.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRetryable indicates a transport-level failure (connection refused,
	// timeout, 5xx) that a future sync trigger is expected to resolve.
	ErrRetryable = errors.New("retryable failure")

	// ErrRejected indicates the remote system rejected the request for a
	// business reason (4xx). Retrying the same payload can never succeed.
	ErrRejected = errors.New("rejected by remote")

	// ErrRetryExhausted indicates an operation has used all of its automatic
	// retry attempts and requires an explicit operator decision.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrNoPrinterAssigned indicates no device is configured for the requested
	// print job type.
	ErrNoPrinterAssigned = errors.New("no printer assigned")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
