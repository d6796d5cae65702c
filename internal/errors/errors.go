// Package errors provides a structured error type hierarchy for sweep.
//
// This package defines base error types for common error conditions, wrapped error
// types that add contextual information, and helper functions for error wrapping
// and type checking.
//
// # Error Types
//
// Base errors (sentinel errors):
//   - ErrNotFound - contact or resource not found
//   - ErrAlreadyExists - duplicate filter or pending deletion
//   - ErrInvalid - validation failed (empty field, bad filter)
//   - ErrOutOfRange - jump target or entry index outside the collection
//   - ErrStore - the store refused the request
//   - ErrTransport - the store could not be reached
//   - ErrCanceled - operation canceled
//
// Wrapped error types (add context):
//   - StoreError{Op, ID, Err} - store operation errors
//   - ConfigError{Path, Err} - configuration errors
//
// # Usage
//
//	// Use sentinel errors directly
//	return errors.ErrOutOfRange
//
//	// Wrap with context using Wrap
//	return errors.Wrap(err, "listContacts")
//
//	// Use structured error types
//	return &errors.StoreError{Op: "delete", Err: errors.ErrTransport, ID: contactID}
//
//	// Check error types
//	if errors.IsOutOfRange(err) {
//	    // handle bad jump target
//	}
package errors

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	// ErrNotFound indicates a resource was not found.
	ErrNotFound = baseError("not found")

	// ErrAlreadyExists indicates a duplicate resource.
	ErrAlreadyExists = baseError("already exists")

	// ErrInvalid indicates validation failed.
	ErrInvalid = baseError("invalid")

	// ErrOutOfRange indicates a position or index outside the valid range.
	ErrOutOfRange = baseError("out of range")

	// ErrStore indicates the contact store refused a request.
	ErrStore = baseError("store refused request")

	// ErrTransport indicates the contact store could not be reached.
	ErrTransport = baseError("transport failure")

	// ErrCanceled indicates an operation was canceled.
	ErrCanceled = baseError("canceled")
)

// baseError is a string that implements error.
type baseError string

func (e baseError) Error() string { return string(e) }

// StoreError represents an error that occurred during a store operation.
type StoreError struct {
	// Op is the operation being performed (e.g., "list", "update", "delete").
	Op string
	// Err is the underlying error.
	Err error
	// ID is the contact identifier (optional).
	ID string
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("store %s %q: %s", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("store %s: %s", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ConfigError represents an error related to configuration.
type ConfigError struct {
	// Path is the configuration file path (optional).
	Path string
	// Err is the underlying error.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %s", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %s", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Wrap adds context to an error by wrapping it with an operation name.
// The returned error implements Unwrap() allowing errors.Is and errors.As
// to work with the wrapped error.
func Wrap(err error, op string) error {
	return &wrappedError{op: op, err: err}
}

// Invalidf returns an ErrInvalid carrying a formatted reason.
func Invalidf(format string, args ...any) error {
	return &wrappedError{op: fmt.Sprintf(format, args...), err: ErrInvalid}
}

// wrappedError is an error with an operation context.
type wrappedError struct {
	op  string
	err error
}

func (e *wrappedError) Error() string { return fmt.Sprintf("%s: %s", e.op, e.err) }
func (e *wrappedError) Unwrap() error { return e.err }

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is or wraps ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalid reports whether err is or wraps ErrInvalid.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// IsOutOfRange reports whether err is or wraps ErrOutOfRange.
func IsOutOfRange(err error) bool {
	return errors.Is(err, ErrOutOfRange)
}

// IsStore reports whether err is or wraps ErrStore.
func IsStore(err error) bool {
	return errors.Is(err, ErrStore)
}

// IsTransport reports whether err is or wraps ErrTransport.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsCanceled reports whether err is or wraps ErrCanceled.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// AsStoreError reports whether err can be typed as a *StoreError.
func AsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsConfigError reports whether err can be typed as a *ConfigError.
func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
