// Package errors provides a structured error type hierarchy for chaosflow.
//
// This package defines base error types for common error conditions, wrapped error
// types that add contextual information, and helper functions for error wrapping
// and type checking.
//
// # Error Types
//
// Base errors (sentinel errors):
//   - ErrNotFound - hub, chart or draft not found
//   - ErrInvalid - validation failed or selection not allowed
//   - ErrNetwork - portal or chart source unreachable
//   - ErrIO - file I/O error
//   - ErrCanceled - user canceled operation
//
// Wrapped error types (add context):
//   - HubError{Op, Hub, Err} - catalog query errors
//   - DraftError{Op, Err} - draft store errors
//   - ConfigError{Path, Err} - configuration errors
//
// # Usage
//
//	return &errors.HubError{Op: "charts", Hub: "myhub", Err: errors.ErrNetwork}
//
//	if errors.IsInvalid(err) {
//	    // selection rejected
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

	// ErrInvalid indicates validation failed.
	ErrInvalid = baseError("invalid")

	// ErrNetwork indicates a remote call failed.
	ErrNetwork = baseError("network error")

	// ErrIO indicates a file I/O error.
	ErrIO = baseError("I/O error")

	// ErrCanceled indicates the user canceled an operation.
	ErrCanceled = baseError("canceled")
)

// baseError is a string that implements error.
type baseError string

func (e baseError) Error() string { return string(e) }

// HubError represents an error that occurred while querying a hub.
type HubError struct {
	// Op is the query being performed (e.g., "status", "charts").
	Op string
	// Hub is the hub name (optional).
	Hub string
	// Err is the underlying error.
	Err error
}

func (e *HubError) Error() string {
	if e.Hub != "" {
		return fmt.Sprintf("hub %s %q: %s", e.Op, e.Hub, e.Err)
	}
	return fmt.Sprintf("hub %s: %s", e.Op, e.Err)
}

func (e *HubError) Unwrap() error { return e.Err }

// DraftError represents an error raised by a draft store.
type DraftError struct {
	// Op is the store operation (e.g., "get", "merge", "reset").
	Op string
	// Err is the underlying error.
	Err error
}

func (e *DraftError) Error() string {
	return fmt.Sprintf("draft %s: %s", e.Op, e.Err)
}

func (e *DraftError) Unwrap() error { return e.Err }

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
// Wrap returns nil when err is nil.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{op: op, err: err}
}

// Invalidf returns an error wrapping ErrInvalid with a formatted reason.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
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

// IsInvalid reports whether err is or wraps ErrInvalid.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// IsNetwork reports whether err is or wraps ErrNetwork.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsIO reports whether err is or wraps ErrIO.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsCanceled reports whether err is or wraps ErrCanceled.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// AsHubError reports whether err can be typed as a *HubError.
func AsHubError(err error) (*HubError, bool) {
	var he *HubError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

// AsDraftError reports whether err can be typed as a *DraftError.
func AsDraftError(err error) (*DraftError, bool) {
	var de *DraftError
	if errors.As(err, &de) {
		return de, true
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
