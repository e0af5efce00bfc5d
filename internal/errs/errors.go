// Package errs provides the unified error type used across sqlbridge.
//
// Every subsystem (value conversion, the statement executor, the tool
// dispatcher, the HTTP server) returns *errs.Error. Engine drivers translate
// their native errors into one of the kinds below, so callers never import
// driver packages to decide what went wrong.
//
// Usage:
//
//	// In an engine driver, wrap native errors:
//	return errs.Wrap(errs.ErrKindQueryFailed, "failed to execute statement", sqliteErr)
//
//	// In a transport, check the error kind:
//	if errs.IsInvalidInput(err) {
//	    http.Error(w, err.Error(), http.StatusBadRequest)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing engine-specific codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // unknown operation, resource or prompt
	ErrKindConnectionFailed         // cannot open or reach the database
	ErrKindTimeout                  // context deadline reported by the engine
	ErrKindPrepareFailed            // statement text rejected by the engine
	ErrKindQueryFailed              // bind, execute or fetch failed
	ErrKindInvalidInput             // bad arguments from the caller
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindPrepareFailed:
		return "prepare_failed"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all sqlbridge subsystems.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // native engine error, kept for diagnostics
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a format string.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsNotFound reports whether err names something that does not exist
// (operation, resource, prompt).
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether the database could not be opened or reached.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsPrepareFailed reports whether the engine rejected the statement text.
func IsPrepareFailed(err error) bool {
	return KindOf(err) == ErrKindPrepareFailed
}

// IsQueryFailed reports whether binding, executing or fetching failed.
func IsQueryFailed(err error) bool {
	return KindOf(err) == ErrKindQueryFailed
}

// IsExecutionFailed reports whether err is any engine-side statement failure.
// Callers of the tool surface see prepare and execute failures as one class.
func IsExecutionFailed(err error) bool {
	k := KindOf(err)
	return k == ErrKindPrepareFailed || k == ErrKindQueryFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
