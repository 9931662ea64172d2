// Package apperrors defines the closed set of error kinds produced by the
// ledger core. The HTTP layer maps kinds to transport status codes; the core
// itself never carries transport concerns.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a ledger error.
type Kind string

const (
	// KindValidation marks malformed or missing input. No side effects.
	KindValidation Kind = "VALIDATION"
	// KindNotFound marks an unknown recipient, wallet, or user. No side effects.
	KindNotFound Kind = "NOT_FOUND"
	// KindInsufficientFunds marks a balance check failed under lock. No side effects.
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	// KindRateUnavailable marks that neither a direct nor an inverse FX quote exists.
	KindRateUnavailable Kind = "RATE_UNAVAILABLE"
	// KindContention marks lock-wait timeouts and deadlocks. The whole
	// operation may be retried from scratch; nothing was applied.
	KindContention Kind = "CONTENTION"
	// KindPersistence marks an unexpected storage failure inside the atomic
	// scope. The transaction was rolled back.
	KindPersistence Kind = "PERSISTENCE"
)

// Error is a tagged error carrying one of the closed Kinds.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation constructs a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound constructs a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InsufficientFunds constructs a KindInsufficientFunds error.
func InsufficientFunds(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: fmt.Sprintf(format, args...)}
}

// RateUnavailable constructs a KindRateUnavailable error.
func RateUnavailable(format string, args ...any) *Error {
	return &Error{Kind: KindRateUnavailable, Message: fmt.Sprintf(format, args...)}
}

// Contention wraps err as a retryable KindContention error.
func Contention(message string, err error) *Error {
	return &Error{Kind: KindContention, Message: message, Err: err}
}

// Persistence wraps err as a KindPersistence error. The wrapped cause is for
// internal logs only; callers see the kind.
func Persistence(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

// KindOf returns the Kind of err, or "" if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
