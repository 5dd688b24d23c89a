// Package domainerrors provides coded domain errors shared across services.
//
// Services return these so transport layers can map outcomes to HTTP statuses
// without string matching. Stores return sentinel errors (pkg/platform/sentinel)
// and services translate them into coded errors with an entity-specific message.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and retry decisions.
type Code string

const (
	// CodeNotFound marks a referenced entity that does not exist. Inside a
	// decision procedure absence is often a legitimate branch; it is only
	// surfaced with this code when the procedure has no fallback for it.
	CodeNotFound Code = "not_found"

	// CodeInvariantViolation marks a domain rule violation (age ordering,
	// gender mismatch, relationship cycle, cross-family conflict). Never
	// retried automatically; the message carries the human-readable reason.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeValidation marks malformed or missing caller input.
	CodeValidation Code = "validation"

	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"

	// CodeConflict and CodeTimeout mark transient failures: transaction
	// serialization conflicts and store timeouts. Safe to retry the whole
	// operation from the first lookup.
	CodeConflict Code = "conflict"
	CodeTimeout  Code = "timeout"

	CodeUnavailable Code = "unavailable"
	CodeInternal    Code = "internal"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is match two coded errors by code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New constructs a coded error with a human-readable message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/errors.As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err or any error in its chain carries the code.
func HasCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// CodeOf returns the code of the outermost coded error in the chain, or
// CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var e *Error
	if !errors.As(err, &e) {
		return CodeInternal
	}
	return e.Code
}

// IsTransient reports whether the error is safe to retry from scratch.
func IsTransient(err error) bool {
	return HasCode(err, CodeConflict) || HasCode(err, CodeTimeout) || HasCode(err, CodeUnavailable)
}
