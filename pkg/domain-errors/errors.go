// Package domainerrors provides coded errors for business-rule outcomes.
//
// Services return these so callers (handlers, tests) can branch on the code
// without string matching. Expected rejections (duplicate names, in-use
// deletions) are ordinary values of this type, not panics.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and test assertions.
type Code string

const (
	// CodeValidation marks malformed or arithmetically invalid input.
	CodeValidation Code = "validation"
	// CodeConflict marks uniqueness violations (duplicate scoped names).
	CodeConflict Code = "conflict"
	// CodeNotFound marks operations against nonexistent ids/keys.
	CodeNotFound Code = "not_found"
	// CodeInUse marks deletions blocked by dependent records.
	CodeInUse Code = "in_use"
	// CodeUnavailable marks persistence failures/timeouts; never retried here.
	CodeUnavailable Code = "unavailable"
	// CodeInvariantViolation marks constructor/aggregate invariant breaches.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks unexpected infrastructure faults.
	CodeInternal Code = "internal"
)

// Error carries a code, a human-readable message, and an optional cause.
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

func (e *Error) Unwrap() error { return e.Err }

// New builds a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// non-domain errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
