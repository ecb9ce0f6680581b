package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the stable reason codes exposed to
// callers. Raw provider error text never travels in a Kind; it goes to the
// payment audit log only.
type Kind string

const (
	KindInsufficientCapacity Kind = "insufficient_capacity"
	KindValidation           Kind = "validation_error"
	KindNotFound             Kind = "not_found"
	KindConflict             Kind = "conflict"
	KindProviderTransport    Kind = "provider_transport_error"
	KindProviderRejected     Kind = "provider_rejected"
	KindInvariantViolation   Kind = "invariant_violation"
	KindInternal             Kind = "internal_error"
)

// Error carries a reason code plus a human-readable detail. Callers branch on
// the Kind, never on the detail string.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given kind and detail.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Newf creates an error with a formatted detail.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf returns the kind of err, or KindInternal if err carries none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
