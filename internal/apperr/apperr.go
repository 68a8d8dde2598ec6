// Package apperr defines the typed failure taxonomy shared by all
// services. Every core operation returns either a payload or exactly one
// of these kinds; the handler layer maps kinds to HTTP statuses and never
// recovers beyond that.
package apperr

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: missing or malformed required input (client fault).
	KindValidation
	// KindAuthentication: bad credentials or an invalid, expired or
	// revoked token.
	KindAuthentication
	// KindNotFound: entity or page absent.
	KindNotFound
	// KindConflict: duplicate unique field.
	KindConflict
	// KindStoreUnavailable: persistence layer failure. Never retried.
	KindStoreUnavailable
)

// Error carries a client-safe message plus an optional wrapped cause.
// The cause is for diagnostics only and must never reach the response
// body, so credential material cannot leak through it.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from anywhere in the wrap chain.
// Unrecognized errors report KindUnknown and are treated as 500s.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the client-safe message, falling back to a generic
// one for untyped errors so internal details stay out of responses.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
