package engine

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, machine readable category of a lifecycle failure.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindInvalidStatus     ErrorKind = "INVALID_STATUS"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindIllegalTransition ErrorKind = "ILLEGAL_TRANSITION"
	KindConflict          ErrorKind = "CONFLICT"
	KindStoreUnavailable  ErrorKind = "STORE_UNAVAILABLE"
	KindBadRequest        ErrorKind = "BAD_REQUEST"
)

// Error carries a kind and a message that is safe to show to callers. The
// wrapped cause stays internal.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf returns the kind of err, or "" when err is not a lifecycle error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a lifecycle error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

func errNotFound(id int64, cause error) *Error {
	return newError(KindNotFound, cause, "workflow %d not found", id)
}

func errForbidden() *Error {
	return newError(KindForbidden, nil, "not permitted")
}

func errStoreUnavailable(cause error) *Error {
	return newError(KindStoreUnavailable, cause, "workflow store unavailable, re-read the workflow before retrying")
}
