package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of a ledger operation.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindUnauthorized
	KindConflict
	KindUnprocessable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindUnprocessable:
		return "unprocessable"
	}
	return "unknown"
}

// Error is an anticipated, user-visible failure. Anything else returned by
// the services is an infrastructure error.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized, Message: "Not authorized"}
	ErrConflict      = &Error{Kind: KindConflict, Message: "already exists"}
	ErrUnprocessable = &Error{Kind: KindUnprocessable, Message: "unprocessable entity"}
)

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Unprocessable(format string, args ...any) *Error {
	return &Error{Kind: KindUnprocessable, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a ledger error, or 0 for infrastructure errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
