// Package trackerr defines the stable error classes shared by the log store,
// the period resolver and the command layer.
package trackerr

import "fmt"

// Error is a machine-readable error class with an optional message and cause.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Code
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is matches any error of the same class.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithMessage returns a new Error with the same Code but a specific message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg}
}

// WithMessagef returns a new Error with a formatted message.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a new Error of the same class carrying err as its cause.
func (e *Error) Wrap(err error, msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: err}
}

var (
	ErrIOFailure     = &Error{Code: "E_IO"}
	ErrFormat        = &Error{Code: "E_FORMAT"}
	ErrNotFound      = &Error{Code: "E_NOT_FOUND"}
	ErrInvalidPeriod = &Error{Code: "E_INVALID_PERIOD"}
	ErrCancelled     = &Error{Code: "E_CANCELLED"}
)
