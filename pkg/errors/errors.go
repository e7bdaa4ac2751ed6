// Package errors augments the standard errors
// provided by fmt (https://golang.org/src/fmt/errors.go)
// with a Wrap() method to wrap errors without resorting
// to fmt.Errorf("%w", err).
//
// Sentinel errors declared with New may be wrapped around a cause
// while remaining matchable with errors.Is.
package errors

import (
	stderr "errors"
)

var _ error = New("")

// New Error
func New(msg string) *Error {
	return &Error{msg: msg}
}

// Error augments the standard error interface with a Wrap method.
//
// The main difference with github.com/pkg/errors is that we are wrapping
// errors from errors, not from text.
//
// Wrap does not mutate its receiver: it returns a new value that keeps
// a reference to the original sentinel, so a package-level sentinel may
// be wrapped concurrently from multiple goroutines.
type Error struct {
	msg    string
	cause  error
	parent *Error
}

// Error message, including the message of the wrapped cause when there is one
func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

// Unwrap nested error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Wrap a nested error. The receiver is left untouched and remains the
// match target for errors.Is on the returned value.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, cause: err, parent: e}
}

// Is of some error type?
func (e *Error) Is(target error) bool {
	if e == target {
		return true
	}
	if e.parent != nil {
		return e.parent.Is(target)
	}
	return false
}

// As finds the first error in err's chain that matches target, and if so, sets target to that error value and returns true.
// (a shortcut to standard lib errors.As)
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}

// Is reports whether any error in err's chain matches target
// (a shortcut to standard lib errors.As)
func Is(err, target error) bool {
	return stderr.Is(err, target)
}
