// Package errcode provides the structured error type shared by the thread,
// webserver, and blockfs packages: an operation name, a closed error code,
// and an optionally wrapped cause, generalized from go-ublk's errors.go.
package errcode

import (
	"errors"
	"fmt"
)

// Code is a closed error category. Each subsystem defines its own set of
// Code values (see blockfs/blockfs.go and webserver/filedata.go).
type Code string

// Error is a structured error carrying the failing operation, its category,
// and an optional wrapped cause.
type Error struct {
	Op    string // operation that failed, e.g. "yield", "read_data"
	Code  Code
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Inner
}

// Is supports errors.Is comparison by Code: errors.Is(err, errcode.Code("invalid"))
// is not idiomatic (Code isn't an error), so instead callers compare two
// *Error values or use Is against a sentinel built with New.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return e.Code == te.Code
	}
	return false
}

// New builds a structured error for the given operation and code.
func New(op string, code Code, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// Wrap attaches op/code context to an existing error, preserving it as the
// unwrap chain's cause.
func Wrap(op string, code Code, inner error) *Error {
	if inner == nil {
		return nil
	}
	return &Error{Op: op, Code: code, Msg: inner.Error(), Inner: inner}
}

// HasCode reports whether err is (or wraps) an *Error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
