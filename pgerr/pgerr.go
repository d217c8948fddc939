// Package pgerr defines the named error kinds surfaced across the scan
// pipeline, following the teacher's utils.PermError convention of a single
// lightweight error type rather than one Go type per failure mode.
package pgerr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	ConnectionError      Kind = "ConnectionError"
	ProtocolError        Kind = "ProtocolError"
	TableNotFound        Kind = "TableNotFound"
	EmptyRelation        Kind = "EmptyRelation"
	UnsupportedType      Kind = "UnsupportedType"
	UnknownEnumLabel     Kind = "UnknownEnumLabel"
	UnsupportedPredicate Kind = "UnsupportedPredicate"
	Canceled             Kind = "Canceled"
)

// Error wraps a Kind with a message and an optional underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, SomeKind) work by comparing Kind against a
// sentinel *Error carrying only that Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// sentinel returns a zero-value *Error of the given kind, for use with
// errors.Is.
func sentinel(k Kind) *Error {
	return &Error{Kind: k}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	return errors.Is(err, sentinel(kind))
}

// OfKind returns the Kind of err if it is (or wraps) a *Error, and ok=false
// otherwise.
func OfKind(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
