// Package errs implements the error taxonomy every
// error a core component returns upward is one of Transient, DataShape,
// Policy, or Fatal, so loop boundaries can decide continue/sleep/exit
// without re-deriving intent from an error string.
package errs

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Wrapf is pkg/errors-style annotation, kept for call sites that want a
// formatted message alongside a Kind, rather than stdlib
// fmt.Errorf("%w").
func Wrapf(kind Kind, cause error, format string, args ...interface{}) error {
	return Wrap(kind, pkgerrors.Wrapf(cause, format, args...))
}

// Kind is the taxonomy every caller classifies an error against.
type Kind int

const (
	KindTransient Kind = iota
	KindDataShape
	KindPolicy
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindDataShape:
		return "data_shape"
	case KindPolicy:
		return "policy"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind so loop boundaries can
// switch on it. Cause() satisfies github.com/pkg/errors' Causer
// interface so existing errors.Cause(err) call sites keep working.
type Error struct {
	kind  Kind
	cause error
}

func (e *Error) Error() string { return e.cause.Error() }
func (e *Error) Cause() error  { return e.cause }
func (e *Error) Unwrap() error { return e.cause }
func (e *Error) Kind() Kind    { return e.kind }

// Wrap annotates cause with a kind, producing an *Error. A nil cause
// returns nil, matching errors.Wrap's convention.
func Wrap(kind Kind, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{kind: kind, cause: cause}
}

// Transient wraps cause as a KindTransient error.
func Transient(cause error) error { return Wrap(KindTransient, cause) }

// DataShape wraps cause as a KindDataShape error.
func DataShape(cause error) error { return Wrap(KindDataShape, cause) }

// Fatal wraps cause as a KindFatal error.
func Fatal(cause error) error { return Wrap(KindFatal, cause) }

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error produced by this package, defaulting to KindTransient; an
// unclassified error is treated as recoverable-by-retry, never as an
// instant process exit.
func KindOf(err error) Kind {
	var e *Error
	for err != nil {
		if ke, ok := err.(*Error); ok {
			e = ke
			break
		}
		cause := errors.Unwrap(err)
		if cause == nil {
			break
		}
		err = cause
	}
	if e == nil {
		return KindTransient
	}
	return e.kind
}

// IsFatal reports whether err, or an error it wraps, is classified
// KindFatal.
func IsFatal(err error) bool { return KindOf(err) == KindFatal }
