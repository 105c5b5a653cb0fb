// Package apperr defines the error taxonomy shared by the lifecycle manager,
// the discovery engine, the ledger and the HTTP features.
//
// Managers return *Error values; the respond package maps the Kind to an
// HTTP status. Anything that is not an *Error is treated as KindUpstream.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	KindUpstream Kind = iota // store or gateway failure
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidOperation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidOperation:
		return "invalid_operation"
	default:
		return "upstream"
	}
}

// HTTPStatus returns the status code for k. Conflicts are surfaced as 400
// since a duplicate payment or a taken request is an expected outcome.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict, KindInvalidOperation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified, user-facing error. Message is safe to show to
// clients; Err (if any) is the diagnostic cause.
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

func newErr(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

func Validation(msg string) *Error       { return newErr(KindValidation, msg) }
func Unauthenticated(msg string) *Error  { return newErr(KindUnauthenticated, msg) }
func Forbidden(msg string) *Error        { return newErr(KindForbidden, msg) }
func NotFound(msg string) *Error         { return newErr(KindNotFound, msg) }
func Conflict(msg string) *Error         { return newErr(KindConflict, msg) }
func InvalidOperation(msg string) *Error { return newErr(KindInvalidOperation, msg) }

// Upstream wraps a store or gateway failure under a client-facing message.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// Wrap attaches a cause to e and returns it.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// KindOf returns the Kind of err, or KindUpstream if err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUpstream
}

// Is reports whether err is an *Error of kind k.
func Is(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}
