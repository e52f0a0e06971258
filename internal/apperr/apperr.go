// Package apperr defines the error taxonomy shared by the services and the
// HTTP layer.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies a failure for the caller.
type Kind string

const (
	KindInputFormat     Kind = "input_format"
	KindValidation      Kind = "validation"
	KindExternalService Kind = "external_service"
	KindNotFound        Kind = "not_found"
	KindUnavailable     Kind = "unavailable"
)

// Error carries a Kind, a human readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Cause lets errors.Cause from pkg/errors stop at the wrapped error.
func (e *Error) Cause() error { return e.Err }

func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to err. A nil err yields nil.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: errors.WithStack(err)}
}

func InputFormat(format string, args ...any) error {
	return Newf(KindInputFormat, format, args...)
}

func Validation(format string, args ...any) error {
	return Newf(KindValidation, format, args...)
}

func NotFound(format string, args ...any) error {
	return Newf(KindNotFound, format, args...)
}

func External(err error, format string, args ...any) error {
	return Wrap(KindExternalService, err, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the outermost *Error in the chain, or
// KindExternalService for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindExternalService
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// HTTPStatus maps an error to the response status used by the handlers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInputFormat, KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
