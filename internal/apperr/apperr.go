// Package apperr defines the error taxonomy exposed by the API. Every
// failure leaving the service layer is one of these kinds; handlers map the
// kind to an HTTP status and a stable machine-checkable code.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the machine-checkable error category.
type Kind string

const (
	KindInvalidRequest     Kind = "invalid_request"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindUnauthenticated    Kind = "unauthenticated"
	KindQuotaExceeded      Kind = "quota_exceeded"
	KindUpstreamFailure    Kind = "upstream_failure"
	KindInternal           Kind = "internal"
)

// Error is a typed application error.
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

// Is makes errors.Is match on kind, so sentinel-style comparisons like
// errors.Is(err, apperr.E(apperr.KindQuotaExceeded, "...")) work across
// independently constructed instances.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// E constructs a new error of the given kind.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs a new error of the given kind wrapping a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. Unrecognized errors are
// classified as internal faults.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message for an error chain. Unrecognized
// errors get a generic message so internal detail is never exposed.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidRequest, KindInvalidCredentials:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindQuotaExceeded:
		return http.StatusForbidden
	case KindUpstreamFailure, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
