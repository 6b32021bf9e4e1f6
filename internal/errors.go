package internal

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/userdesk/pkg/access"
	"github.com/dmitrymomot/userdesk/pkg/validate"
)

// HTTPError is an error with a status code and a user-facing message.
type HTTPError struct {
	// Err is the underlying cause. It is logged, never shown.
	Err error

	// Message is shown to the user.
	Message string

	// RequestID is filled in by the error handler when known.
	RequestID string

	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// Kind classifies the error by its status code.
func (e *HTTPError) Kind() Kind {
	switch {
	case e.Code == http.StatusNotFound:
		return KindNotFound
	case e.Code == http.StatusForbidden || e.Code == http.StatusUnauthorized:
		return KindForbidden
	case e.Code >= 400 && e.Code < 500:
		return KindValidation
	default:
		return KindInternal
	}
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed, message, opts...)
}

func ErrTooManyRequests(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusTooManyRequests, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, opts...)
}

// Kind is the coarse class of a request failure.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// KindOf classifies err. Access denials are Forbidden, validation failures
// are Validation, and anything without a status is Internal.
func KindOf(err error) Kind {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Kind()
	}
	var denied *access.DeniedError
	if errors.As(err, &denied) {
		return KindForbidden
	}
	var invalid *validate.Errors
	if errors.As(err, &invalid) {
		return KindValidation
	}
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return (&HTTPError{Code: coded.StatusCode()}).Kind()
	}
	return KindInternal
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return coded.StatusCode()
	}
	var denied *access.DeniedError
	if errors.As(err, &denied) {
		return http.StatusForbidden
	}
	var invalid *validate.Errors
	if errors.As(err, &invalid) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// AsHTTPError extracts the HTTPError from an error chain.
// Returns nil if there is none.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}
