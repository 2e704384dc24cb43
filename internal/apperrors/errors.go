package apperrors

import (
	"errors"
	"net/http"
)

// ErrDuplicateKey is returned when a storage uniqueness constraint is violated.
var ErrDuplicateKey = errors.New("duplicate key")

// ValidationError represents invalid user input. It is caught locally by the
// route that produced it and rendered inline with a 400 status.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation creates a validation error with a user-facing message.
func NewValidation(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// MapError maps workflow errors to HTTP errors for rendering. Validation and
// duplicate-key failures keep their user-facing messages with a 400; anything
// else is a persistence-level failure reported generically with a 500 (the raw
// error is for logs, never for the client).
func MapError(err error) *HTTPError {
	var v *ValidationError
	switch {
	case errors.As(err, &v):
		return NewHTTPError(http.StatusBadRequest, v.Message)
	case errors.Is(err, ErrDuplicateKey):
		return NewHTTPError(http.StatusBadRequest, "Username needs to be unique. The username you chose is already in use.")
	default:
		return NewHTTPError(http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}
