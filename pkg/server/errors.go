package server

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common session and server conditions.
var (
	// ErrSessionClosed is returned when an operation is attempted on a
	// closed session.
	ErrSessionClosed = errors.New("server: session closed")

	// ErrSessionNotFound is returned when a session ID does not exist.
	ErrSessionNotFound = errors.New("server: session not found")

	// ErrSessionLimit is returned when the configured session cap is
	// reached.
	ErrSessionLimit = errors.New("server: session limit reached")

	// ErrConnAttached is returned when a session already has a live
	// WebSocket connection.
	ErrConnAttached = errors.New("server: connection already attached")

	// ErrNilComponent is returned when a page builder returns nil.
	ErrNilComponent = errors.New("server: page builder returned nil component")
)

// HTTPError is an error with an HTTP status code, for handlers that
// surface failures as responses.
type HTTPError struct {
	Code    int
	Message string
}

// Error implements error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// NewHTTPError creates an HTTPError with the given status and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

// BadRequest returns a 400 error.
func BadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

// NotFound returns a 404 error.
func NotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

// MethodNotAllowed returns a 405 error.
func MethodNotAllowed(message string) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed, message)
}

// TooLarge returns a 413 error.
func TooLarge(message string) *HTTPError {
	return NewHTTPError(http.StatusRequestEntityTooLarge, message)
}

// Internal returns a 500 error.
func Internal(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message)
}

// StatusCode extracts the HTTP status from err: the code of a wrapped
// HTTPError, otherwise 500.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
