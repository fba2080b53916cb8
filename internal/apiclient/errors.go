package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the API error envelope: an HTTP status plus the server's
// best-effort message, decoded from `{"message": ...}` bodies.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// NetworkError indicates no response was obtained at all.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("api: network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsAuth reports an authentication failure (401).
func IsAuth(err error) bool { return IsStatus(err, http.StatusUnauthorized) }

// IsConflict reports a conflict such as a duplicate registration (409).
func IsConflict(err error) bool { return IsStatus(err, http.StatusConflict) }

// IsNotFound reports a missing resource (404).
func IsNotFound(err error) bool { return IsStatus(err, http.StatusNotFound) }

// IsUnimplemented reports an endpoint the mock backend does not cover (501).
func IsUnimplemented(err error) bool { return IsStatus(err, http.StatusNotImplemented) }

// IsNetwork reports a transport-level failure with no response.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// UserMessage extracts a user-facing message from err, falling back to
// the given default. Page views use it to fill toast descriptions.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
