package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for backend failures. Match with errors.Is.
var (
	// ErrNetwork is a transport or connection failure.
	ErrNetwork = errors.New("network error")

	// ErrServer is a non-success response not covered by a narrower kind.
	ErrServer = errors.New("server error")

	// ErrValidation is a request the backend rejected as malformed.
	ErrValidation = errors.New("validation error")

	// ErrNotFound means the backend no longer has the task.
	ErrNotFound = errors.New("not found")
)

// APIError describes a failed backend call.
type APIError struct {
	Op         string // route name, e.g. "get_tasks"
	StatusCode int    // 0 for transport failures
	Message    string
	Kind       error // one of the sentinels above
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("%s: %v (status %d)", e.Op, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v (status %d): %s", e.Op, e.Kind, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// KindForStatus maps a non-success HTTP status code to an error kind.
func KindForStatus(code int) error {
	switch code {
	case 404:
		return ErrNotFound
	case 400, 422:
		return ErrValidation
	default:
		return ErrServer
	}
}
