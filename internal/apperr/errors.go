// Package apperr defines the error taxonomy shared by every layer.
// Each component failure is classified into exactly one of these before
// it reaches the API layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized covers missing, malformed, and unverifiable
	// credentials and preview tokens alike. The cause is deliberately
	// not distinguished.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the backend reported the path absent.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a version token went stale between the read and
	// the conditional write or delete.
	ErrConflict = errors.New("conflict")

	// ErrValidation means the request is missing a required field, such
	// as the name on create.
	ErrValidation = errors.New("validation failed")

	// ErrBadRequest means the operation/method combination was not
	// recognized.
	ErrBadRequest = errors.New("bad request")
)

// UpstreamError carries a backend failure status and message verbatim.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status=%d message=%s", e.Status, e.Message)
}

// Upstream wraps a backend status/message pair.
func Upstream(status int, message string) *UpstreamError {
	return &UpstreamError{Status: status, Message: message}
}
