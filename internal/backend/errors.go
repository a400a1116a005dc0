package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthExpired is returned for 401/403 answers. The session is finished;
	// the operator has to sign in again.
	ErrAuthExpired = errors.New("session expired")

	// ErrNetwork wraps transport failures. The operator may retry by hand.
	ErrNetwork = errors.New("backend unreachable")

	// ErrBadResponse is returned when a 2xx body cannot be decoded.
	ErrBadResponse = errors.New("backend bad response")
)

// RejectedError is a non-2xx answer other than 401/403. Message is the
// backend's own explanation when it sent one.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend rejected request: status=%d", e.Status)
	}
	return fmt.Sprintf("backend rejected request: status=%d: %s", e.Status, e.Message)
}

// MessageOr returns the server-provided message carried by err, or fallback.
func MessageOr(err error, fallback string) string {
	var re *RejectedError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}

// ErrValidation marks input refused locally before any request is made.
var ErrValidation = errors.New("validation failed")

type ValidationError struct {
	Field   string
	Message string
}

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
