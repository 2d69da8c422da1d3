package share

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a local validation failure. No request was sent.
	ErrValidation = errors.New("validation error")

	// ErrDeclined is returned when the user declines a destructive action.
	ErrDeclined = errors.New("confirmation declined")

	// ErrInFlight is returned when the control already has a request in flight.
	ErrInFlight = errors.New("request already in flight")

	// ErrMissingCSRF is returned when the page carries no CSRF metadata.
	ErrMissingCSRF = errors.New("csrf metadata not found")

	// ErrSessionExpired is returned when the server turns a request away
	// because the stored session is missing or no longer valid.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotFound is returned when a card, form or row is not on the page.
	ErrNotFound = errors.New("not found")
)

// ValidationError carries the user-facing message of a failed local check.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets callers match any ValidationError with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// RemoteError is the normalized form of every transport or server failure.
// Message is always non-empty and safe to show to the user.
type RemoteError struct {
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *RemoteError) Unwrap() error { return e.Err }

// UserMessage extracts the text a notification should show for err.
// fallback is used when err carries no message of its own.
func UserMessage(err error, fallback string) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	var invalid *ValidationError
	if errors.As(err, &invalid) && invalid.Message != "" {
		return invalid.Message
	}
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
