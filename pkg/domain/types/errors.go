package types

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Failure taxonomy for backend calls. Every transport error is wrapped
// around exactly one of these sentinels so that callers can dispatch with
// errors.Is instead of inspecting status codes.
var (
	// ErrNetworkUnavailable means no HTTP response was received at all.
	ErrNetworkUnavailable = goerr.New("network unavailable")

	// ErrNotFound is a 404 from the backend.
	ErrNotFound = goerr.New("resource not found")

	// ErrValidationFailed is a 422 carrying structured field errors.
	ErrValidationFailed = goerr.New("validation failed")

	// ErrPreconditionFailed is an If-Match mismatch on update/delete.
	ErrPreconditionFailed = goerr.New("precondition failed")

	// ErrUnexpected covers every other failure response.
	ErrUnexpected = goerr.New("unexpected error")
)

// IsCanceled reports whether err originates from a canceled request.
// Canceled requests are not failures and must never reach the message sink.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// FieldViolations maps field names to the backend's validation messages.
// Only the first message per field is ever surfaced to the user.
type FieldViolations map[string][]string

// First returns the leading message for the field, or "" when clean
func (v FieldViolations) First(field string) string {
	msgs, ok := v[field]
	if !ok || len(msgs) == 0 {
		return ""
	}
	return msgs[0]
}

// ValidationError carries the structured field errors of a 422 response.
// It unwraps to ErrValidationFailed so errors.Is keeps working.
type ValidationError struct {
	Violations FieldViolations
}

func (e *ValidationError) Error() string {
	return ErrValidationFailed.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// AsValidation extracts a ValidationError from an error chain
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
