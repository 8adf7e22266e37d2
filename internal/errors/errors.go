// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrAlertNotFound = errors.New("alert not found")
	ErrNotConfigured = errors.New("not configured")
	ErrNoAccount     = errors.New("no quote-provider account available")
)

// ValidationError represents a user-input validation error. It is rejected
// synchronously at creation and never enters the store.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UpstreamError represents a failure talking to the quote or notification
// provider. It is transient by contract: callers degrade to "no data" and
// retry on the next poll cycle.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream error [%s]: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("upstream error [%s]: status %d: %s", e.Provider, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new UpstreamError.
func NewUpstreamError(provider string, status int, body string, err error) *UpstreamError {
	return &UpstreamError{
		Provider: provider,
		Status:   status,
		Body:     body,
		Err:      err,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
