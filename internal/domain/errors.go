package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// ErrStorage marks a cache read or write failure. Callers treat it as a
	// cache miss.
	ErrStorage = errors.New("storage error")

	// ErrNetworkUnavailable marks a missing connection or a timeout talking to
	// the remote dictionary.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrServiceError marks a non-2xx response or a malformed payload.
	ErrServiceError = errors.New("dictionary service error")

	// ErrWordNotFound is returned when the remote dictionary has no entry for
	// the word. It also matches ErrServiceError.
	ErrWordNotFound = fmt.Errorf("word not found: %w", ErrServiceError)

	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrRecognizer       = errors.New("speech recognizer error")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}
