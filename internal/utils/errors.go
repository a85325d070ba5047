package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies recoverable engine failures so callers can decide
// how to present them without string matching.
type ErrorKind string

const (
	// KindMissingData indicates a required table or column is absent or empty.
	KindMissingData ErrorKind = "missing_data"
	// KindInsufficientData indicates a statistical precondition is not met,
	// e.g. fewer than two points for a regression fit.
	KindInsufficientData ErrorKind = "insufficient_data"
	// KindExternalUnavailable indicates an optional external collaborator
	// (e.g. the insight provider) failed or is not configured.
	KindExternalUnavailable ErrorKind = "external_unavailable"
)

// EngineError represents a recoverable failure from an analytics engine.
type EngineError struct {
	Kind    ErrorKind
	Message string
}

// Error returns the error message string.
func (e *EngineError) Error() string {
	return e.Message
}

// NewMissingDataError creates an EngineError of kind missing_data.
func NewMissingDataError(format string, args ...interface{}) error {
	return &EngineError{Kind: KindMissingData, Message: fmt.Sprintf(format, args...)}
}

// NewInsufficientDataError creates an EngineError of kind insufficient_data.
func NewInsufficientDataError(format string, args ...interface{}) error {
	return &EngineError{Kind: KindInsufficientData, Message: fmt.Sprintf(format, args...)}
}

// NewExternalUnavailableError creates an EngineError of kind external_unavailable.
func NewExternalUnavailableError(format string, args ...interface{}) error {
	return &EngineError{Kind: KindExternalUnavailable, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from an error chain.
func KindOf(err error) (ErrorKind, bool) {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Kind, true
	}
	return "", false
}

// IsMissingData reports whether err is a missing_data engine error.
func IsMissingData(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindMissingData
}

// IsInsufficientData reports whether err is an insufficient_data engine error.
func IsInsufficientData(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindInsufficientData
}

// ValidationError represents an error occurring during input validation.
type ValidationError struct {
	Message string
}

// Error returns the error message string.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError with a specific message.
func NewValidationError(message string) error {
	return &ValidationError{
		Message: message,
	}
}

// NewValidationErrorf creates a new ValidationError with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
