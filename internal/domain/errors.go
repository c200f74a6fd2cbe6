package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by the review
// pipeline and its stores to communicate domain-specific error conditions.
// -----------------------------------------------------------------------------

// Review errors
var (
	ErrQuotaExceeded       = errors.New("free review limit reached")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrUnsupportedMode     = errors.New("unsupported review mode")
)

// History errors
var (
	ErrReviewRecordNotFound = errors.New("review record not found")
	ErrHistoryUnavailable   = errors.New("review history unavailable")
)

// General errors
var (
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError describes the single request rule that was violated.
// It unwraps to ErrInvalidInput and, when set, a more specific cause.
type ValidationError struct {
	Message string
	cause   error
}

// NewValidationError creates a validation error with a human-readable message
func NewValidationError(message string, cause error) *ValidationError {
	return &ValidationError{Message: message, cause: cause}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap allows errors.Is to match both ErrInvalidInput and the cause
func (e *ValidationError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrInvalidInput, e.cause}
	}
	return []error{ErrInvalidInput}
}
