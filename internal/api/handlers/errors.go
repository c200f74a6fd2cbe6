package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/codementor/internal/api/middleware"
	"github.com/felixgeelhaar/codementor/internal/domain"
)

// Error codes carried in the "code" field of error bodies
const (
	CodeLimitReached = "LIMIT_REACHED"
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
)

// MsgLimitReached is returned once a caller used up its free reviews
const MsgLimitReached = "Free review limit reached. Subscribe to continue."

// MsgNotFound is returned for unknown routes
const MsgNotFound = "The requested resource was not found"

// APIError is the JSON body of every error response
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	cause   error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// NewAPIError creates a new API error
func NewAPIError(code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// WithCause wraps an underlying error; the cause is logged, never returned
func (e *APIError) WithCause(err error) *APIError {
	e.cause = err
	return e
}

// ErrLimitReached is the payment-required error for an exhausted quota
func ErrLimitReached() *APIError {
	return NewAPIError(CodeLimitReached, MsgLimitReached)
}

// ErrValidation reports the violated request rule verbatim
func ErrValidation(message string, cause error) *APIError {
	return NewAPIError(CodeValidation, message).WithCause(cause)
}

// ErrRouteNotFound is the catch-all 404
func ErrRouteNotFound() *APIError {
	return &APIError{Message: MsgNotFound}
}

// MsgHistoryUnavailable is returned when the history store cannot be read
const MsgHistoryUnavailable = "Review history is unavailable."

// ErrHistoryUnavailable is the 503 for a failing history store. The cause
// wraps domain.ErrHistoryUnavailable.
func ErrHistoryUnavailable(cause error) *APIError {
	return NewAPIError(CodeUnavailable, MsgHistoryUnavailable).
		WithCause(fmt.Errorf("%w: %w", domain.ErrHistoryUnavailable, cause))
}

func ErrInternalWith(message string, cause error) *APIError {
	return NewAPIError(CodeInternal, message).WithCause(cause)
}

// WriteError writes an error response and logs it: Warn for 4xx, Error for 5xx
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, apiErr *APIError) {
	logAttrs := []any{
		"code", apiErr.Code,
		"message", apiErr.Message,
		"status", statusCode,
		"method", r.Method,
		"path", r.URL.Path,
	}

	if apiErr.cause != nil {
		logAttrs = append(logAttrs, "cause", apiErr.cause.Error())
	}

	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		logAttrs = append(logAttrs, "request_id", requestID)
	}

	if statusCode >= 500 {
		slog.Error("api error", logAttrs...)
	} else if statusCode >= 400 {
		slog.Warn("api error", logAttrs...)
	}

	WriteJSON(w, statusCode, apiErr)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// NotFound writes the catch-all 404 body
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, http.StatusNotFound, ErrRouteNotFound())
}

func InternalError(w http.ResponseWriter, r *http.Request, message string, cause error) {
	WriteError(w, r, http.StatusInternalServerError, ErrInternalWith(message, cause))
}
