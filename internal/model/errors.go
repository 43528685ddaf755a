package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases.
// Use errors.Is() to check against these.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUpstreamError  = errors.New("upstream error")
	ErrValidation     = errors.New("validation failed")
	ErrMaintenance    = errors.New("storefront under maintenance")
)

// APIError represents a structured error for API responses.
// Implements error interface and supports unwrapping.
type APIError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	StatusCode int               `json:"-"` // HTTP status, not serialized
	Err        error             `json:"-"` // Wrapped error, not serialized
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a 404 error for missing resources.
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: 404,
		Err:        ErrNotFound,
	}
}

// NewValidationError creates a 400 error for malformed input.
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:       "VALIDATION_ERROR",
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
		StatusCode: 400,
		Err:        ErrInvalidRequest,
	}
}

// NewFormError creates a 422 error carrying per-field messages.
// Used when a form was well-formed but failed its field rules.
func NewFormError(form string, fields map[string]string) *APIError {
	return &APIError{
		Code:       "FORM_INVALID",
		Message:    fmt.Sprintf("%s has %d invalid field(s)", form, len(fields)),
		Fields:     fields,
		StatusCode: 422,
		Err:        ErrValidation,
	}
}

// NewUnauthorizedError creates a 401 error for auth failures.
func NewUnauthorizedError(reason string) *APIError {
	return &APIError{
		Code:       "UNAUTHORIZED",
		Message:    reason,
		StatusCode: 401,
		Err:        ErrUnauthorized,
	}
}

// NewUpstreamError creates a 502 error for backend failures.
func NewUpstreamError(service string, err error) *APIError {
	return &APIError{
		Code:       "UPSTREAM_ERROR",
		Message:    fmt.Sprintf("%s request failed", service),
		StatusCode: 502,
		Err:        fmt.Errorf("%w: %v", ErrUpstreamError, err),
	}
}

// NewRejectedError creates a 422 error for an operation the backend refused
// with a shopper-facing message, e.g. a duplicate email on registration.
func NewRejectedError(message string) *APIError {
	return &APIError{
		Code:       "REJECTED",
		Message:    message,
		StatusCode: 422,
		Err:        ErrInvalidRequest,
	}
}

// NewMaintenanceError creates a 503 error while the backend reports an internal failure.
func NewMaintenanceError() *APIError {
	return &APIError{
		Code:       "MAINTENANCE",
		Message:    "the store is temporarily unavailable",
		StatusCode: 503,
		Err:        ErrMaintenance,
	}
}

// NewInternalError creates a 500 error for unexpected failures.
func NewInternalError(err error) *APIError {
	return &APIError{
		Code:       "INTERNAL_ERROR",
		Message:    "an internal error occurred",
		StatusCode: 500,
		Err:        err,
	}
}
