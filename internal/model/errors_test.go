package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "without wrapped error",
			err: &APIError{
				Code:    "TEST_ERROR",
				Message: "something went wrong",
			},
			want: "TEST_ERROR: something went wrong",
		},
		{
			name: "with wrapped error",
			err: &APIError{
				Code:    "TEST_ERROR",
				Message: "something went wrong",
				Err:     errors.New("underlying cause"),
			},
			want: "TEST_ERROR: something went wrong (underlying cause)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewFormError(t *testing.T) {
	err := NewFormError("billing address", map[string]string{
		"postcode":  "Postcode must contain digits only",
		"street[0]": "Please enter your house number",
	})

	if err.Code != "FORM_INVALID" {
		t.Errorf("Code = %q, want FORM_INVALID", err.Code)
	}
	if err.StatusCode != 422 {
		t.Errorf("StatusCode = %d, want 422", err.StatusCode)
	}
	if err.Message != "billing address has 2 invalid field(s)" {
		t.Errorf("Message = %q", err.Message)
	}
	if len(err.Fields) != 2 {
		t.Errorf("Fields len = %d, want 2", len(err.Fields))
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("error should wrap ErrValidation sentinel")
	}
}

func TestNewUpstreamError(t *testing.T) {
	underlying := errors.New("connection refused")
	err := NewUpstreamError("graphql", underlying)

	if err.Message != "graphql request failed" {
		t.Errorf("Message = %q, want %q", err.Message, "graphql request failed")
	}
	if err.StatusCode != 502 {
		t.Errorf("StatusCode = %d, want %d", err.StatusCode, 502)
	}
	if !errors.Is(err, ErrUpstreamError) {
		t.Error("error should wrap ErrUpstreamError sentinel")
	}
}

// TestErrorsIs verifies that errors.Is() works with all sentinel errors.
func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		sentinel error
	}{
		{"NotFound", NewNotFoundError("x"), ErrNotFound},
		{"Validation", NewValidationError("x", "y"), ErrInvalidRequest},
		{"Form", NewFormError("x", nil), ErrValidation},
		{"Unauthorized", NewUnauthorizedError("x"), ErrUnauthorized},
		{"Upstream", NewUpstreamError("x", nil), ErrUpstreamError},
		{"Rejected", NewRejectedError("x"), ErrInvalidRequest},
		{"Maintenance", NewMaintenanceError(), ErrMaintenance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%T, %v) = false, want true", tt.err, tt.sentinel)
			}
		})
	}
}

func TestAPIErrorAs(t *testing.T) {
	var err error = NewNotFoundError("store")
	wrapped := fmt.Errorf("outer: %w", err)
	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("errors.As should find *APIError in wrapped error")
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"99.00", 99},
		{"1234.567", 1234.57},
		{"-10.5", -10.5},
		{"abc", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseMoney(tt.in, "PHP")
			if got.Value != tt.want {
				t.Errorf("ParseMoney(%q).Value = %v, want %v", tt.in, got.Value, tt.want)
			}
			if got.Currency != "PHP" {
				t.Errorf("Currency = %q, want PHP", got.Currency)
			}
		})
	}
}
