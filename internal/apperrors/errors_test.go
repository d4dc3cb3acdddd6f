package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: http.StatusOK},
		{name: "validation", err: Validation("Title must be at least %d characters", 2), expected: http.StatusBadRequest},
		{name: "wrapped validation", err: fmt.Errorf("create: %w", Validation("bad")), expected: http.StatusBadRequest},
		{name: "authentication", err: Authentication("Invalid or expired token", errors.New("exp")), expected: http.StatusUnauthorized},
		{name: "forbidden", err: fmt.Errorf("update: %w", ErrForbidden), expected: http.StatusForbidden},
		{name: "not found", err: fmt.Errorf("task abc: %w", ErrNotFound), expected: http.StatusNotFound},
		{name: "infrastructure", err: errors.New("connection refused"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HTTPStatus(tt.err); got != tt.expected {
				t.Errorf("HTTPStatus(%v) = %d, expected %d", tt.err, got, tt.expected)
			}
		})
	}
}

func TestPublicMessage(t *testing.T) {
	t.Parallel()

	if msg := PublicMessage(Validation("Missing ids[]")); msg != "Missing ids[]" {
		t.Errorf("Expected validation reason, got %q", msg)
	}
	if msg := PublicMessage(Authentication("Invalid or expired token", errors.New("signature mismatch"))); msg != "Invalid or expired token" {
		t.Errorf("Expected authentication reason without cause, got %q", msg)
	}
	if msg := PublicMessage(errors.New("pq: password authentication failed")); msg != "Internal server error" {
		t.Errorf("Expected generic message for infrastructure errors, got %q", msg)
	}
}

func TestAuthenticationError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("token expired")
	err := Authentication("Invalid or expired token", cause)
	if !errors.Is(err, cause) {
		t.Error("Expected AuthenticationError to unwrap to its cause")
	}
	if IsValidation(err) {
		t.Error("AuthenticationError must not be classified as validation")
	}
}
