// Package apperrors defines the error taxonomy shared by the store, service,
// and transport layers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates the referenced task does not exist (or is soft-deleted)
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates a valid identity acting on a resource it does not own
	ErrForbidden = errors.New("forbidden")
)

// ValidationError is returned when required input is malformed.
// It is raised before any store access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validation builds a ValidationError with a formatted reason
func Validation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// AuthenticationError is returned when a credential is missing, invalid, or expired.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Authentication builds an AuthenticationError wrapping cause
func Authentication(reason string, cause error) error {
	return &AuthenticationError{Reason: reason, Err: cause}
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsAuthentication reports whether err is (or wraps) an AuthenticationError
func IsAuthentication(err error) bool {
	var a *AuthenticationError
	return errors.As(err, &a)
}

// HTTPStatus maps an error to the HTTP status code callers should see
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case IsAuthentication(err):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to expose to a client.
// Infrastructure errors are replaced with a generic message.
func PublicMessage(err error) string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Reason
	}
	var a *AuthenticationError
	if errors.As(err, &a) {
		return a.Reason
	}
	switch {
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	default:
		return "Internal server error"
	}
}
