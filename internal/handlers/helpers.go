package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/benvon/task-tracker/internal/apperrors"
	logpkg "github.com/benvon/task-tracker/internal/logger"
	"go.uber.org/zap"
)

const maxErrorMessageLength = 200

// respondJSON sends an enveloped JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	_ = json.NewEncoder(w).Encode(response)
}

// respondJSONError sends an enveloped error response
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   truncate(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	_ = json.NewEncoder(w).Encode(response)
}

// writeLegacyJSON sends an un-enveloped JSON body
func writeLegacyJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteLegacyError renders {message} errors for the function-style routes.
// It satisfies middleware.ErrorWriter.
func WriteLegacyError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeLegacyJSON(w, status, map[string]string{"message": truncate(message)})
}

func truncate(message string) string {
	if len(message) > maxErrorMessageLength {
		return message[:maxErrorMessageLength] + "..."
	}
	return message
}

// errorStatus maps a service error to its status and client-safe message.
// Unexpected errors are logged here; their details never reach the client.
func errorStatus(logger *zap.Logger, r *http.Request, op string, err error) (int, string) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error(op+"_failed",
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
	}
	return status, apperrors.PublicMessage(err)
}

// decodeJSON reads a single JSON document from the body into dst. An empty
// body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	default:
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &requestTooLargeError{limit: maxBytesErr.Limit}
		}
		return apperrors.Validation("Invalid request body")
	}
}

type requestTooLargeError struct {
	limit int64
}

func (e *requestTooLargeError) Error() string {
	return fmt.Sprintf("Request body exceeds maximum size of %d bytes", e.limit)
}

// decodeStatus maps a decodeJSON error to a status code
func decodeStatus(err error) int {
	var tooLarge *requestTooLargeError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
