package middleware

import (
	"context"
	"net/http"

	"github.com/benvon/task-tracker/internal/apperrors"
	logpkg "github.com/benvon/task-tracker/internal/logger"
	"github.com/benvon/task-tracker/internal/models"
	"github.com/benvon/task-tracker/internal/request"
	"github.com/benvon/task-tracker/internal/services/auth"
	"go.uber.org/zap"
)

// Authenticator resolves a bearer token into the caller's identity
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// Auth rejects requests without a valid bearer token and attaches the
// resolved identity to the request context. A nil writeError uses the
// enveloped error shape.
func Auth(authn Authenticator, logger *zap.Logger, writeError ErrorWriter) func(http.Handler) http.Handler {
	if writeError == nil {
		writeError = WriteEnvelopeError
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// A malformed header is treated the same as a missing one
			token, _ := auth.BearerToken(r.Header.Get("Authorization"))

			identity, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				logger.Debug("token_rejected",
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("error", logpkg.SanitizeError(err)),
				)
				writeError(w, r, http.StatusUnauthorized, apperrors.PublicMessage(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithIdentity(r.Context(), identity)))
		})
	}
}
