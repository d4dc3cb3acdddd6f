package middleware

import (
	"net/http"

	logpkg "github.com/benvon/task-tracker/internal/logger"
	"github.com/benvon/task-tracker/internal/request"
	"go.uber.org/zap"
)

// Audit logs security-related responses: failed authentication or
// authorization and rate limit violations
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			fields := func() []zap.Field {
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
				}
				if id := request.Identity(r); id != nil {
					fields = append(fields, zap.String("owner_uid", logpkg.SanitizeUserID(id.UID)))
				}
				return fields
			}

			switch wrapped.statusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				logger.Warn("security_event", append(fields(), zap.Int("status_code", wrapped.statusCode))...)
			case http.StatusTooManyRequests:
				logger.Warn("rate_limit_violation", fields()...)
			}
		})
	}
}
