package handlers

import (
	"net/http"
	"time"

	"github.com/benvon/task-tracker/internal/middleware"
	"github.com/benvon/task-tracker/internal/telemetry"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

// RouterConfig wires the HTTP surface
type RouterConfig struct {
	Tasks         TaskService
	Authenticator middleware.Authenticator
	Sessions      SessionIssuer
	Health        *HealthChecker
	OpenAPI       *OpenAPIHandler
	// RateLimit wraps every task and auth route; nil disables limiting
	RateLimit func(http.Handler) http.Handler

	Logger          *zap.Logger
	AllowedOrigins  []string
	EnableHSTS      bool
	RequestTimeout  time.Duration
	MaxRequestBytes int64
	Tracing         bool
	ServiceName     string
}

// NewRouter builds the full handler chain.
//
// Outside the mux, in order: security headers, request logging, audit,
// panic recovery, CORS (per route family), body size, content type and
// timeout. Inside: tracing, then rate limiting and authentication per group.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if cfg.Tracing {
		name := cfg.ServiceName
		if name == "" {
			name = telemetry.DefaultServiceName
		}
		r.Use(otelmux.Middleware(name, otelmux.WithSpanNameFormatter(telemetry.SpanName)))
	}

	if cfg.Health != nil {
		r.HandleFunc("/healthz", cfg.Health.HealthCheck).Methods(http.MethodGet)
	}
	if cfg.OpenAPI != nil {
		cfg.OpenAPI.RegisterRoutes(r)
	}

	protect := func(sub *mux.Router, writeError middleware.ErrorWriter) {
		if cfg.RateLimit != nil {
			sub.Use(cfg.RateLimit)
		}
		sub.Use(middleware.Auth(cfg.Authenticator, logger, writeError))
	}

	taskHandler := NewTaskHandler(cfg.Tasks, logger)

	api := r.PathPrefix("/api/v1").Subrouter()

	if cfg.Sessions != nil {
		authRouter := api.PathPrefix("/auth").Subrouter()
		protect(authRouter, middleware.WriteEnvelopeError)
		NewAuthHandler(cfg.Sessions, logger).RegisterRoutes(authRouter)
	}

	tasksRouter := api.PathPrefix("/tasks").Subrouter()
	protect(tasksRouter, middleware.WriteEnvelopeError)
	taskHandler.RegisterRoutes(tasksRouter)

	legacyRouter := r.MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
		return IsLegacyPath(req.URL.Path)
	}).Subrouter()
	protect(legacyRouter, WriteLegacyError)
	taskHandler.RegisterLegacyRoutes(legacyRouter)

	var h http.Handler = r
	h = middleware.Timeout(cfg.RequestTimeout)(h)
	h = middleware.ContentType(WriteError)(h)
	h = middleware.MaxRequestSize(cfg.MaxRequestBytes, WriteError)(h)
	h = corsByFamily(middleware.CORS(cfg.AllowedOrigins), middleware.LegacyCORS(), h)
	h = middleware.ErrorHandler(logger, WriteError)(h)
	h = middleware.Audit(logger)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.SecurityHeaders(cfg.EnableHSTS)(h)
	return h
}

// corsByFamily applies the permissive legacy policy to the function-style
// routes and the configured origins everywhere else
func corsByFamily(api, legacy func(http.Handler) http.Handler, next http.Handler) http.Handler {
	apiHandler := api(next)
	legacyHandler := legacy(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsLegacyPath(r.URL.Path) {
			legacyHandler.ServeHTTP(w, r)
			return
		}
		apiHandler.ServeHTTP(w, r)
	})
}
