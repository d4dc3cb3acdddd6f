package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

const healthCheckTimeout = 5 * time.Second

// HealthCheck is one dependency probe run by extended health checks
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthChecker handles health check requests
type HealthChecker struct {
	checks []HealthCheck
}

// NewHealthChecker creates a health checker over the configured dependencies.
// Checks with a nil func are skipped.
func NewHealthChecker(checks ...HealthCheck) *HealthChecker {
	h := &HealthChecker{}
	for _, c := range checks {
		if c.Check != nil {
			h.checks = append(h.checks, c)
		}
	}
	sort.Slice(h.checks, func(i, j int) bool { return h.checks[i].Name < h.checks[j].Name })
	return h
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint. mode=extended probes every
// dependency and answers 503 if any of them fails.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	statusCode := http.StatusOK

	if r.URL.Query().Get("mode") == "extended" {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		response.Checks = make(map[string]string, len(h.checks))
		for _, c := range h.checks {
			if err := c.Check(ctx); err != nil {
				response.Status = "unhealthy"
				// Error text can carry connection strings
				response.Checks[c.Name] = "unhealthy"
				continue
			}
			response.Checks[c.Name] = "healthy"
		}
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
