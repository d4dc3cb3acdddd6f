package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		handlerStatus int
		body          string
		wantPath      string
	}{
		{name: "GET request", method: "GET", path: "/healthz", handlerStatus: http.StatusOK, wantPath: "/healthz"},
		{name: "POST request", method: "POST", path: "/api/v1/tasks", handlerStatus: http.StatusCreated, body: `{"id":"x"}`, wantPath: "/api/v1/tasks"},
		{name: "404 request", method: "GET", path: "/notfound", handlerStatus: http.StatusNotFound, wantPath: "/notfound"},
		{name: "encoded control characters", method: "GET", path: "/a%0Ab", handlerStatus: http.StatusOK, wantPath: "/a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.InfoLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
				if tt.body != "" {
					_, _ = w.Write([]byte(tt.body))
				}
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			Logging(zap.New(core))(handler).ServeHTTP(w, req)

			if w.Code != tt.handlerStatus {
				t.Errorf("Expected status %d, got %d", tt.handlerStatus, w.Code)
			}

			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("Expected one http_request entry, got %d", len(entries))
			}
			fields := entries[0].ContextMap()
			if got := fields["status_code"]; got != int64(tt.handlerStatus) {
				t.Errorf("Expected status_code %d, got %v", tt.handlerStatus, got)
			}
			if got := fields["path"]; got != tt.wantPath {
				t.Errorf("Expected path %q, got %v", tt.wantPath, got)
			}
			if got := fields["bytes"]; got != int64(len(tt.body)) {
				t.Errorf("Expected bytes %d, got %v", len(tt.body), got)
			}
		})
	}
}

func TestStatusRecorder_ImplicitOK(t *testing.T) {
	t.Parallel()

	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	_, _ = rec.Write([]byte("hello"))
	rec.WriteHeader(http.StatusTeapot)

	if rec.statusCode != http.StatusOK {
		t.Errorf("Expected first write to fix status at 200, got %d", rec.statusCode)
	}
	if rec.bytes != 5 {
		t.Errorf("Expected 5 bytes, got %d", rec.bytes)
	}
}
