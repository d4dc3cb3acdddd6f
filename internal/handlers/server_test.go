package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benvon/task-tracker/api"
	"github.com/benvon/task-tracker/internal/database"
	"github.com/benvon/task-tracker/internal/services/auth"
	"github.com/benvon/task-tracker/internal/services/tasks"
	"go.uber.org/zap"
)

const testSecret = "handlers-test-secret"

type testServer struct {
	handler  http.Handler
	store    *database.MemoryTaskStore
	sessions *auth.SessionTokens
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	sessions, err := auth.NewSessionTokens(testSecret, "", "", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionTokens: %v", err)
	}
	openAPI, err := NewOpenAPIHandler(api.OpenAPISpec)
	if err != nil {
		t.Fatalf("NewOpenAPIHandler: %v", err)
	}

	store := database.NewMemoryTaskStore()
	service := tasks.NewService(store, tasks.WithLogger(zap.NewNop()))

	h := NewRouter(RouterConfig{
		Tasks:          service,
		Authenticator:  auth.NewAuthenticator(sessions),
		Sessions:       sessions,
		Health:         NewHealthChecker(HealthCheck{Name: "store", Check: store.PingContext}),
		OpenAPI:        openAPI,
		Logger:         zap.NewNop(),
		AllowedOrigins: []string{"https://app.example.com"},
		RequestTimeout: 5 * time.Second,
	})
	return &testServer{handler: h, store: store, sessions: sessions}
}

func (s *testServer) token(t *testing.T, uid string) string {
	t.Helper()
	token, _, err := s.sessions.Issue(uid, uid+"@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

// envelope is the /api/v1 response shape
type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
