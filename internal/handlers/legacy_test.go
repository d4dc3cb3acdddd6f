package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/task-tracker/internal/models"
)

type legacyError struct {
	Message string `json:"message"`
}

func TestLegacyRoutes_Flow(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	token := s.token(t, "legacy-owner")

	w := s.do(t, http.MethodPost, "/createTask", token, `{"title":"Legacy task","priority":"High"}`)
	expectStatus(t, w, http.StatusCreated)
	id := decode[CreateTaskResponse](t, w).ID
	if id == "" {
		t.Fatal("Expected an id in the un-enveloped body")
	}

	w = s.do(t, http.MethodGet, "/getTaskById?id="+id, token, "")
	expectStatus(t, w, http.StatusOK)
	task := decode[models.TaskOutput](t, w)
	if task.Title != "Legacy task" || task.PriorityRank != 3 {
		t.Errorf("Unexpected task: %+v", task)
	}

	w = s.do(t, http.MethodPatch, "/updateTask?id="+id, token, `{"status":"InProgress"}`)
	expectStatus(t, w, http.StatusOK)
	if ok := decode[OKResponse](t, w); !ok.OK {
		t.Errorf("Expected ok=true, got %+v", ok)
	}

	w = s.do(t, http.MethodGet, "/listTasks?status=InProgress", token, "")
	expectStatus(t, w, http.StatusOK)
	page := decode[models.TaskPage](t, w)
	if page.Total != 1 || page.Items[0].ID != id {
		t.Errorf("Expected the updated task, got %+v", page)
	}

	w = s.do(t, http.MethodPost, "/bulkMarkDone", token, fmt.Sprintf(`{"ids":[%q,%q,"missing"]}`, id, id))
	expectStatus(t, w, http.StatusOK)
	if updated := decode[OKResponse](t, w).Updated; updated == nil || *updated != 1 {
		t.Errorf("Expected one task updated, got %v", updated)
	}

	w = s.do(t, http.MethodGet, "/getTaskStats", token, "")
	expectStatus(t, w, http.StatusOK)
	if stats := decode[models.TaskStats](t, w); stats.Total != 1 || stats.CompletionRate != 100 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	w = s.do(t, http.MethodDelete, "/softDeleteTask?id="+id, token, "")
	expectStatus(t, w, http.StatusOK)

	w = s.do(t, http.MethodGet, "/getTaskById?id="+id, token, "")
	expectStatus(t, w, http.StatusNotFound)
	if body := decode[legacyError](t, w); body.Message != "Not found" {
		t.Errorf("Expected message 'Not found', got %q", body.Message)
	}
}

func TestLegacyRoutes_Errors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	token := s.token(t, "legacy-owner")

	tests := []struct {
		name        string
		method      string
		path        string
		token       string
		body        string
		want        int
		wantMessage string
	}{
		{name: "missing token", method: http.MethodGet, path: "/listTasks", want: http.StatusUnauthorized, wantMessage: "Missing Authorization: Bearer <token>"},
		{name: "wrong method", method: http.MethodGet, path: "/createTask", token: token, want: http.StatusMethodNotAllowed, wantMessage: "Method not allowed"},
		{name: "missing id on get", method: http.MethodGet, path: "/getTaskById", token: token, want: http.StatusBadRequest, wantMessage: "Missing id"},
		{name: "missing id on update", method: http.MethodPatch, path: "/updateTask", token: token, body: `{"title":"New title"}`, want: http.StatusBadRequest, wantMessage: "Missing id"},
		{name: "missing id on delete", method: http.MethodDelete, path: "/softDeleteTask", token: token, want: http.StatusBadRequest, wantMessage: "Missing id"},
		{name: "empty bulk", method: http.MethodPost, path: "/bulkMarkDone", token: token, body: `{}`, want: http.StatusBadRequest, wantMessage: "Missing ids[]"},
		{name: "short title", method: http.MethodPost, path: "/createTask", token: token, body: `{"title":"x"}`, want: http.StatusBadRequest, wantMessage: "Title must be at least 2 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := s.do(t, tt.method, tt.path, tt.token, tt.body)
			expectStatus(t, w, tt.want)
			if body := decode[legacyError](t, w); body.Message != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, body.Message)
			}
		})
	}
}

func TestLegacyRoutes_CORS(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	t.Run("preflight from any origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/listTasks", nil)
		req.Header.Set("Origin", "https://anywhere.example.org")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := httptest.NewRecorder()
		s.handler.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent && w.Code != http.StatusOK {
			t.Fatalf("Expected successful preflight, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Expected Access-Control-Allow-Origin *, got %q", got)
		}
		if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
			t.Errorf("Expected Access-Control-Max-Age 3600, got %q", got)
		}
	})

	t.Run("api routes keep the configured origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", nil)
		req.Header.Set("Origin", "https://anywhere.example.org")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := httptest.NewRecorder()
		s.handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Expected no CORS grant for an unknown origin, got %q", got)
		}
	})

	t.Run("api routes allow the frontend", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		s.handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Errorf("Expected the frontend origin, got %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Expected credentials allowed, got %q", got)
		}
	})
}

func TestIsLegacyPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"/listTasks", true},
		{"/bulkMarkDone", true},
		{"/getTaskStats", true},
		{"/listTasks/extra", false},
		{"/api/v1/tasks", false},
		{"/", false},
	}
	for _, tt := range tests {
		if got := IsLegacyPath(tt.path); got != tt.want {
			t.Errorf("IsLegacyPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
