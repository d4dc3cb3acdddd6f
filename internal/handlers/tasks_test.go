package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/benvon/task-tracker/internal/models"
)

func TestTaskRoutes_EndToEnd(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	token := s.token(t, "owner-a")

	w := s.do(t, http.MethodPost, "/api/v1/tasks", token, `{"title":"Buy milk","status":"Todo","priority":"Low"}`)
	expectStatus(t, w, http.StatusCreated)
	created := decode[envelope[CreateTaskResponse]](t, w)
	if !created.Success || created.Data.ID == "" {
		t.Fatalf("Expected created id, got %+v", created)
	}
	id := created.Data.ID

	w = s.do(t, http.MethodGet, "/api/v1/tasks?search=milk", token, "")
	expectStatus(t, w, http.StatusOK)
	page := decode[envelope[models.TaskPage]](t, w)
	if page.Data.Total != 1 || len(page.Data.Items) != 1 {
		t.Fatalf("Expected exactly one match, got %+v", page.Data)
	}
	if got := page.Data.Items[0]; got.ID != id || got.StatusRank != 1 || got.PriorityRank != 1 {
		t.Errorf("Unexpected listed task: %+v", got)
	}

	w = s.do(t, http.MethodPatch, "/api/v1/tasks/"+id, token, `{"status":"Done"}`)
	expectStatus(t, w, http.StatusOK)
	if ok := decode[envelope[OKResponse]](t, w); !ok.Data.OK {
		t.Errorf("Expected ok=true, got %+v", ok)
	}

	w = s.do(t, http.MethodGet, "/api/v1/tasks?status=Done", token, "")
	expectStatus(t, w, http.StatusOK)
	page = decode[envelope[models.TaskPage]](t, w)
	if len(page.Data.Items) != 1 || page.Data.Items[0].StatusRank != 3 {
		t.Fatalf("Expected the Done task with statusRank 3, got %+v", page.Data)
	}

	w = s.do(t, http.MethodDelete, "/api/v1/tasks/"+id, token, "")
	expectStatus(t, w, http.StatusOK)

	w = s.do(t, http.MethodGet, "/api/v1/tasks", token, "")
	expectStatus(t, w, http.StatusOK)
	if page := decode[envelope[models.TaskPage]](t, w); page.Data.Total != 0 || len(page.Data.Items) != 0 {
		t.Errorf("Expected empty listing after delete, got %+v", page.Data)
	}

	w = s.do(t, http.MethodGet, "/api/v1/tasks/"+id, token, "")
	expectStatus(t, w, http.StatusNotFound)

	stored, err := s.store.Get(t.Context(), id)
	if err != nil {
		t.Fatalf("Expected the record to remain in the store: %v", err)
	}
	if !stored.IsDeleted {
		t.Error("Expected stored record to be marked deleted")
	}
}

func TestTaskRoutes_OwnerScoping(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	alice := s.token(t, "alice")
	bob := s.token(t, "bob")

	w := s.do(t, http.MethodPost, "/api/v1/tasks", alice, `{"title":"Shared title"}`)
	expectStatus(t, w, http.StatusCreated)
	id := decode[envelope[CreateTaskResponse]](t, w).Data.ID

	w = s.do(t, http.MethodPost, "/api/v1/tasks", bob, `{"title":"Shared title"}`)
	expectStatus(t, w, http.StatusCreated)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "get", method: http.MethodGet, path: "/api/v1/tasks/" + id, want: http.StatusForbidden},
		{name: "update", method: http.MethodPatch, path: "/api/v1/tasks/" + id, body: `{"title":"Hijacked"}`, want: http.StatusForbidden},
		{name: "delete", method: http.MethodDelete, path: "/api/v1/tasks/" + id, want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, bob, tt.body)
			expectStatus(t, w, tt.want)
			if body := decode[envelope[any]](t, w); body.Success || body.Message != "Forbidden" {
				t.Errorf("Unexpected error body: %+v", body)
			}
		})
	}

	w = s.do(t, http.MethodPost, "/api/v1/tasks/bulk-done", bob, fmt.Sprintf(`{"ids":[%q]}`, id))
	expectStatus(t, w, http.StatusOK)
	if updated := decode[envelope[OKResponse]](t, w).Data.Updated; updated == nil || *updated != 0 {
		t.Errorf("Expected foreign id to be skipped, got %v", updated)
	}

	w = s.do(t, http.MethodGet, "/api/v1/tasks?search=shared", bob, "")
	expectStatus(t, w, http.StatusOK)
	page := decode[envelope[models.TaskPage]](t, w)
	if page.Data.Total != 1 || page.Data.Items[0].OwnerUID != "bob" {
		t.Errorf("Expected only bob's task, got %+v", page.Data)
	}

	task, err := s.store.Get(t.Context(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if task.Title != "Shared title" || task.Status != models.TaskStatusTodo || task.IsDeleted {
		t.Errorf("Alice's task was mutated: %+v", task)
	}
}

func TestTaskRoutes_Errors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	token := s.token(t, "owner-a")

	tests := []struct {
		name        string
		method      string
		path        string
		token       string
		body        string
		contentType string
		want        int
		wantMessage string
	}{
		{name: "no token", method: http.MethodGet, path: "/api/v1/tasks", want: http.StatusUnauthorized, wantMessage: "Missing Authorization: Bearer <token>"},
		{name: "bad token", method: http.MethodGet, path: "/api/v1/tasks", token: "nope", want: http.StatusUnauthorized, wantMessage: "Invalid token"},
		{name: "short title", method: http.MethodPost, path: "/api/v1/tasks", token: token, body: `{"title":" a "}`, want: http.StatusBadRequest, wantMessage: "Title must be at least 2 characters"},
		{name: "bad status", method: http.MethodPost, path: "/api/v1/tasks", token: token, body: `{"title":"ok title","status":"Blocked"}`, want: http.StatusBadRequest},
		{name: "bad due date", method: http.MethodPost, path: "/api/v1/tasks", token: token, body: `{"title":"ok title","dueDate":"someday"}`, want: http.StatusBadRequest},
		{name: "malformed body", method: http.MethodPost, path: "/api/v1/tasks", token: token, body: `{"title":`, want: http.StatusBadRequest, wantMessage: "Invalid request body"},
		{name: "empty bulk", method: http.MethodPost, path: "/api/v1/tasks/bulk-done", token: token, body: `{"ids":[]}`, want: http.StatusBadRequest, wantMessage: "Missing ids[]"},
		{name: "unknown task", method: http.MethodPatch, path: "/api/v1/tasks/does-not-exist", token: token, body: `{"title":"new title"}`, want: http.StatusNotFound, wantMessage: "Not found"},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/nothing", token: token, want: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPut, path: "/api/v1/tasks", token: token, want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := s.do(t, tt.method, tt.path, tt.token, tt.body)
			expectStatus(t, w, tt.want)
			body := decode[envelope[any]](t, w)
			if body.Success {
				t.Error("Expected success=false")
			}
			if tt.wantMessage != "" && body.Message != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, body.Message)
			}
		})
	}
}

func TestTaskRoutes_ListNormalizesParameters(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	token := s.token(t, "owner-a")
	for i := range 12 {
		w := s.do(t, http.MethodPost, "/api/v1/tasks", token, fmt.Sprintf(`{"title":"Task %02d"}`, i))
		expectStatus(t, w, http.StatusCreated)
	}

	tests := []struct {
		name      string
		query     string
		wantItems int
		wantFirst string
	}{
		{name: "defaults", query: "", wantItems: 10},
		{name: "page size clamped", query: "?pageSize=500", wantItems: 12},
		{name: "garbage page size", query: "?pageSize=abc", wantItems: 10},
		{name: "second page", query: "?page=2", wantItems: 2},
		{name: "page past end", query: "?page=99", wantItems: 0},
		{name: "title ascending", query: "?sortField=title&sortOrder=ascend&pageSize=1", wantItems: 1, wantFirst: "Task 00"},
		{name: "unknown sort field", query: "?sortField=bogus", wantItems: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := s.do(t, http.MethodGet, "/api/v1/tasks"+tt.query, token, "")
			expectStatus(t, w, http.StatusOK)
			page := decode[envelope[models.TaskPage]](t, w).Data
			if page.Total != 12 {
				t.Errorf("Expected total 12, got %d", page.Total)
			}
			if len(page.Items) != tt.wantItems {
				t.Errorf("Expected %d items, got %d", tt.wantItems, len(page.Items))
			}
			if tt.wantFirst != "" && len(page.Items) > 0 && page.Items[0].Title != tt.wantFirst {
				t.Errorf("Expected first %q, got %q", tt.wantFirst, page.Items[0].Title)
			}
		})
	}
}

func TestTaskRoutes_UpdateDueDate(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	token := s.token(t, "owner-a")

	w := s.do(t, http.MethodPost, "/api/v1/tasks", token, `{"title":"Dated","dueDate":"2026-03-01"}`)
	expectStatus(t, w, http.StatusCreated)
	id := decode[envelope[CreateTaskResponse]](t, w).Data.ID

	get := func() models.TaskOutput {
		w := s.do(t, http.MethodGet, "/api/v1/tasks/"+id, token, "")
		expectStatus(t, w, http.StatusOK)
		return decode[envelope[models.TaskOutput]](t, w).Data
	}

	if due := get().DueDate; due == nil || *due != "2026-03-01T00:00:00.000Z" {
		t.Fatalf("Expected canonical due date, got %v", due)
	}

	expectStatus(t, s.do(t, http.MethodPatch, "/api/v1/tasks/"+id, token, `{"title":"Renamed"}`), http.StatusOK)
	if due := get().DueDate; due == nil {
		t.Fatal("Absent dueDate must leave the due date unchanged")
	}

	expectStatus(t, s.do(t, http.MethodPatch, "/api/v1/tasks/"+id, token, `{"dueDate":null}`), http.StatusOK)
	out := get()
	if out.DueDate != nil {
		t.Errorf("Explicit null must clear the due date, got %v", *out.DueDate)
	}
	if out.Title != "Renamed" {
		t.Errorf("Expected title Renamed, got %q", out.Title)
	}
}

func TestTaskRoutes_Stats(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	token := s.token(t, "owner-a")
	for _, body := range []string{
		`{"title":"One","status":"Done"}`,
		`{"title":"Two"}`,
		`{"title":"Three","dueDate":"2000-01-01"}`,
	} {
		expectStatus(t, s.do(t, http.MethodPost, "/api/v1/tasks", token, body), http.StatusCreated)
	}

	w := s.do(t, http.MethodGet, "/api/v1/tasks/stats?period=30D", token, "")
	expectStatus(t, w, http.StatusOK)
	stats := decode[envelope[models.TaskStats]](t, w).Data
	if stats.Total != 3 || stats.CompletionRate != 33 {
		t.Errorf("Expected total 3 and 33%% complete, got %+v", stats)
	}
	if stats.Overdue != 1 || len(stats.OverdueTasks) != 1 {
		t.Errorf("Expected one overdue task, got %d", stats.Overdue)
	}
	if !strings.HasPrefix(stats.OverdueTasks[0].Title, "Three") {
		t.Errorf("Unexpected overdue task %q", stats.OverdueTasks[0].Title)
	}
}
