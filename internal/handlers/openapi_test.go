package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/benvon/task-tracker/api"
)

func TestOpenAPIHandler(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	t.Run("yaml", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/openapi.yaml", "", "")
		expectStatus(t, w, http.StatusOK)
		if !bytes.Equal(w.Body.Bytes(), api.OpenAPISpec) {
			t.Error("Expected the embedded document verbatim")
		}
	})

	t.Run("json", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/openapi.json", "", "")
		expectStatus(t, w, http.StatusOK)

		var doc map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
			t.Fatalf("Invalid JSON document: %v", err)
		}
		paths, ok := doc["paths"].(map[string]any)
		if !ok {
			t.Fatal("Expected a paths object")
		}
		for _, p := range []string{"/api/v1/tasks", "/api/v1/tasks/{id}", "/healthz"} {
			if _, ok := paths[p]; !ok {
				t.Errorf("Expected path %s in the document", p)
			}
		}
	})
}

func TestNewOpenAPIHandler_InvalidDocument(t *testing.T) {
	t.Parallel()

	if _, err := NewOpenAPIHandler([]byte("paths: [unterminated")); err == nil {
		t.Error("Expected an error for malformed YAML")
	}
}
