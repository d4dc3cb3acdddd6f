package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// legacyRoutes are the function-style endpoints the single-page app
// calls, with the one method each accepts
var legacyRoutes = map[string]string{
	"/listTasks":      http.MethodGet,
	"/getTaskById":    http.MethodGet,
	"/createTask":     http.MethodPost,
	"/updateTask":     http.MethodPatch,
	"/softDeleteTask": http.MethodDelete,
	"/bulkMarkDone":   http.MethodPost,
	"/getTaskStats":   http.MethodGet,
}

// IsLegacyPath reports whether path is one of the function-style routes
func IsLegacyPath(path string) bool {
	_, ok := legacyRoutes[path]
	return ok
}

// RegisterLegacyRoutes registers the function-style routes. Bodies are not
// enveloped and errors are {message}.
func (h *TaskHandler) RegisterLegacyRoutes(r *mux.Router) {
	res := legacyResponder
	handlers := map[string]http.HandlerFunc{
		"/listTasks":      h.list(res),
		"/getTaskById":    h.get(res),
		"/createTask":     h.create(res),
		"/updateTask":     h.update(res),
		"/softDeleteTask": h.softDelete(res),
		"/bulkMarkDone":   h.bulkMarkDone(res),
		"/getTaskStats":   h.stats(res),
	}
	for path, handler := range handlers {
		r.Handle(path, legacyMethod(legacyRoutes[path], handler))
	}
}

// legacyMethod answers OPTIONS with 204 and any other wrong method with 405
func legacyMethod(method string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case method:
			next.ServeHTTP(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusNoContent)
		default:
			WriteLegacyError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
}

// WriteError picks the error shape of the route family path belongs to. It
// satisfies middleware.ErrorWriter for middleware shared by both families.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if IsLegacyPath(r.URL.Path) {
		WriteLegacyError(w, r, status, message)
		return
	}
	envelopeResponder.err(w, r, status, message)
}
