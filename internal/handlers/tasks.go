package handlers

import (
	"context"
	"net/http"

	"github.com/benvon/task-tracker/internal/models"
	"github.com/benvon/task-tracker/internal/request"
	"github.com/benvon/task-tracker/internal/services/tasks"
	"github.com/benvon/task-tracker/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TaskService is the task API consumed by the handlers. *tasks.Service satisfies it.
type TaskService interface {
	List(ctx context.Context, ownerUID string, q tasks.Query) (models.TaskPage, error)
	Get(ctx context.Context, ownerUID, id string) (*models.TaskOutput, error)
	Create(ctx context.Context, ownerUID string, f models.TaskFields) (string, error)
	Update(ctx context.Context, requesterUID, id string, p models.TaskPatch) error
	SoftDelete(ctx context.Context, requesterUID, id string) error
	BulkMarkDone(ctx context.Context, requesterUID string, ids []string) (int, error)
	Stats(ctx context.Context, ownerUID string, q tasks.StatsQuery) (*models.TaskStats, error)
}

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Title       string              `json:"title" validate:"max=500"`
	Description string              `json:"description" validate:"max=10000"`
	Status      models.TaskStatus   `json:"status" validate:"omitempty,task_status"`
	Priority    models.TaskPriority `json:"priority" validate:"omitempty,task_priority"`
	DueDate     *string             `json:"dueDate"`
}

// UpdateTaskRequest represents a partial update. An explicit null dueDate
// clears the due date; an absent one leaves it unchanged.
type UpdateTaskRequest struct {
	Title       *string               `json:"title" validate:"omitempty,max=500"`
	Description *string               `json:"description" validate:"omitempty,max=10000"`
	Status      *models.TaskStatus    `json:"status" validate:"omitempty,task_status"`
	Priority    *models.TaskPriority  `json:"priority" validate:"omitempty,task_priority"`
	DueDate     models.OptionalString `json:"dueDate"`
}

// BulkMarkDoneRequest lists the tasks to mark Done
type BulkMarkDoneRequest struct {
	IDs []string `json:"ids"`
}

// CreateTaskResponse carries the id of a new task
type CreateTaskResponse struct {
	ID string `json:"id"`
}

// OKResponse acknowledges a write
type OKResponse struct {
	OK      bool `json:"ok"`
	Updated *int `json:"updated,omitempty"`
}

// responder renders success and error bodies for one route family
type responder struct {
	ok  func(w http.ResponseWriter, status int, data any)
	err func(w http.ResponseWriter, r *http.Request, status int, message string)
	// id extracts the task id a route addresses
	id func(r *http.Request) string
}

var envelopeResponder = responder{
	ok: respondJSON,
	err: func(w http.ResponseWriter, r *http.Request, status int, message string) {
		respondJSONError(w, status, http.StatusText(status), message)
	},
	id: func(r *http.Request) string { return mux.Vars(r)["id"] },
}

var legacyResponder = responder{
	ok:  writeLegacyJSON,
	err: WriteLegacyError,
	id:  func(r *http.Request) string { return r.URL.Query().Get("id") },
}

// TaskHandler handles task requests for both the /api/v1 and the legacy routes
type TaskHandler struct {
	service TaskService
	logger  *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(service TaskService, logger *zap.Logger) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{service: service, logger: logger}
}

// RegisterRoutes registers task routes on a router already carrying the
// /api/v1/tasks prefix
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	res := envelopeResponder
	r.HandleFunc("", h.list(res)).Methods(http.MethodGet)
	r.HandleFunc("", h.create(res)).Methods(http.MethodPost)
	r.HandleFunc("/stats", h.stats(res)).Methods(http.MethodGet)
	r.HandleFunc("/bulk-done", h.bulkMarkDone(res)).Methods(http.MethodPost)
	r.HandleFunc("/{id}", h.get(res)).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.update(res)).Methods(http.MethodPatch)
	r.HandleFunc("/{id}", h.softDelete(res)).Methods(http.MethodDelete)
}

func (h *TaskHandler) identity(w http.ResponseWriter, r *http.Request, res responder) *models.Identity {
	id := request.Identity(r)
	if id == nil {
		res.err(w, r, http.StatusUnauthorized, "Missing Authorization: Bearer <token>")
	}
	return id
}

func (h *TaskHandler) fail(w http.ResponseWriter, r *http.Request, res responder, op string, err error) {
	status, message := errorStatus(h.logger, r, op, err)
	res.err(w, r, status, message)
}

func (h *TaskHandler) list(res responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := h.identity(w, r, res)
		if caller == nil {
			return
		}

		v := r.URL.Query()
		q := tasks.NormalizeQuery(tasks.RawQuery{
			Page:      v.Get("page"),
			PageSize:  v.Get("pageSize"),
			Search:    v.Get("search"),
			Status:    v.Get("status"),
			Priority:  v.Get("priority"),
			DueFrom:   v.Get("dueFrom"),
			DueTo:     v.Get("dueTo"),
			SortField: v.Get("sortField"),
			SortOrder: v.Get("sortOrder"),
		})

		page, err := h.service.List(r.Context(), caller.UID, q)
		if err != nil {
			h.fail(w, r, res, "list_tasks", err)
			return
		}
		res.ok(w, http.StatusOK, page)
	}
}

func (h *TaskHandler) get(res responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := h.identity(w, r, res)
		if caller == nil {
			return
		}

		task, err := h.service.Get(r.Context(), caller.UID, res.id(r))
		if err != nil {
			h.fail(w, r, res, "get_task", err)
			return
		}
		res.ok(w, http.StatusOK, task)
	}
}

func (h *TaskHandler) create(res responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := h.identity(w, r, res)
		if caller == nil {
			return
		}

		var req CreateTaskRequest
		if err := decodeJSON(r, &req); err != nil {
			res.err(w, r, decodeStatus(err), err.Error())
			return
		}
		if err := validation.Struct(req); err != nil {
			res.err(w, r, http.StatusBadRequest, err.Error())
			return
		}

		id, err := h.service.Create(r.Context(), caller.UID, models.TaskFields{
			Title:       validation.SanitizeText(req.Title),
			Description: validation.SanitizeText(req.Description),
			Status:      req.Status,
			Priority:    req.Priority,
			DueDate:     req.DueDate,
		})
		if err != nil {
			h.fail(w, r, res, "create_task", err)
			return
		}
		res.ok(w, http.StatusCreated, CreateTaskResponse{ID: id})
	}
}

func (h *TaskHandler) update(res responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := h.identity(w, r, res)
		if caller == nil {
			return
		}

		var req UpdateTaskRequest
		if err := decodeJSON(r, &req); err != nil {
			res.err(w, r, decodeStatus(err), err.Error())
			return
		}
		if err := validation.Struct(req); err != nil {
			res.err(w, r, http.StatusBadRequest, err.Error())
			return
		}

		err := h.service.Update(r.Context(), caller.UID, res.id(r), models.TaskPatch{
			Title:       validation.SanitizeTextPtr(req.Title),
			Description: validation.SanitizeTextPtr(req.Description),
			Status:      req.Status,
			Priority:    req.Priority,
			DueDate:     req.DueDate,
		})
		if err != nil {
			h.fail(w, r, res, "update_task", err)
			return
		}
		res.ok(w, http.StatusOK, OKResponse{OK: true})
	}
}

func (h *TaskHandler) softDelete(res responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := h.identity(w, r, res)
		if caller == nil {
			return
		}

		if err := h.service.SoftDelete(r.Context(), caller.UID, res.id(r)); err != nil {
			h.fail(w, r, res, "soft_delete_task", err)
			return
		}
		res.ok(w, http.StatusOK, OKResponse{OK: true})
	}
}

func (h *TaskHandler) bulkMarkDone(res responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := h.identity(w, r, res)
		if caller == nil {
			return
		}

		var req BulkMarkDoneRequest
		if err := decodeJSON(r, &req); err != nil {
			res.err(w, r, decodeStatus(err), err.Error())
			return
		}

		updated, err := h.service.BulkMarkDone(r.Context(), caller.UID, req.IDs)
		if err != nil {
			h.fail(w, r, res, "bulk_mark_done", err)
			return
		}
		res.ok(w, http.StatusOK, OKResponse{OK: true, Updated: &updated})
	}
}

func (h *TaskHandler) stats(res responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := h.identity(w, r, res)
		if caller == nil {
			return
		}

		v := r.URL.Query()
		q := tasks.NormalizeStatsQuery(tasks.RawStatsQuery{
			Period: v.Get("period"),
			From:   v.Get("from"),
			To:     v.Get("to"),
			Limit:  v.Get("limit"),
		})

		stats, err := h.service.Stats(r.Context(), caller.UID, q)
		if err != nil {
			h.fail(w, r, res, "task_stats", err)
			return
		}
		res.ok(w, http.StatusOK, stats)
	}
}
