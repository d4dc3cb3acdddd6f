package database

import (
	"context"
	"fmt"

	"github.com/benvon/task-tracker/internal/apperrors"
	"github.com/benvon/task-tracker/internal/models"
)

// ErrTaskNotFound is returned when no task matches the given id
var ErrTaskNotFound = fmt.Errorf("task %w", apperrors.ErrNotFound)

// SortKey is a store-sortable task field
type SortKey string

const (
	SortKeyTitleLower   SortKey = "titleLower"
	SortKeyStatusRank   SortKey = "statusRank"
	SortKeyPriorityRank SortKey = "priorityRank"
	SortKeyDueDate      SortKey = "dueDate"
	SortKeyCreatedAt    SortKey = "createdAt"
	SortKeyUpdatedAt    SortKey = "updatedAt"
)

// TaskFilter selects tasks. OwnerUID is mandatory and always applied.
type TaskFilter struct {
	OwnerUID       string
	IncludeDeleted bool
	Status         models.TaskStatus
	Priority       models.TaskPriority
	// DueFrom and DueTo are inclusive bounds compared as strings.
	// Tasks without a due date never satisfy a bound.
	DueFrom string
	DueTo   string
	// TokensAny keeps tasks whose search tokens share at least one entry
	TokensAny []string
}

// HasDueRange reports whether a due-date bound is set
func (f TaskFilter) HasDueRange() bool {
	return f.DueFrom != "" || f.DueTo != ""
}

// TaskQuery is a filter plus ordering and pagination.
// Null due dates order last in both directions; ties break on id ascending.
type TaskQuery struct {
	Filter     TaskFilter
	OrderBy    SortKey
	Descending bool
	Offset     int
	// Limit of 0 means unbounded
	Limit int
}

// TaskStore is the document-store contract the task services depend on
type TaskStore interface {
	Insert(ctx context.Context, task *models.Task) error
	// Get returns the task regardless of its deleted flag
	Get(ctx context.Context, id string) (*models.Task, error)
	Find(ctx context.Context, q TaskQuery) ([]*models.Task, error)
	// Update writes the full record, guarded by id and owner
	Update(ctx context.Context, task *models.Task) error
	// UpdateBatch writes all records atomically. Records that no longer
	// exist are skipped.
	UpdateBatch(ctx context.Context, tasks []*models.Task) error
}

// TaskCounter is implemented by stores with a native aggregate count
type TaskCounter interface {
	Count(ctx context.Context, f TaskFilter) (int, error)
}

// Pinger is implemented by stores that can report connectivity
type Pinger interface {
	PingContext(ctx context.Context) error
}
