package models

import (
	"time"

	"github.com/benvon/task-tracker/internal/search"
)

// TaskStatus represents the workflow state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "Todo"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusDone       TaskStatus = "Done"
)

// Rank is the ordinal used for store-side ordering by status.
// Unknown values rank as Todo.
func (s TaskStatus) Rank() int {
	switch s {
	case TaskStatusInProgress:
		return 2
	case TaskStatusDone:
		return 3
	default:
		return 1
	}
}

// Valid reports whether s is one of the known statuses
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority represents how urgent a task is
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

// Rank is the ordinal used for store-side ordering by priority.
// Unknown values rank as Medium.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityLow:
		return 1
	case TaskPriorityHigh:
		return 3
	default:
		return 2
	}
}

// Valid reports whether p is one of the known priorities
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task is the stored task record.
//
// TitleLower, DescriptionLower, SearchTokens, StatusRank and PriorityRank are
// derived from the primary fields. They are only ever assigned by derive, which
// runs inside every mutator below, so they cannot drift from what they encode.
type Task struct {
	ID          string
	OwnerUID    string
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *string

	TitleLower       string
	DescriptionLower string
	SearchTokens     []string
	StatusRank       int
	PriorityRank     int

	IsDeleted bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskFields are the caller-supplied fields of a new task
type TaskFields struct {
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *string
}

// TaskPatch is a partial update; nil fields are left untouched
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	DueDate     OptionalString
}

// NewTask builds a task owned by ownerUID with defaults applied and derived
// fields computed. The ID is left for the store to assign.
func NewTask(ownerUID string, f TaskFields, now time.Time) *Task {
	t := &Task{
		OwnerUID:    ownerUID,
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
		Priority:    f.Priority,
		DueDate:     f.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	t.derive()
	return t
}

// Apply merges a patch into the task and bumps UpdatedAt
func (t *Task) Apply(p TaskPatch, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
	t.UpdatedAt = now
	t.derive()
}

// MarkDone sets the status to Done and bumps UpdatedAt
func (t *Task) MarkDone(now time.Time) {
	t.Status = TaskStatusDone
	t.UpdatedAt = now
	t.derive()
}

// SoftDelete hides the task from listing without erasing it
func (t *Task) SoftDelete(now time.Time) {
	t.IsDeleted = true
	deletedAt := now
	t.DeletedAt = &deletedAt
	t.UpdatedAt = now
}

func (t *Task) derive() {
	t.TitleLower = search.Normalize(t.Title)
	t.DescriptionLower = search.Normalize(t.Description)
	t.SearchTokens = search.BuildSearchTokens(t.Title, t.Description)
	t.StatusRank = t.Status.Rank()
	t.PriorityRank = t.Priority.Rank()
}

// Clone returns a deep copy so callers cannot alias store state
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.DeletedAt != nil {
		d := *t.DeletedAt
		c.DeletedAt = &d
	}
	c.SearchTokens = append([]string(nil), t.SearchTokens...)
	return &c
}
