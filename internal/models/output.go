package models

import (
	"time"
)

// TaskOutput is the user-facing task shape. Timestamps are ISO-8601 strings.
type TaskOutput struct {
	ID           string       `json:"id"`
	OwnerUID     string       `json:"ownerUid"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	StatusRank   int          `json:"statusRank"`
	PriorityRank int          `json:"priorityRank"`
	DueDate      *string      `json:"dueDate"`
	IsDeleted    bool         `json:"isDeleted"`
	DeletedAt    *string      `json:"deletedAt"`
	CreatedAt    string       `json:"createdAt"`
	UpdatedAt    string       `json:"updatedAt"`
}

// Output converts a stored task into its serialized form
func (t *Task) Output() TaskOutput {
	out := TaskOutput{
		ID:           t.ID,
		OwnerUID:     t.OwnerUID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		StatusRank:   t.StatusRank,
		PriorityRank: t.PriorityRank,
		IsDeleted:    t.IsDeleted,
		CreatedAt:    FormatISO(t.CreatedAt),
		UpdatedAt:    FormatISO(t.UpdatedAt),
	}
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	if t.DeletedAt != nil {
		d := FormatISO(*t.DeletedAt)
		out.DeletedAt = &d
	}
	return out
}

// Outputs converts a slice of tasks, never returning nil
func Outputs(tasks []*Task) []TaskOutput {
	out := make([]TaskOutput, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Output())
	}
	return out
}

// TaskPage is one page of a listing plus the size of the full filtered result
type TaskPage struct {
	Items []TaskOutput `json:"items"`
	Total int          `json:"total"`
}

// isoLayout matches JavaScript's Date.prototype.toISOString
const isoLayout = "2006-01-02T15:04:05.000Z"

var isoParseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FormatISO renders t in UTC with millisecond precision
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ParseISO parses the ISO-8601 variants accepted from clients.
// Strings without an offset are read as UTC.
func ParseISO(s string) (time.Time, bool) {
	for _, layout := range isoParseLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// CanonicalISO rewrites a parseable ISO-8601 string into FormatISO form so
// that lexicographic order matches chronological order.
func CanonicalISO(s string) (string, bool) {
	ts, ok := ParseISO(s)
	if !ok {
		return s, false
	}
	return FormatISO(ts), true
}
