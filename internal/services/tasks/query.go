package tasks

import (
	"strconv"
	"strings"

	"github.com/benvon/task-tracker/internal/models"
)

const (
	DefaultPage     = 1
	MaxPage         = 10000
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// SortField is a user-facing listing sort field
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByDueDate   SortField = "dueDate"
	SortByTitle     SortField = "title"
	SortByPriority  SortField = "priority"
	SortByStatus    SortField = "status"
)

// SortOrder is the listing sort direction
type SortOrder string

const (
	SortAscend  SortOrder = "ascend"
	SortDescend SortOrder = "descend"
)

// RawQuery carries listing parameters exactly as received from the client
type RawQuery struct {
	Page      string
	PageSize  string
	Search    string
	Status    string
	Priority  string
	DueFrom   string
	DueTo     string
	SortField string
	SortOrder string
}

// Query is a normalized listing request. Build it with NormalizeQuery.
type Query struct {
	Page      int
	PageSize  int
	Search    string
	Status    models.TaskStatus
	Priority  models.TaskPriority
	DueFrom   string
	DueTo     string
	SortField SortField
	SortOrder SortOrder
}

// Offset is the number of results skipped before the requested page
func (q Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Ascending reports whether results are ordered ascending
func (q Query) Ascending() bool {
	return q.SortOrder == SortAscend
}

// HasDueRange reports whether either due-date bound is set
func (q Query) HasDueRange() bool {
	return q.DueFrom != "" || q.DueTo != ""
}

// NormalizeQuery clamps and defaults raw listing parameters. It never fails:
// out-of-range numbers are clamped and unknown sort values fall back to
// updatedAt/descend. Status and priority are passed through as exact-match
// filters, so an unknown value simply matches nothing.
func NormalizeQuery(raw RawQuery) Query {
	q := Query{
		Page:      clamp(parseLeadingInt(raw.Page, DefaultPage), 1, MaxPage),
		PageSize:  clamp(parseLeadingInt(raw.PageSize, DefaultPageSize), 1, MaxPageSize),
		Search:    strings.TrimSpace(raw.Search),
		Status:    models.TaskStatus(strings.TrimSpace(raw.Status)),
		Priority:  models.TaskPriority(strings.TrimSpace(raw.Priority)),
		DueFrom:   canonicalBound(raw.DueFrom),
		DueTo:     canonicalBound(raw.DueTo),
		SortField: SortByUpdatedAt,
		SortOrder: SortDescend,
	}

	switch f := SortField(strings.TrimSpace(raw.SortField)); f {
	case SortByCreatedAt, SortByUpdatedAt, SortByDueDate, SortByTitle, SortByPriority, SortByStatus:
		q.SortField = f
	}
	if SortOrder(strings.TrimSpace(raw.SortOrder)) == SortAscend {
		q.SortOrder = SortAscend
	}

	return q
}

// canonicalBound rewrites a parseable ISO bound into the stored due-date form.
// Unparseable bounds are kept verbatim and compared as plain strings.
func canonicalBound(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	canonical, _ := models.CanonicalISO(s)
	return canonical
}

// parseLeadingInt reads an optionally signed run of leading digits, so "12abc"
// is 12 and "3.9" is 3. Anything without leading digits yields fallback.
func parseLeadingInt(s string, fallback int) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return fallback
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// overflow: saturate in the direction of the sign
		if s[0] == '-' {
			return -MaxPage
		}
		return MaxPage
	}
	return n
}

func clamp(n, lo, hi int) int {
	return min(hi, max(lo, n))
}
