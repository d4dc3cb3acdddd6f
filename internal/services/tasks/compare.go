package tasks

import (
	"cmp"
	"math"

	"github.com/benvon/task-tracker/internal/models"
	"github.com/benvon/task-tracker/internal/search"
)

// scanComparator orders search results in memory.
//
// Titles compare case-insensitively, status and priority by rank, and dates by
// epoch milliseconds with unparseable values treated as 0. A null due date is
// +Inf ascending and 0 descending, which puts it last in both directions.
func scanComparator(field SortField, order SortOrder) func(a, b *models.Task) int {
	asc := order == SortAscend

	var c func(a, b *models.Task) int
	switch field {
	case SortByTitle:
		c = func(a, b *models.Task) int {
			return cmp.Compare(search.Normalize(a.Title), search.Normalize(b.Title))
		}
	case SortByStatus:
		c = func(a, b *models.Task) int {
			return cmp.Compare(a.Status.Rank(), b.Status.Rank())
		}
	case SortByPriority:
		c = func(a, b *models.Task) int {
			return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
		}
	case SortByDueDate:
		c = func(a, b *models.Task) int {
			return cmp.Compare(dueDateValue(a, asc), dueDateValue(b, asc))
		}
	case SortByCreatedAt:
		c = func(a, b *models.Task) int {
			return cmp.Compare(a.CreatedAt.UnixMilli(), b.CreatedAt.UnixMilli())
		}
	default:
		c = func(a, b *models.Task) int {
			return cmp.Compare(a.UpdatedAt.UnixMilli(), b.UpdatedAt.UnixMilli())
		}
	}

	if asc {
		return c
	}
	return func(a, b *models.Task) int {
		return -c(a, b)
	}
}

func dueDateValue(t *models.Task, asc bool) float64 {
	if t.DueDate == nil || *t.DueDate == "" {
		if asc {
			return math.Inf(1)
		}
		return 0
	}
	ts, ok := models.ParseISO(*t.DueDate)
	if !ok {
		return 0
	}
	return float64(ts.UnixMilli())
}
