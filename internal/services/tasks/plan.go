package tasks

import (
	"context"
	"fmt"
	"slices"

	"github.com/benvon/task-tracker/internal/database"
	"github.com/benvon/task-tracker/internal/models"
	"github.com/benvon/task-tracker/internal/search"
)

// MaxScan caps the candidates a search listing reads from the store
const MaxScan = 300

// Result is a page of tasks plus the size of the full filtered set
type Result struct {
	Tasks []*models.Task
	Total int
}

// Plan is one strategy for answering a listing query
type Plan interface {
	Name() string
	Execute(ctx context.Context, store database.TaskStore) (Result, error)
}

// SelectPlan picks the scan plan when search text is present and the
// database-native plan otherwise.
func SelectPlan(ownerUID string, q Query) Plan {
	if q.Search != "" {
		return &ScanAndFilterPlan{OwnerUID: ownerUID, Query: q}
	}
	return &DatabaseNativePlan{OwnerUID: ownerUID, Query: q}
}

// baseFilter scopes to the owner first; every plan starts from it
func baseFilter(ownerUID string, q Query) database.TaskFilter {
	return database.TaskFilter{
		OwnerUID: ownerUID,
		Status:   q.Status,
		Priority: q.Priority,
		DueFrom:  q.DueFrom,
		DueTo:    q.DueTo,
	}
}

// DatabaseNativePlan filters, orders and paginates entirely in the store.
//
// A due-date range can only be combined with ordering on the due date, so
// whenever a bound is present the effective sort key is forced to dueDate.
type DatabaseNativePlan struct {
	OwnerUID string
	Query    Query
}

func (p *DatabaseNativePlan) Name() string { return "database_native" }

// SortKey is the store-side key the requested sort field maps to
func (p *DatabaseNativePlan) SortKey() database.SortKey {
	if p.Query.HasDueRange() {
		return database.SortKeyDueDate
	}
	switch p.Query.SortField {
	case SortByTitle:
		return database.SortKeyTitleLower
	case SortByStatus:
		return database.SortKeyStatusRank
	case SortByPriority:
		return database.SortKeyPriorityRank
	case SortByDueDate:
		return database.SortKeyDueDate
	case SortByCreatedAt:
		return database.SortKeyCreatedAt
	default:
		return database.SortKeyUpdatedAt
	}
}

// StoreQuery is the paginated query sent to the store
func (p *DatabaseNativePlan) StoreQuery() database.TaskQuery {
	return database.TaskQuery{
		Filter:     baseFilter(p.OwnerUID, p.Query),
		OrderBy:    p.SortKey(),
		Descending: !p.Query.Ascending(),
		Offset:     p.Query.Offset(),
		Limit:      p.Query.PageSize,
	}
}

func (p *DatabaseNativePlan) Execute(ctx context.Context, store database.TaskStore) (Result, error) {
	sq := p.StoreQuery()

	items, err := store.Find(ctx, sq)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch page: %w", err)
	}

	total, err := countTasks(ctx, store, sq.Filter)
	if err != nil {
		return Result{}, err
	}

	return Result{Tasks: items, Total: total}, nil
}

// countTasks prefers the store's aggregate count and falls back to reading
// every match.
func countTasks(ctx context.Context, store database.TaskStore, f database.TaskFilter) (int, error) {
	if counter, ok := store.(database.TaskCounter); ok {
		n, err := counter.Count(ctx, f)
		if err != nil {
			return 0, fmt.Errorf("failed to count tasks: %w", err)
		}
		return n, nil
	}

	all, err := store.Find(ctx, database.TaskQuery{Filter: f, OrderBy: database.SortKeyUpdatedAt, Descending: true})
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return len(all), nil
}

// ScanAndFilterPlan overfetches up to MaxScan candidates, matches the search
// text in memory, then sorts and paginates locally.
//
// The store pre-filter keeps candidates sharing at least one of the first
// search.MaxQueryTokens query tokens. Token equality misses partial words
// ("quart" never equals "quarterly"), so when the pre-filtered read leaves
// room under the cap it is topped up from an unfiltered read. Candidates are
// read newest-updated first so the cap is deterministic; the read order is
// discarded by the local sort.
type ScanAndFilterPlan struct {
	OwnerUID string
	Query    Query
}

func (p *ScanAndFilterPlan) Name() string { return "scan_and_filter" }

// StoreQuery is the bounded candidate query sent to the store
func (p *ScanAndFilterPlan) StoreQuery() database.TaskQuery {
	sq := p.recencyQuery()
	if tokens := search.QueryTokens(p.Query.Search); len(tokens) > 0 {
		sq.Filter.TokensAny = tokens
	}
	return sq
}

func (p *ScanAndFilterPlan) recencyQuery() database.TaskQuery {
	return database.TaskQuery{
		Filter:     baseFilter(p.OwnerUID, p.Query),
		OrderBy:    database.SortKeyUpdatedAt,
		Descending: true,
		Limit:      MaxScan,
	}
}

func (p *ScanAndFilterPlan) Execute(ctx context.Context, store database.TaskStore) (Result, error) {
	sq := p.StoreQuery()
	candidates, err := store.Find(ctx, sq)
	if err != nil {
		return Result{}, fmt.Errorf("failed to scan tasks: %w", err)
	}

	if len(sq.Filter.TokensAny) > 0 && len(candidates) < MaxScan {
		recent, err := store.Find(ctx, p.recencyQuery())
		if err != nil {
			return Result{}, fmt.Errorf("failed to scan recent tasks: %w", err)
		}
		candidates = mergeCandidates(candidates, recent, MaxScan)
	}

	matched := make([]*models.Task, 0, len(candidates))
	for _, t := range candidates {
		if search.Matches(search.Haystack(t.Title, t.Description), p.Query.Search) {
			matched = append(matched, t)
		}
	}

	slices.SortStableFunc(matched, scanComparator(p.Query.SortField, p.Query.SortOrder))

	return Result{Tasks: pageOf(matched, p.Query.Offset(), p.Query.PageSize), Total: len(matched)}, nil
}

// mergeCandidates appends tasks from extra that are not already present,
// stopping at limit
func mergeCandidates(primary, extra []*models.Task, limit int) []*models.Task {
	seen := make(map[string]struct{}, len(primary))
	for _, t := range primary {
		seen[t.ID] = struct{}{}
	}
	for _, t := range extra {
		if len(primary) >= limit {
			break
		}
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		primary = append(primary, t)
	}
	return primary
}

func pageOf(tasks []*models.Task, offset, size int) []*models.Task {
	if offset >= len(tasks) {
		return []*models.Task{}
	}
	end := min(offset+size, len(tasks))
	return tasks[offset:end]
}
