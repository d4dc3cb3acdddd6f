package database

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/benvon/task-tracker/internal/models"
	"github.com/google/uuid"
)

// MemoryTaskStore is an in-process TaskStore with the same query semantics
// as the PostgreSQL adapter. It backs DATABASE_URL=memory and tests.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*models.Task
}

// NewMemoryTaskStore creates an empty in-memory store
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[string]*models.Task)}
}

// Insert stores a copy of task, assigning an id when it has none
func (s *MemoryTaskStore) Insert(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	s.tasks[task.ID] = task.Clone()
	return nil
}

// Get retrieves a task by id
func (s *MemoryTaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return t.Clone(), nil
}

// Find returns the tasks matching q in query order
func (s *MemoryTaskStore) Find(ctx context.Context, q TaskQuery) ([]*models.Task, error) {
	s.mu.RLock()
	matched := s.match(q.Filter)
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.Task) int {
		if c := compareBySortKey(a, b, q.OrderBy, q.Descending); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return []*models.Task{}, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// Count returns the number of tasks matching f
func (s *MemoryTaskStore) Count(ctx context.Context, f TaskFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.match(f)), nil
}

// Update replaces the stored record when id and owner match
func (s *MemoryTaskStore) Update(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok || existing.OwnerUID != task.OwnerUID {
		return ErrTaskNotFound
	}
	s.tasks[task.ID] = task.Clone()
	return nil
}

// UpdateBatch replaces every record under one lock
func (s *MemoryTaskStore) UpdateBatch(ctx context.Context, tasks []*models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, task := range tasks {
		existing, ok := s.tasks[task.ID]
		if !ok || existing.OwnerUID != task.OwnerUID {
			continue
		}
		s.tasks[task.ID] = task.Clone()
	}
	return nil
}

// Delete physically removes a task. The services never call it; tests use it
// to simulate a record vanishing between read and write.
func (s *MemoryTaskStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
}

// PingContext always succeeds
func (s *MemoryTaskStore) PingContext(ctx context.Context) error {
	return nil
}

// match must be called with at least a read lock held
func (s *MemoryTaskStore) match(f TaskFilter) []*models.Task {
	out := make([]*models.Task, 0)
	for _, t := range s.tasks {
		if matchesFilter(t, f) {
			out = append(out, t.Clone())
		}
	}
	return out
}

func matchesFilter(t *models.Task, f TaskFilter) bool {
	if t.OwnerUID != f.OwnerUID {
		return false
	}
	if !f.IncludeDeleted && t.IsDeleted {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.HasDueRange() {
		if t.DueDate == nil {
			return false
		}
		if f.DueFrom != "" && *t.DueDate < f.DueFrom {
			return false
		}
		if f.DueTo != "" && *t.DueDate > f.DueTo {
			return false
		}
	}
	if len(f.TokensAny) > 0 && !slices.ContainsFunc(f.TokensAny, func(tok string) bool {
		return slices.Contains(t.SearchTokens, tok)
	}) {
		return false
	}
	return true
}

func compareBySortKey(a, b *models.Task, key SortKey, desc bool) int {
	if key == SortKeyDueDate {
		// nulls last regardless of direction
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
	}

	var c int
	switch key {
	case SortKeyTitleLower:
		c = cmp.Compare(a.TitleLower, b.TitleLower)
	case SortKeyStatusRank:
		c = cmp.Compare(a.StatusRank, b.StatusRank)
	case SortKeyPriorityRank:
		c = cmp.Compare(a.PriorityRank, b.PriorityRank)
	case SortKeyDueDate:
		c = cmp.Compare(*a.DueDate, *b.DueDate)
	case SortKeyCreatedAt:
		c = a.CreatedAt.Compare(b.CreatedAt)
	default:
		c = a.UpdatedAt.Compare(b.UpdatedAt)
	}
	if desc {
		return -c
	}
	return c
}
