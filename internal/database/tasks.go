package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/benvon/task-tracker/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const taskColumns = `id, owner_uid, title, description, status, priority, due_date,
	title_lower, description_lower, search_tokens, status_rank, priority_rank,
	is_deleted, deleted_at, created_at, updated_at`

// orderColumns maps sort keys to SQL. Text columns use the C collation so
// ordering is byte-wise, matching the in-memory comparator.
var orderColumns = map[SortKey]string{
	SortKeyTitleLower:   `title_lower COLLATE "C"`,
	SortKeyStatusRank:   "status_rank",
	SortKeyPriorityRank: "priority_rank",
	SortKeyDueDate:      `due_date COLLATE "C"`,
	SortKeyCreatedAt:    "created_at",
	SortKeyUpdatedAt:    "updated_at",
}

// TaskRepository is the PostgreSQL TaskStore
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Insert creates a new task, assigning a UUID when the task has no id
func (r *TaskRepository) Insert(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.OwnerUID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.DueDate,
		task.TitleLower,
		task.DescriptionLower,
		pq.Array(task.SearchTokens),
		task.StatusRank,
		task.PriorityRank,
		task.IsDeleted,
		task.DeletedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Get retrieves a task by id, including soft-deleted tasks
func (r *TaskRepository) Get(ctx context.Context, id string) (*models.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrTaskNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Find returns tasks matching q in query order
func (r *TaskRepository) Find(ctx context.Context, q TaskQuery) ([]*models.Task, error) {
	query, args := buildFindQuery(q)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// Count returns the number of tasks matching f
func (r *TaskRepository) Count(ctx context.Context, f TaskFilter) (int, error) {
	where, args := buildTaskFilter(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE `+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return total, nil
}

// Update writes every mutable column of task
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	result, err := r.db.ExecContext(ctx, updateTaskSQL, updateTaskArgs(task)...)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// UpdateBatch writes all tasks in one transaction. A row that disappeared
// since it was read updates nothing and is skipped.
func (r *TaskRepository) UpdateBatch(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, updateTaskSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare batch update: %w", err)
	}
	defer stmt.Close()

	for _, task := range tasks {
		if _, err := stmt.ExecContext(ctx, updateTaskArgs(task)...); err != nil {
			return fmt.Errorf("failed to update task %s in batch: %w", task.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

const updateTaskSQL = `
	UPDATE tasks
	SET title = $3, description = $4, status = $5, priority = $6, due_date = $7,
		title_lower = $8, description_lower = $9, search_tokens = $10,
		status_rank = $11, priority_rank = $12, is_deleted = $13, deleted_at = $14,
		updated_at = $15
	WHERE id = $1 AND owner_uid = $2
`

func updateTaskArgs(task *models.Task) []any {
	return []any{
		task.ID,
		task.OwnerUID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.DueDate,
		task.TitleLower,
		task.DescriptionLower,
		pq.Array(task.SearchTokens),
		task.StatusRank,
		task.PriorityRank,
		task.IsDeleted,
		task.DeletedAt,
		task.UpdatedAt,
	}
}

// buildTaskFilter renders f as a WHERE clause. The owner predicate is always
// the first condition.
func buildTaskFilter(f TaskFilter) (string, []any) {
	conds := []string{"owner_uid = $1"}
	args := []any{f.OwnerUID}

	add := func(format string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if !f.IncludeDeleted {
		conds = append(conds, "is_deleted = FALSE")
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Priority != "" {
		add("priority = $%d", string(f.Priority))
	}
	if f.DueFrom != "" {
		add(`due_date COLLATE "C" >= $%d`, f.DueFrom)
	}
	if f.DueTo != "" {
		add(`due_date COLLATE "C" <= $%d`, f.DueTo)
	}
	if len(f.TokensAny) > 0 {
		add("search_tokens && $%d::text[]", pq.Array(f.TokensAny))
	}

	return strings.Join(conds, " AND "), args
}

func buildFindQuery(q TaskQuery) (string, []any) {
	where, args := buildTaskFilter(q.Filter)

	column, ok := orderColumns[q.OrderBy]
	if !ok {
		column = orderColumns[SortKeyUpdatedAt]
	}
	direction := "ASC"
	if q.Descending {
		direction = "DESC"
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(taskColumns)
	b.WriteString(" FROM tasks WHERE ")
	b.WriteString(where)
	fmt.Fprintf(&b, " ORDER BY %s %s NULLS LAST, id ASC", column, direction)

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	return b.String(), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var status, priority string
	var dueDate sql.NullString
	var deletedAt sql.NullTime
	var tokens pq.StringArray

	err := row.Scan(
		&task.ID,
		&task.OwnerUID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&dueDate,
		&task.TitleLower,
		&task.DescriptionLower,
		&tokens,
		&task.StatusRank,
		&task.PriorityRank,
		&task.IsDeleted,
		&deletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = models.TaskStatus(status)
	task.Priority = models.TaskPriority(priority)
	task.SearchTokens = []string(tokens)
	if dueDate.Valid {
		d := dueDate.String
		task.DueDate = &d
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		task.DeletedAt = &t
	}
	return task, nil
}
