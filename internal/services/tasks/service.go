// Package tasks implements the task listing pipeline and the write path that
// keeps each task's derived search and sort fields consistent.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/benvon/task-tracker/internal/apperrors"
	"github.com/benvon/task-tracker/internal/database"
	"github.com/benvon/task-tracker/internal/logger"
	"github.com/benvon/task-tracker/internal/models"
	"github.com/benvon/task-tracker/internal/queue"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// MaxBulkIDs caps the ids a single bulk request touches; the rest are ignored
	MaxBulkIDs = 300
	// MinTitleLength is measured in characters after trimming
	MinTitleLength = 2

	tracerName = "github.com/benvon/task-tracker/internal/services/tasks"
)

// StatsCache is the cache-aside store for statistics. *cache.Cache satisfies it.
type StatsCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Service exposes task reads and writes scoped to an owner
type Service struct {
	store     database.TaskStore
	publisher queue.Publisher
	cache     StatsCache
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithPublisher sets the change event publisher
func WithPublisher(p queue.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithStatsCache enables caching of statistics
func WithStatsCache(c StatsCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a task service over store
func NewService(store database.TaskStore, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: queue.NoopPublisher{},
		logger:    zap.NewNop(),
		tracer:    otel.Tracer(tracerName),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying task store
func (s *Service) Store() database.TaskStore {
	return s.store
}

// List returns one page of the owner's non-deleted tasks
func (s *Service) List(ctx context.Context, ownerUID string, q Query) (models.TaskPage, error) {
	plan := SelectPlan(ownerUID, q)

	ctx, span := s.tracer.Start(ctx, "tasks.List", trace.WithAttributes(
		attribute.String("tasks.plan", plan.Name()),
		attribute.Int("tasks.page", q.Page),
		attribute.Int("tasks.page_size", q.PageSize),
	))
	defer span.End()

	res, err := plan.Execute(ctx, s.store)
	if err != nil {
		recordError(span, err)
		return models.TaskPage{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	s.logger.Debug("tasks_listed",
		zap.String("owner_uid", logger.SanitizeUserID(ownerUID)),
		zap.String("plan", plan.Name()),
		zap.String("search", logger.SanitizeSearch(q.Search)),
		zap.Int("items", len(res.Tasks)),
		zap.Int("total", res.Total),
	)

	return models.TaskPage{Items: models.Outputs(res.Tasks), Total: res.Total}, nil
}

// Get returns a single non-deleted task owned by ownerUID
func (s *Service) Get(ctx context.Context, ownerUID, id string) (*models.TaskOutput, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Get")
	defer span.End()

	task, err := s.loadOwned(ctx, ownerUID, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	if task.IsDeleted {
		return nil, database.ErrTaskNotFound
	}

	out := task.Output()
	return &out, nil
}

// Create validates fields, stores a new task and returns its id
func (s *Service) Create(ctx context.Context, ownerUID string, f models.TaskFields) (string, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Create")
	defer span.End()

	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	if err := validateTitle(f.Title); err != nil {
		return "", err
	}
	if f.Status != "" && !f.Status.Valid() {
		return "", apperrors.Validation("Invalid status %q", f.Status)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return "", apperrors.Validation("Invalid priority %q", f.Priority)
	}
	due, err := canonicalDueDate(f.DueDate)
	if err != nil {
		return "", err
	}
	f.DueDate = due

	task := models.NewTask(ownerUID, f, s.now())
	if err := s.store.Insert(ctx, task); err != nil {
		recordError(span, err)
		return "", fmt.Errorf("failed to create task: %w", err)
	}

	s.afterWrite(ctx, queue.EventTaskCreated, ownerUID, task.ID)
	s.logger.Info("task_created",
		zap.String("task_id", task.ID),
		zap.String("owner_uid", logger.SanitizeUserID(ownerUID)),
	)
	return task.ID, nil
}

// Update applies a partial patch to a task owned by requesterUID
func (s *Service) Update(ctx context.Context, requesterUID, id string, p models.TaskPatch) error {
	ctx, span := s.tracer.Start(ctx, "tasks.Update")
	defer span.End()

	if err := normalizePatch(&p); err != nil {
		return err
	}

	task, err := s.loadOwned(ctx, requesterUID, id)
	if err != nil {
		recordError(span, err)
		return err
	}

	task.Apply(p, s.now())
	if err := s.store.Update(ctx, task); err != nil {
		recordError(span, err)
		return fmt.Errorf("failed to update task: %w", err)
	}

	s.afterWrite(ctx, queue.EventTaskUpdated, requesterUID, task.ID)
	s.logger.Info("task_updated",
		zap.String("task_id", task.ID),
		zap.String("owner_uid", logger.SanitizeUserID(requesterUID)),
	)
	return nil
}

// SoftDelete hides a task from listings while keeping the record
func (s *Service) SoftDelete(ctx context.Context, requesterUID, id string) error {
	ctx, span := s.tracer.Start(ctx, "tasks.SoftDelete")
	defer span.End()

	task, err := s.loadOwned(ctx, requesterUID, id)
	if err != nil {
		recordError(span, err)
		return err
	}

	task.SoftDelete(s.now())
	if err := s.store.Update(ctx, task); err != nil {
		recordError(span, err)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.afterWrite(ctx, queue.EventTaskDeleted, requesterUID, task.ID)
	s.logger.Info("task_soft_deleted",
		zap.String("task_id", task.ID),
		zap.String("owner_uid", logger.SanitizeUserID(requesterUID)),
	)
	return nil
}

// BulkMarkDone marks up to MaxBulkIDs tasks Done in one batch and reports how
// many were written. Blank ids and ids that do not exist or belong to someone
// else are skipped without error.
func (s *Service) BulkMarkDone(ctx context.Context, requesterUID string, ids []string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.BulkMarkDone")
	defer span.End()

	if len(ids) == 0 {
		return 0, apperrors.Validation("Missing ids[]")
	}
	if len(ids) > MaxBulkIDs {
		ids = ids[:MaxBulkIDs]
	}

	now := s.now()
	seen := make(map[string]struct{}, len(ids))
	batch := make([]*models.Task, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		task, err := s.loadOwned(ctx, requesterUID, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrForbidden) {
				continue
			}
			recordError(span, err)
			return 0, err
		}
		task.MarkDone(now)
		batch = append(batch, task)
	}

	if err := s.store.UpdateBatch(ctx, batch); err != nil {
		recordError(span, err)
		return 0, fmt.Errorf("failed to mark tasks done: %w", err)
	}

	written := make([]string, 0, len(batch))
	for _, t := range batch {
		written = append(written, t.ID)
	}
	span.SetAttributes(attribute.Int("tasks.requested", len(ids)), attribute.Int("tasks.written", len(batch)))

	if len(written) > 0 {
		s.afterWrite(ctx, queue.EventTaskBulkDone, requesterUID, written...)
	}
	s.logger.Info("tasks_bulk_done",
		zap.String("owner_uid", logger.SanitizeUserID(requesterUID)),
		zap.Int("requested", len(ids)),
		zap.Int("written", len(batch)),
		zap.Strings("task_ids", logger.SanitizeIDs(written)),
	)
	return len(batch), nil
}

// loadOwned fetches a task, including soft-deleted ones, and checks ownership
func (s *Service) loadOwned(ctx context.Context, ownerUID, id string) (*models.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.Validation("Missing id")
	}

	task, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task.OwnerUID != ownerUID {
		return nil, apperrors.ErrForbidden
	}
	return task, nil
}

// afterWrite invalidates cached statistics and publishes a change event.
// Neither failure is returned: the write itself has already committed.
func (s *Service) afterWrite(ctx context.Context, eventType queue.EventType, ownerUID string, taskIDs ...string) {
	if s.cache != nil {
		if err := s.cache.DeletePrefix(ctx, statsKeyPrefix(ownerUID)); err != nil {
			s.logger.Warn("stats_cache_invalidate_failed",
				zap.String("owner_uid", logger.SanitizeUserID(ownerUID)),
				zap.Error(err),
			)
		}
	}

	if err := s.publisher.Publish(ctx, queue.NewEvent(eventType, ownerUID, taskIDs...)); err != nil {
		s.logger.Warn("task_event_publish_failed",
			zap.String("event_type", string(eventType)),
			zap.String("owner_uid", logger.SanitizeUserID(ownerUID)),
			zap.Error(err),
		)
	}
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) < MinTitleLength {
		return apperrors.Validation("Title must be at least %d characters", MinTitleLength)
	}
	return nil
}

// normalizePatch trims text fields and validates whatever the patch sets
func normalizePatch(p *models.TaskPatch) error {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if err := validateTitle(t); err != nil {
			return err
		}
		p.Title = &t
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		p.Description = &d
	}
	if p.Status != nil && !p.Status.Valid() {
		return apperrors.Validation("Invalid status %q", *p.Status)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return apperrors.Validation("Invalid priority %q", *p.Priority)
	}
	if p.DueDate.Set {
		due, err := canonicalDueDate(p.DueDate.Value)
		if err != nil {
			return err
		}
		p.DueDate.Value = due
	}
	return nil
}

// canonicalDueDate maps blank to null and rewrites parseable dates to the
// stored ISO form
func canonicalDueDate(due *string) (*string, error) {
	if due == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*due)
	if trimmed == "" {
		return nil, nil
	}
	canonical, ok := models.CanonicalISO(trimmed)
	if !ok {
		return nil, apperrors.Validation("Invalid dueDate %q", trimmed)
	}
	return &canonical, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
