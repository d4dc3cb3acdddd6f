package tasks

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/benvon/task-tracker/internal/database"
	"github.com/benvon/task-tracker/internal/logger"
	"github.com/benvon/task-tracker/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultStatsLimit = 8
	MaxStatsLimit     = 50

	day = 24 * time.Hour
)

// RawStatsQuery carries statistics parameters as received from the client
type RawStatsQuery struct {
	Period string
	From   string
	To     string
	Limit  string
}

// StatsQuery is a normalized statistics request
type StatsQuery struct {
	Period models.StatsPeriod
	// From and To bound createdAt for CUSTOM periods; zero means open
	From  time.Time
	To    time.Time
	Limit int
}

// NormalizeStatsQuery defaults an unknown period to ALL and clamps the limit.
// A date-only To bound covers that whole day.
func NormalizeStatsQuery(raw RawStatsQuery) StatsQuery {
	q := StatsQuery{
		Period: models.StatsPeriodAll,
		Limit:  clamp(parseLeadingInt(raw.Limit, DefaultStatsLimit), 1, MaxStatsLimit),
	}

	switch p := models.StatsPeriod(strings.ToUpper(strings.TrimSpace(raw.Period))); p {
	case models.StatsPeriod7D, models.StatsPeriod30D, models.StatsPeriod90D, models.StatsPeriodCustom:
		q.Period = p
	}

	if q.Period == models.StatsPeriodCustom {
		if from, ok := models.ParseISO(strings.TrimSpace(raw.From)); ok {
			q.From = from
		}
		to := strings.TrimSpace(raw.To)
		if ts, ok := models.ParseISO(to); ok {
			if len(to) == len("2006-01-02") {
				ts = ts.Add(day - time.Millisecond)
			}
			q.To = ts
		}
	}
	return q
}

// cacheKey identifies the query within one owner's cache namespace
func (q StatsQuery) cacheKey(ownerUID string, now time.Time) string {
	parts := []string{
		string(q.Period),
		strconv.Itoa(q.Limit),
		// stats shift with the calendar day
		now.UTC().Format("2006-01-02"),
	}
	if q.Period == models.StatsPeriodCustom {
		parts = append(parts, models.FormatISO(q.From), models.FormatISO(q.To))
	}
	return statsKeyPrefix(ownerUID) + strings.Join(parts, ":")
}

func statsKeyPrefix(ownerUID string) string {
	return "stats:" + ownerUID + ":"
}

// window returns the createdAt bounds for the period
func (q StatsQuery) window(now time.Time) (time.Time, time.Time) {
	switch q.Period {
	case models.StatsPeriod7D:
		return now.Add(-7 * day), time.Time{}
	case models.StatsPeriod30D:
		return now.Add(-30 * day), time.Time{}
	case models.StatsPeriod90D:
		return now.Add(-90 * day), time.Time{}
	case models.StatsPeriodCustom:
		return q.From, q.To
	default:
		return time.Time{}, time.Time{}
	}
}

// Stats aggregates the owner's non-deleted tasks created within the period
func (s *Service) Stats(ctx context.Context, ownerUID string, q StatsQuery) (*models.TaskStats, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Stats")
	defer span.End()

	now := s.now()
	key := q.cacheKey(ownerUID, now)

	if s.cache != nil {
		var cached models.TaskStats
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("stats_cache_get_failed",
				zap.String("owner_uid", logger.SanitizeUserID(ownerUID)),
				zap.Error(err),
			)
		}
		if found {
			return &cached, nil
		}
	}

	all, err := s.store.Find(ctx, database.TaskQuery{
		Filter:  database.TaskFilter{OwnerUID: ownerUID},
		OrderBy: database.SortKeyCreatedAt,
	})
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to load tasks for stats: %w", err)
	}

	from, to := q.window(now)
	stats := computeStats(all, from, to, now, q.Limit)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats); err != nil {
			s.logger.Warn("stats_cache_set_failed",
				zap.String("owner_uid", logger.SanitizeUserID(ownerUID)),
				zap.Error(err),
			)
		}
	}
	return stats, nil
}

type dueTask struct {
	task *models.Task
	due  time.Time
}

// computeStats is pure so it can be tested against a fixed clock.
// Due-date counters only consider tasks that are not Done; "today" is the
// UTC calendar day containing now.
func computeStats(all []*models.Task, from, to, now time.Time, limit int) *models.TaskStats {
	stats := &models.TaskStats{
		ByStatus: map[models.TaskStatus]int{
			models.TaskStatusTodo:       0,
			models.TaskStatusInProgress: 0,
			models.TaskStatusDone:       0,
		},
		ByPriority: map[models.TaskPriority]int{
			models.TaskPriorityLow:    0,
			models.TaskPriorityMedium: 0,
			models.TaskPriorityHigh:   0,
		},
		OverdueTasks: []models.TaskOutput{},
		DueSoonTasks: []models.TaskOutput{},
	}

	today := now.UTC().Truncate(day)
	tomorrow := today.Add(day)
	weekEnd := today.Add(8 * day)

	var overdue, dueSoon []dueTask
	done := 0
	for _, t := range all {
		if t.IsDeleted {
			continue
		}
		if !from.IsZero() && t.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && t.CreatedAt.After(to) {
			continue
		}

		stats.Total++
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
		if t.Status == models.TaskStatusDone {
			done++
		}

		if t.DueDate == nil {
			continue
		}
		stats.WithDue++

		due, ok := models.ParseISO(*t.DueDate)
		if !ok || t.Status == models.TaskStatusDone {
			continue
		}
		switch {
		case due.Before(today):
			stats.Overdue++
			overdue = append(overdue, dueTask{task: t, due: due})
		case due.Before(tomorrow):
			stats.DueToday++
			dueSoon = append(dueSoon, dueTask{task: t, due: due})
		case due.Before(weekEnd):
			stats.DueNext7++
			dueSoon = append(dueSoon, dueTask{task: t, due: due})
		}
	}

	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(done) / float64(stats.Total) * 100))
	}
	stats.OverdueTasks = topByDue(overdue, limit)
	stats.DueSoonTasks = topByDue(dueSoon, limit)
	return stats
}

func topByDue(tasks []dueTask, limit int) []models.TaskOutput {
	slices.SortStableFunc(tasks, func(a, b dueTask) int {
		if c := a.due.Compare(b.due); c != 0 {
			return c
		}
		return cmp.Compare(a.task.ID, b.task.ID)
	})
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}

	out := make([]models.TaskOutput, 0, len(tasks))
	for _, dt := range tasks {
		out = append(out, dt.task.Output())
	}
	return out
}
