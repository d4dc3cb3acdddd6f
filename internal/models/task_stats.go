package models

// StatsPeriod selects the creation window a statistics request covers
type StatsPeriod string

const (
	StatsPeriodAll    StatsPeriod = "ALL"
	StatsPeriod7D     StatsPeriod = "7D"
	StatsPeriod30D    StatsPeriod = "30D"
	StatsPeriod90D    StatsPeriod = "90D"
	StatsPeriodCustom StatsPeriod = "CUSTOM"
)

// TaskStats is the dashboard aggregate for one owner
type TaskStats struct {
	Total          int                  `json:"total"`
	CompletionRate int                  `json:"completionRate"`
	ByStatus       map[TaskStatus]int   `json:"byStatus"`
	ByPriority     map[TaskPriority]int `json:"byPriority"`
	WithDue        int                  `json:"withDue"`
	Overdue        int                  `json:"overdue"`
	DueToday       int                  `json:"dueToday"`
	DueNext7       int                  `json:"dueNext7"`
	OverdueTasks   []TaskOutput         `json:"overdueTasks"`
	DueSoonTasks   []TaskOutput         `json:"dueSoonTasks"`
}
