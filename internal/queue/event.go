package queue

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the routing key of a task change event
type EventType string

const (
	EventTaskCreated  EventType = "task.created"
	EventTaskUpdated  EventType = "task.updated"
	EventTaskDeleted  EventType = "task.deleted"
	EventTaskBulkDone EventType = "task.bulk_done"
)

// Event describes a committed write to one owner's tasks
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      EventType `json:"type"`
	OwnerUID  string    `json:"owner_uid"`
	TaskIDs   []string  `json:"task_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent creates an event for the given tasks
func NewEvent(eventType EventType, ownerUID string, taskIDs ...string) *Event {
	if taskIDs == nil {
		taskIDs = []string{}
	}
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		OwnerUID:  ownerUID,
		TaskIDs:   taskIDs,
		CreatedAt: time.Now().UTC(),
	}
}
