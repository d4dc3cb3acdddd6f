package queue

import (
	"context"
)

// Publisher delivers task change events to downstream consumers
type Publisher interface {
	// Publish sends one event. Implementations must be safe for concurrent use.
	Publish(ctx context.Context, event *Event) error

	// Close releases the underlying connection
	Close() error

	// HealthCheck verifies the broker connection is healthy
	HealthCheck(ctx context.Context) error
}

// NoopPublisher discards every event. It is used when no broker is configured.
type NoopPublisher struct{}

// Publish does nothing
func (NoopPublisher) Publish(ctx context.Context, event *Event) error { return nil }

// Close does nothing
func (NoopPublisher) Close() error { return nil }

// HealthCheck always succeeds
func (NoopPublisher) HealthCheck(ctx context.Context) error { return nil }
