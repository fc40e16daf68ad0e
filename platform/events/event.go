// Package events defines the domain event contract shared by the in-process
// bus and the AMQP stream forwarder.
package events

import (
	"context"
	"time"
)

// Event is anything published on the bus. EventName doubles as the AMQP
// routing key, so it must be stable once consumers exist.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent stamps an event with the moment it was raised.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}

// Handler reacts to one published event. Returned errors are logged by the bus
// for async delivery and surfaced by PublishSync.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes events to the handlers subscribed under their EventName.
type Bus interface {
	// Publish delivers to every handler in the background; the caller never waits.
	Publish(ctx context.Context, event Event)

	// PublishSync runs handlers inline and returns their joined failures.
	PublishSync(ctx context.Context, event Event) error

	Subscribe(eventName string, handler Handler)
}
