package events

import (
	"context"
	"fmt"
)

// Subscriber handles one delivered event. Implementations must be
// idempotent, keyed on Event.ID — the outbox worker may redeliver the
// same row after a crash between "subscribers ran" and "marked
// published".
type Subscriber interface {
	Name() string
	MinVersion() int
	Handle(ctx context.Context, event Event) error
}

// Bus is the in-process fan-out dispatcher. Per spec §9 "In-process vs.
// cross-process events", the outbox row is the durable contract; Bus is
// an intentionally swappable detail — a broker-backed implementation of
// the same interface could replace it without the mediator or handlers
// changing.
type Bus struct {
	subscribers map[Type][]Subscriber
}

// NewBus constructs an empty dispatcher.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[Type][]Subscriber)}
}

// Register adds a subscriber for the given event type.
func (b *Bus) Register(eventType Type, subscriber Subscriber) {
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber)
}

// Dispatch invokes every subscriber registered for event.Type, skipping
// any whose MinVersion exceeds the event's Version. It returns the first
// error encountered; callers (the outbox worker) decide retry policy.
func (b *Bus) Dispatch(ctx context.Context, event Event) error {
	for _, sub := range b.subscribers[event.Type] {
		if event.Version < sub.MinVersion() {
			continue
		}
		if err := sub.Handle(ctx, event); err != nil {
			return fmt.Errorf("subscriber %s failed on event %s: %w", sub.Name(), event.ID, err)
		}
	}
	return nil
}
