// Package hooks provides the in-process event bus the Graph Executor
// publishes lifecycle events to, fanned out synchronously to whatever
// subscribers are registered, adapted from runtime/agent/hooks'
// synchronous fan-out bus. The executor drives the Stream Adapter and
// the Trace & Metrics Sink directly, not through this bus.
package hooks

import (
	"context"
	"fmt"
	"sync"
)

// EventType names one executor lifecycle event.
type EventType string

const (
	EventTaskCreated   EventType = "task_created"
	EventStepStarted   EventType = "step_started"
	EventStepComplete  EventType = "step_complete"
	EventRevisionRound EventType = "revision_round"
	EventTaskCompleted EventType = "task_completed"
)

// Event is a single published lifecycle event.
type Event struct {
	Type          EventType
	TaskID        string
	CorrelationID string
	Node          string
	Status        string
	Artifacts     map[string]any
	Err           error
}

// Subscriber reacts to published events. A non-nil return stops delivery
// to subsequent subscribers for that event, matching the bus's
// fail-fast iteration.
type Subscriber interface {
	HandleEvent(ctx context.Context, event Event) error
}

// SubscriberFunc adapts a plain function to Subscriber.
type SubscriberFunc func(ctx context.Context, event Event) error

func (f SubscriberFunc) HandleEvent(ctx context.Context, event Event) error { return f(ctx, event) }

// Subscription is an active registration; Close is idempotent.
type Subscription interface {
	Close() error
}

// Bus publishes events to registered subscribers synchronously in the
// publisher's goroutine. Subscribers are kept in a map, so the order in
// which they receive an event is not defined.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[*subscription]Subscriber
}

// NewBus constructs an empty, ready-to-use Bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[*subscription]Subscriber)}
}

type subscription struct {
	bus  *Bus
	once sync.Once
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subscribers, s)
		s.bus.mu.Unlock()
	})
	return nil
}

// Register adds a subscriber, returning a Subscription that unregisters
// it when closed.
func (b *Bus) Register(sub Subscriber) (Subscription, error) {
	if sub == nil {
		return nil, fmt.Errorf("hooks: subscriber is required")
	}
	s := &subscription{bus: b}
	b.mu.Lock()
	b.subscribers[s] = sub
	b.mu.Unlock()
	return s, nil
}

// Publish delivers event to every currently registered subscriber, in
// no defined order, stopping at the first error.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	subs := make([]Subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.HandleEvent(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
