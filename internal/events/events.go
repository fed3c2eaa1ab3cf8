// Package events carries the in-process domain events behind the request
// audit trail. There is no external broker: push notifications are out of
// scope, the trail is the only consumer.
package events

import (
	"context"
	"sync"
	"time"
)

type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestAssigned      EventType = "request_assigned"
)

// Event is one domain event emitted by the orchestrator or the assignment
// flow.
type Event struct {
	Type      EventType
	RequestID string
	ActorID   string
	Detail    string
	Timestamp time.Time
}

type Handler func(context.Context, Event)

// Dispatcher fans events out to subscribed handlers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event)
	Subscribe(eventType EventType, handler Handler)
}

type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]Handler
}

func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]Handler),
	}
}

// Publish invokes handlers synchronously, in subscription order. Handlers own
// their failure handling; a failing handler never blocks the emitting flow.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	d.mu.RLock()
	handlers := append([]Handler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}

func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
