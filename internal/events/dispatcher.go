package events

import (
	"context"
	"sync"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Subscription identifies a registered handler so it can be removed when a
// session tears down.
type Subscription struct {
	eventType EventType
	id        uint64
}

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler) Subscription
	Unsubscribe(sub Subscription)
}

type registration struct {
	id      uint64
	handler EventHandler
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[EventType][]registration
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]registration),
	}
}

// Publish synchronously invokes handlers for the given event.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := make([]EventHandler, 0, len(d.listeners[event.Type]))
	for _, reg := range d.listeners[event.Type] {
		handlers = append(handlers, reg.handler)
	}
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			// continue processing other handlers despite errors
		}
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.listeners[eventType] = append(d.listeners[eventType], registration{id: d.nextID, handler: handler})
	return Subscription{eventType: eventType, id: d.nextID}
}

// Unsubscribe removes a previously registered handler. Unknown
// subscriptions are ignored.
func (d *inMemoryDispatcher) Unsubscribe(sub Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	regs := d.listeners[sub.eventType]
	for i, reg := range regs {
		if reg.id == sub.id {
			d.listeners[sub.eventType] = append(regs[:i], regs[i+1:]...)
			return
		}
	}
}
