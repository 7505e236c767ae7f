package pane

import (
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrMissingEventName is returned by On for an empty event name.
	ErrMissingEventName = errors.New("events.on: missing event name")
	// ErrNilHandler is returned by On for a nil handler.
	ErrNilHandler = errors.New("events.on: handler must be a function")
)

// Event is what subscribers receive.
type Event struct {
	Type   string
	Detail any
}

// Handler receives bus events.
type Handler func(Event)

type subscription struct {
	fn Handler
}

// EventBus is a per-page publish/subscribe channel between panes.
type EventBus struct {
	mu        sync.Mutex
	listeners map[string][]*subscription
}

// NewEventBus returns an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{listeners: make(map[string][]*subscription)}
}

// On subscribes h to name and returns the matching unsubscribe function.
// Unsubscribing more than once is harmless.
func (b *EventBus) On(name string, h Handler) (func(), error) {
	if name == "" {
		return nil, ErrMissingEventName
	}
	if h == nil {
		return nil, ErrNilHandler
	}
	sub := &subscription{fn: h}

	b.mu.Lock()
	b.listeners[name] = append(b.listeners[name], sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.listeners[name]
		for i, s := range list {
			if s == sub {
				b.listeners[name] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(b.listeners[name]) == 0 {
			delete(b.listeners, name)
		}
	}, nil
}

// Emit delivers detail to every handler subscribed to name at the time of
// the call. A panicking handler is logged and skipped.
func (b *EventBus) Emit(name string, detail any) {
	if name == "" {
		return
	}
	b.mu.Lock()
	snapshot := append([]*subscription(nil), b.listeners[name]...)
	b.mu.Unlock()

	if len(snapshot) == 0 {
		return
	}
	if detail == nil {
		detail = map[string]any{}
	}
	ev := Event{Type: name, Detail: detail}
	for _, s := range snapshot {
		dispatch(s.fn, ev)
	}
}

// Clear drops the subscriptions of the named events, or of every event when
// called without arguments.
func (b *EventBus) Clear(names ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(names) == 0 {
		b.listeners = make(map[string][]*subscription)
		return
	}
	for _, n := range names {
		delete(b.listeners, n)
	}
}

// Count returns the number of subscribers for name.
func (b *EventBus) Count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[name])
}

func dispatch(fn Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("event handler failed", "event", ev.Type, "panic", r)
		}
	}()
	fn(ev)
}
