package nscache

import (
	"sync"
	"time"
)

// EventKind identifies a cache lifecycle event.
type EventKind string

const (
	// EventHit fires when a live entry is read.
	EventHit EventKind = "hit"
	// EventMiss fires when a lookup finds no entry.
	EventMiss EventKind = "miss"
	// EventSet fires after a value is stored.
	EventSet EventKind = "set"
	// EventDelete fires after an entry is explicitly removed.
	EventDelete EventKind = "delete"
	// EventClear fires after the cache is emptied; Count carries the number
	// of entries removed.
	EventClear EventKind = "clear"
	// EventEvict fires for each entry removed to satisfy the size limit.
	EventEvict EventKind = "evict"
	// EventExpired fires when an entry is removed because its TTL elapsed.
	EventExpired EventKind = "expired"
	// EventCleanup fires once per background sweep; Count carries the number
	// of expired entries removed.
	EventCleanup EventKind = "cleanup"
	// EventError fires for internal, non-propagated errors (durable mirror,
	// serialization); Err carries the detail.
	EventError EventKind = "error"
	// EventFactoryError fires when a GetOrSet factory fails. The failure
	// also propagates to the caller.
	EventFactoryError EventKind = "factory_error"
)

// Event is the payload delivered to subscribed handlers.
type Event struct {
	Kind      EventKind
	Namespace string
	Key       string
	Count     int
	Err       error
	Timestamp time.Time
}

// Handler receives cache events. Handlers run synchronously on the goroutine
// that triggered the event and must not block.
type Handler func(Event)

// notifier is a minimal publish/subscribe registry keyed by event kind.
// Subscribing returns an explicit unsubscribe closure.
type notifier struct {
	mu       sync.RWMutex
	handlers map[EventKind]map[int]Handler
	nextID   int
	closed   bool
}

func newNotifier() *notifier {
	return &notifier{handlers: make(map[EventKind]map[int]Handler)}
}

// on registers a handler for kind and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (n *notifier) on(kind EventKind, h Handler) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return func() {}
	}

	id := n.nextID
	n.nextID++
	if n.handlers[kind] == nil {
		n.handlers[kind] = make(map[int]Handler)
	}
	n.handlers[kind][id] = h

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if hs, ok := n.handlers[kind]; ok {
			delete(hs, id)
		}
	}
}

// emit delivers an event to every handler subscribed to its kind.
func (n *notifier) emit(ev Event) {
	n.mu.RLock()
	hs := n.handlers[ev.Kind]
	handlers := make([]Handler, 0, len(hs))
	for _, h := range hs {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// close detaches every handler; subsequent subscriptions are ignored.
func (n *notifier) close() {
	n.mu.Lock()
	n.handlers = make(map[EventKind]map[int]Handler)
	n.closed = true
	n.mu.Unlock()
}
