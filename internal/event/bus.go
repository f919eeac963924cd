package event

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Iron-Ham/roster/internal/logging"
)

// wildcard is the subscription key used by SubscribeAll.
const wildcard = "*"

// Handler is a function that handles an event.
type Handler func(Event)

type subscription struct {
	id      string
	handler Handler
}

// Bus is a synchronous pub-sub event bus. Publish runs every matching
// handler on the caller's goroutine before returning.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string][]subscription // eventType -> subscriptions
	nextID        atomic.Uint64
	logger        *logging.Logger
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithBusLogger sets the logger that receives recovered handler panics.
func WithBusLogger(l *logging.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l.WithComponent("event")
		}
	}
}

// NewBus creates a new event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subscriptions: make(map[string][]subscription),
		logger:        logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler for a specific event type.
// Returns a subscription ID that can be used to unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := "sub-" + strconv.FormatUint(b.nextID.Add(1), 10)
	b.subscriptions[eventType] = append(b.subscriptions[eventType], subscription{id: id, handler: handler})
	return id
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.Subscribe(wildcard, handler)
}

// Unsubscribe removes a subscription by ID.
// Returns true if the subscription was found and removed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id != id {
				continue
			}
			// Publish may be iterating a copy of the old slice, so build a new one.
			kept := make([]subscription, 0, len(subs)-1)
			kept = append(kept, subs[:i]...)
			kept = append(kept, subs[i+1:]...)
			if len(kept) == 0 {
				delete(b.subscriptions, eventType)
			} else {
				b.subscriptions[eventType] = kept
			}
			return true
		}
	}
	return false
}

// Publish dispatches an event to all registered handlers.
// Handlers for the event's type run first, then wildcard handlers, each
// group in registration order. A panicking handler is logged and skipped.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	eventType := e.EventType()
	specific := append([]subscription(nil), b.subscriptions[eventType]...)
	all := append([]subscription(nil), b.subscriptions[wildcard]...)
	b.mu.RUnlock()

	for _, sub := range specific {
		b.safeCall(sub, e)
	}
	for _, sub := range all {
		b.safeCall(sub, e)
	}
}

func (b *Bus) safeCall(sub subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event_type", e.EventType(),
				"subscription", sub.id,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	sub.handler(e)
}

// Clear removes all subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = make(map[string][]subscription)
}

// SubscriptionCount returns the total number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, subs := range b.subscriptions {
		count += len(subs)
	}
	return count
}
