// Package event defines a synchronous pub-sub bus and the events roster
// components exchange through it. The controller publishes state changes
// and the TUI subscribes to redraw, so neither imports the other.
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a "category.action" identifier, e.g. "list.changed".
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeNotificationShown = "notification.shown"
	TypeListChanged       = "list.changed"
	TypeBusyChanged       = "busy.changed"
	TypeOperationFailed   = "operation.failed"
)

// Base provides the common fields of an event. Embed it in concrete event
// types, including ones declared outside this package.
type Base struct {
	eventType string
	timestamp time.Time
}

// NewBase creates a Base stamped with the current time.
func NewBase(eventType string) Base {
	return Base{eventType: eventType, timestamp: time.Now()}
}

func (e Base) EventType() string    { return e.eventType }
func (e Base) Timestamp() time.Time { return e.timestamp }

// Reason says which operation replaced or extended the list.
type Reason string

const (
	ReasonInitialize Reason = "initialize"
	ReasonRefresh    Reason = "refresh"
	ReasonAdd        Reason = "add"
)

// ListChangedEvent is emitted after the controller assigns a new list.
type ListChangedEvent struct {
	Base
	Reason Reason
	Count  int // length of the new list
}

// NewListChangedEvent creates a ListChangedEvent.
func NewListChangedEvent(reason Reason, count int) ListChangedEvent {
	return ListChangedEvent{
		Base:   NewBase(TypeListChanged),
		Reason: reason,
		Count:  count,
	}
}

// BusyChangedEvent is emitted when the busy flag flips.
type BusyChangedEvent struct {
	Base
	Busy bool
}

// NewBusyChangedEvent creates a BusyChangedEvent.
func NewBusyChangedEvent(busy bool) BusyChangedEvent {
	return BusyChangedEvent{
		Base: NewBase(TypeBusyChanged),
		Busy: busy,
	}
}

// OperationFailedEvent is emitted when an operation's fetch fails, whether
// or not the user is notified.
type OperationFailedEvent struct {
	Base
	Operation string
	Err       error
}

// NewOperationFailedEvent creates an OperationFailedEvent.
func NewOperationFailedEvent(operation string, err error) OperationFailedEvent {
	return OperationFailedEvent{
		Base:      NewBase(TypeOperationFailed),
		Operation: operation,
		Err:       err,
	}
}
