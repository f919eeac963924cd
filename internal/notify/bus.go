package notify

import "github.com/Iron-Ham/roster/internal/event"

// ShownEvent carries a notification over the event bus.
type ShownEvent struct {
	event.Base
	Notification Notification
}

// NewShownEvent creates a ShownEvent.
func NewShownEvent(n Notification) ShownEvent {
	return ShownEvent{
		Base:         event.NewBase(event.TypeNotificationShown),
		Notification: n,
	}
}

// BusSink publishes every notification as a ShownEvent. Renderers subscribe
// to event.TypeNotificationShown.
type BusSink struct {
	bus *event.Bus
}

// NewBusSink creates a sink publishing on bus.
func NewBusSink(bus *event.Bus) *BusSink {
	return &BusSink{bus: bus}
}

// Show implements Sink.
func (s *BusSink) Show(n Notification) {
	s.bus.Publish(NewShownEvent(n))
}
