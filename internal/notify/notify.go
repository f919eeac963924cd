// Package notify defines the transient user-facing messages roster shows
// after an operation completes, and the sinks that deliver them.
package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Position is where the renderer anchors the notification.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

// DefaultPosition is used when none is configured.
const DefaultPosition = PositionBottom

// ParsePosition validates a configured position string.
func ParsePosition(s string) (Position, error) {
	switch Position(s) {
	case PositionTop, PositionBottom:
		return Position(s), nil
	default:
		return "", fmt.Errorf("invalid notification position %q (must be %q or %q)", s, PositionTop, PositionBottom)
	}
}

// Notification is a single transient message.
type Notification struct {
	ID         string
	Kind       Kind
	Title      string
	Message    string
	Position   Position
	Visibility time.Duration
	CreatedAt  time.Time
}

// New creates a Notification with a fresh ID.
func New(kind Kind, title, message string, pos Position, visibility time.Duration) Notification {
	return Notification{
		ID:         uuid.NewString(),
		Kind:       kind,
		Title:      title,
		Message:    message,
		Position:   pos,
		Visibility: visibility,
		CreatedAt:  time.Now(),
	}
}

// VisibilityMs returns how long the notification stays up, in milliseconds.
func (n Notification) VisibilityMs() int64 {
	return n.Visibility.Milliseconds()
}

// ExpiresAt returns when the renderer should dismiss the notification.
func (n Notification) ExpiresAt() time.Time {
	return n.CreatedAt.Add(n.Visibility)
}

// Sink displays notifications. Show is fire-and-forget and must return
// promptly; delivery failures are the sink's concern.
type Sink interface {
	Show(n Notification)
}

// SinkFunc adapts an ordinary function to the Sink interface.
type SinkFunc func(Notification)

// Show calls f.
func (f SinkFunc) Show(n Notification) { f(n) }

// Discard is a Sink that drops every notification.
var Discard Sink = SinkFunc(func(Notification) {})
