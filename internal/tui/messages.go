package tui

import (
	"github.com/Iron-Ham/roster/internal/event"
	"github.com/Iron-Ham/roster/internal/notify"
)

// listChangedMsg is forwarded from event.ListChangedEvent.
type listChangedMsg struct {
	reason event.Reason
	count  int
}

// busyChangedMsg is forwarded from event.BusyChangedEvent.
type busyChangedMsg struct {
	busy bool
}

// notificationMsg is forwarded from notify.ShownEvent.
type notificationMsg struct {
	n notify.Notification
}

// toastExpiredMsg dismisses the toast with the given notification ID.
type toastExpiredMsg struct {
	id string
}

// operationDoneMsg is returned by the command that ran a controller operation.
type operationDoneMsg struct {
	op string
}

// optionsMsg carries reloaded display options.
type optionsMsg struct {
	opts Options
}

// eventToMsg converts a bus event into the message the model handles.
// Events the TUI does not render yield nil.
func eventToMsg(e event.Event) any {
	switch e := e.(type) {
	case event.ListChangedEvent:
		return listChangedMsg{reason: e.Reason, count: e.Count}
	case event.BusyChangedEvent:
		return busyChangedMsg{busy: e.Busy}
	case notify.ShownEvent:
		return notificationMsg{n: e.Notification}
	default:
		return nil
	}
}
