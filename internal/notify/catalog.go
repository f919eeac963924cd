package notify

import (
	"fmt"
	"time"
)

// Outcome identifies which operation result a notification reports.
type Outcome int

const (
	RefreshSucceeded Outcome = iota
	RefreshFailed
	AddSucceeded
	AddFailed
)

func (o Outcome) String() string {
	switch o {
	case RefreshSucceeded:
		return "refresh_succeeded"
	case RefreshFailed:
		return "refresh_failed"
	case AddSucceeded:
		return "add_succeeded"
	case AddFailed:
		return "add_failed"
	default:
		return "unknown"
	}
}

// Template is the fixed content of one outcome's notification.
type Template struct {
	Kind       Kind
	Title      string
	Message    string
	Visibility time.Duration
}

// Catalog holds the notification copy for every outcome.
type Catalog struct {
	Position         Position
	RefreshSucceeded Template
	RefreshFailed    Template
	AddSucceeded     Template
	AddFailed        Template
}

// stockBatchSize is the refresh batch the stock copy describes.
const stockBatchSize = 10

// RefreshedMessage is the stock refresh success message for a batch of n users.
func RefreshedMessage(n int) string {
	return fmt.Sprintf("Refreshed to generate random %d users successfully 👋", n)
}

// DefaultCatalog returns the stock copy and timings.
func DefaultCatalog() Catalog {
	return Catalog{
		Position: DefaultPosition,
		RefreshSucceeded: Template{
			Kind:       KindInfo,
			Title:      "Refreshed",
			Message:    RefreshedMessage(stockBatchSize),
			Visibility: time.Second,
		},
		RefreshFailed: Template{
			Kind:       KindError,
			Title:      "Fail",
			Message:    "Fail to refresh the user list 😢",
			Visibility: time.Second,
		},
		AddSucceeded: Template{
			Kind:       KindSuccess,
			Title:      "Hello",
			Message:    "Added one new user successfully 👋",
			Visibility: time.Second,
		},
		AddFailed: Template{
			Kind:       KindError,
			Title:      "Oops",
			Message:    "Fail to add new user 😢",
			Visibility: 2 * time.Second,
		},
	}
}

// WithBatchSize returns a copy whose stock refresh message names n users.
// A refresh message that differs from the stock copy is kept as is.
func (c Catalog) WithBatchSize(n int) Catalog {
	if n > 0 && c.RefreshSucceeded.Message == RefreshedMessage(stockBatchSize) {
		c.RefreshSucceeded.Message = RefreshedMessage(n)
	}
	return c
}

// Template returns the template for o. Unknown outcomes get an empty template.
func (c Catalog) Template(o Outcome) Template {
	switch o {
	case RefreshSucceeded:
		return c.RefreshSucceeded
	case RefreshFailed:
		return c.RefreshFailed
	case AddSucceeded:
		return c.AddSucceeded
	case AddFailed:
		return c.AddFailed
	default:
		return Template{}
	}
}

// Build creates the notification for o.
func (c Catalog) Build(o Outcome) Notification {
	t := c.Template(o)
	pos := c.Position
	if pos == "" {
		pos = DefaultPosition
	}
	return New(t.Kind, t.Title, t.Message, pos, t.Visibility)
}
