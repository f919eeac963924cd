// Package roster owns the user list state and the three operations that
// mutate it: Initialize, Refresh and AddOne.
//
// The Controller is the only writer. Renderers read immutable snapshots and
// learn about changes through the event bus. Operations never return errors:
// every failure is logged and, for Refresh and AddOne, reported to the user
// through a notify.Sink.
//
// Operations do not exclude each other. Two overlapping Refresh calls both
// fetch, and whichever fetch resolves last determines the final list. Busy
// is true while any Refresh or AddOne is in flight.
package roster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Iron-Ham/roster/internal/errors"
	"github.com/Iron-Ham/roster/internal/event"
	"github.com/Iron-Ham/roster/internal/logging"
	"github.com/Iron-Ham/roster/internal/notify"
	"github.com/Iron-Ham/roster/internal/source"
	"github.com/Iron-Ham/roster/internal/user"
)

// Operation names, used in logs and OperationFailedEvent.
const (
	OpInitialize = "initialize"
	OpRefresh    = "refresh"
	OpAddOne     = "add_one"
)

const (
	// DefaultBatchSize is how many users Initialize and Refresh request.
	DefaultBatchSize = 10
	// DefaultMinRefreshLatency is the pause before a refresh fetch starts,
	// so the loading indicator is always visible for at least this long.
	DefaultMinRefreshLatency = time.Second
)

// Snapshot is an immutable view of the controller state.
type Snapshot struct {
	List user.List
	Busy bool
}

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Controller holds the user list and the busy state.
type Controller struct {
	src  source.Source
	sink notify.Sink

	batchSize  int
	minLatency time.Duration
	catalog    notify.Catalog
	bus        *event.Bus
	logger     *logging.Logger
	sleep      SleepFunc

	mu       sync.Mutex
	list     user.List
	inFlight int
}

// Option configures a Controller.
type Option func(*Controller)

// WithBatchSize sets how many users Initialize and Refresh request.
// Values below one are ignored.
func WithBatchSize(n int) Option {
	return func(c *Controller) {
		if n >= 1 {
			c.batchSize = n
		}
	}
}

// WithMinRefreshLatency sets the pause before each refresh fetch.
// Negative values are treated as zero.
func WithMinRefreshLatency(d time.Duration) Option {
	return func(c *Controller) {
		if d < 0 {
			d = 0
		}
		c.minLatency = d
	}
}

// WithLogger sets the controller's logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBus publishes state-change events on bus.
func WithBus(bus *event.Bus) Option {
	return func(c *Controller) {
		c.bus = bus
	}
}

// WithCatalog replaces the notification copy and timings.
func WithCatalog(cat notify.Catalog) Option {
	return func(c *Controller) {
		c.catalog = cat
	}
}

// WithSleep replaces the refresh delay implementation.
func WithSleep(fn SleepFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// New creates a Controller with an empty list that is not busy.
// A nil sink discards notifications.
func New(src source.Source, sink notify.Sink, opts ...Option) *Controller {
	if sink == nil {
		sink = notify.Discard
	}
	c := &Controller{
		src:        src,
		sink:       sink,
		batchSize:  DefaultBatchSize,
		minLatency: DefaultMinRefreshLatency,
		catalog:    notify.DefaultCatalog(),
		logger:     logging.NopLogger(),
		sleep:      sleepContext,
		list:       user.List{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.catalog = c.catalog.WithBatchSize(c.batchSize)
	c.logger = c.logger.WithComponent("controller")
	return c
}

// Snapshot returns a copy of the current list and the busy flag.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		List: c.list.Clone(),
		Busy: c.inFlight > 0,
	}
}

// Busy reports whether a Refresh or AddOne is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// SetCatalog replaces the notification copy and timings for operations that
// complete after the call.
func (c *Controller) SetCatalog(cat notify.Catalog) {
	cat = cat.WithBatchSize(c.batchSize)
	c.mu.Lock()
	c.catalog = cat
	c.mu.Unlock()
}

// Initialize loads the first batch. On failure the list stays as it was and
// no notification is shown; the failure is logged and published as an
// OperationFailedEvent.
func (c *Controller) Initialize(ctx context.Context) {
	log := c.logger.WithOperation(OpInitialize)
	start := time.Now()

	users, err := c.fetch(ctx, c.batchSize)
	if ctx.Err() != nil {
		log.Debug("discarding result, context done", "error", ctx.Err())
		return
	}
	if err != nil {
		log.Error("initial load failed",
			"error", err.Error(),
			"severity", errors.GetSeverity(err).String(),
			"retryable", errors.IsRetryable(err),
		)
		c.publish(event.NewOperationFailedEvent(OpInitialize, err))
		return
	}

	n := c.replace(users)
	log.Info("initial load completed", "count", n, "duration_ms", time.Since(start).Milliseconds())
	c.publish(event.NewListChangedEvent(event.ReasonInitialize, n))
}

// Refresh waits the minimum refresh latency, fetches a new batch and
// replaces the whole list with it. The outcome is always notified.
func (c *Controller) Refresh(ctx context.Context) {
	log := c.logger.WithOperation(OpRefresh)
	start := time.Now()

	c.beginBusy()
	defer c.endBusy()

	if err := c.sleep(ctx, c.minLatency); err != nil {
		log.Debug("refresh abandoned during delay", "error", err)
		return
	}

	users, err := c.fetch(ctx, c.batchSize)
	if ctx.Err() != nil {
		log.Debug("discarding result, context done", "error", ctx.Err())
		return
	}
	if err != nil {
		log.Warn("refresh failed",
			"error", err.Error(),
			"severity", errors.GetSeverity(err).String(),
			"retryable", errors.IsRetryable(err),
		)
		c.publish(event.NewOperationFailedEvent(OpRefresh, err))
		c.notify(notify.RefreshFailed)
		return
	}

	n := c.replace(users)
	log.Info("refresh completed", "count", n, "duration_ms", time.Since(start).Milliseconds())
	c.publish(event.NewListChangedEvent(event.ReasonRefresh, n))
	c.notify(notify.RefreshSucceeded)
}

// AddOne fetches a single user and prepends it to the list.
// The outcome is always notified.
func (c *Controller) AddOne(ctx context.Context) {
	log := c.logger.WithOperation(OpAddOne)

	c.beginBusy()
	defer c.endBusy()

	users, err := c.fetch(ctx, 1)
	if ctx.Err() != nil {
		log.Debug("discarding result, context done", "error", ctx.Err())
		return
	}
	if err == nil && len(users) == 0 {
		err = errors.NewParseError("source returned no users", nil)
	}
	if err != nil {
		log.Warn("add failed",
			"error", err.Error(),
			"severity", errors.GetSeverity(err).String(),
			"retryable", errors.IsRetryable(err),
		)
		c.publish(event.NewOperationFailedEvent(OpAddOne, err))
		c.notify(notify.AddFailed)
		return
	}
	if len(users) > 1 {
		log.Warn("source returned extra users, keeping the first", "received", len(users))
	}

	c.mu.Lock()
	c.list = c.list.Prepend(users[0])
	n := len(c.list)
	dups := c.list.DuplicateUIDs()
	c.mu.Unlock()

	c.warnDuplicates(log, dups)
	log.Info("user added", "uid", users[0].UID.String(), "count", n)
	c.publish(event.NewListChangedEvent(event.ReasonAdd, n))
	c.notify(notify.AddSucceeded)
}

// fetch calls the source, turning a panic into an error.
func (c *Controller) fetch(ctx context.Context, count int) (users user.List, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("source panicked", "panic", fmt.Sprint(r))
			users = nil
			err = errors.NewNetworkError(fmt.Sprintf("source panicked: %v", r), nil).
				WithSeverity(errors.SeverityCritical)
		}
	}()
	return c.src.FetchBatch(ctx, count)
}

// replace swaps in a new list and returns its length.
func (c *Controller) replace(users user.List) int {
	if users == nil {
		users = user.List{}
	}
	c.mu.Lock()
	c.list = users
	n := len(users)
	dups := users.DuplicateUIDs()
	c.mu.Unlock()

	c.warnDuplicates(c.logger, dups)
	return n
}

func (c *Controller) warnDuplicates(log *logging.Logger, dups []user.UID) {
	if len(dups) == 0 {
		return
	}
	ids := make([]string, len(dups))
	for i, d := range dups {
		ids[i] = d.String()
	}
	log.Warn("list contains duplicate uids", "uids", ids)
}

func (c *Controller) beginBusy() {
	c.mu.Lock()
	c.inFlight++
	flipped := c.inFlight == 1
	c.mu.Unlock()

	if flipped {
		c.publish(event.NewBusyChangedEvent(true))
	}
}

func (c *Controller) endBusy() {
	c.mu.Lock()
	c.inFlight--
	flipped := c.inFlight == 0
	c.mu.Unlock()

	if flipped {
		c.publish(event.NewBusyChangedEvent(false))
	}
}

func (c *Controller) notify(o notify.Outcome) {
	c.mu.Lock()
	cat := c.catalog
	c.mu.Unlock()
	c.sink.Show(cat.Build(o))
}

func (c *Controller) publish(e event.Event) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
