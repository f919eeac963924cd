// Package tui renders the user list as a bubbletea program.
//
// The model never mutates controller state. Controller operations run as
// commands; their outcomes reach the program as bus events forwarded with
// program.Send, after which the model re-reads a snapshot.
package tui

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/roster/internal/event"
	"github.com/Iron-Ham/roster/internal/logging"
)

// App wraps the bubbletea program.
type App struct {
	mu      sync.Mutex
	program *tea.Program
	model   Model
	bus     *event.Bus
	logger  *logging.Logger
	cancel  context.CancelFunc
	extra   []tea.ProgramOption
}

// AppOption configures an App.
type AppOption func(*App)

// WithProgramOptions passes extra options to tea.NewProgram.
func WithProgramOptions(opts ...tea.ProgramOption) AppOption {
	return func(a *App) {
		a.extra = append(a.extra, opts...)
	}
}

// New creates a TUI application. ctx bounds the session: operations still in
// flight when the TUI exits are canceled and their results discarded.
func New(ctx context.Context, ctrl Controller, bus *event.Bus, opts Options, logger *logging.Logger, appOpts ...AppOption) *App {
	if logger == nil {
		logger = logging.NopLogger()
	}
	ctx, cancel := context.WithCancel(ctx)
	a := &App{
		model:  NewModel(ctx, ctrl, opts, logger),
		bus:    bus,
		logger: logger.WithComponent("tui"),
		cancel: cancel,
	}
	for _, opt := range appOpts {
		opt(a)
	}
	return a
}

// Run starts the TUI and blocks until the user quits or a termination
// signal arrives.
func (a *App) Run() error {
	defer a.cancel()

	programOpts := append([]tea.ProgramOption{tea.WithAltScreen()}, a.extra...)
	program := tea.NewProgram(a.model, programOpts...)

	a.mu.Lock()
	a.program = program
	a.mu.Unlock()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-sigChan:
			a.logger.Info("received termination signal")
			program.Send(tea.Quit())
		case <-done:
		}
	}()

	var subID string
	if a.bus != nil {
		subID = a.bus.SubscribeAll(func(e event.Event) {
			if msg := eventToMsg(e); msg != nil {
				program.Send(msg)
			}
		})
		defer a.bus.Unsubscribe(subID)
	}

	a.logger.Info("tui started")
	_, err := program.Run()
	a.logger.Info("tui stopped")

	a.mu.Lock()
	a.program = nil
	a.mu.Unlock()

	return err
}

// Reload applies new display options to a running TUI. It is a no-op when
// the program is not running.
func (a *App) Reload(opts Options) {
	a.mu.Lock()
	p := a.program
	a.mu.Unlock()
	if p != nil {
		p.Send(optionsMsg{opts: opts})
	}
}
