package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/roster/internal/logging"
	"github.com/Iron-Ham/roster/internal/notify"
	"github.com/Iron-Ham/roster/internal/roster"
	"github.com/Iron-Ham/roster/internal/tui/styles"
	"github.com/Iron-Ham/roster/internal/user"
)

// Controller is the part of roster.Controller the TUI drives.
type Controller interface {
	Initialize(ctx context.Context)
	Refresh(ctx context.Context)
	AddOne(ctx context.Context)
	Snapshot() roster.Snapshot
}

// Options controls presentation. All fields may change on config reload
// except AvatarSeed, which only applies when the model is created.
type Options struct {
	Theme         string
	AlignRight    bool
	ShowAvatarURL bool
	AvatarSeed    int64
}

// Model is the bubbletea model for the user list.
type Model struct {
	ctx    context.Context
	ctrl   Controller
	logger *logging.Logger
	opts   Options

	keys        keyMap
	help        help.Model
	spinner     spinner.Model
	filterInput textinput.Model
	styles      *styles.Styles
	avatars     *styles.AvatarPicker

	users        user.List
	busy         bool
	initializing bool

	filter    *user.Filter
	filtering bool
	filterErr string

	cursor   int
	offset   int
	selected user.UID

	// toasts holds visible notifications, oldest first.
	toasts []notify.Notification

	width    int
	height   int
	ready    bool
	quitting bool
	showHelp bool
}

// NewModel creates a model. Operations started from the model run with ctx,
// so canceling it discards any fetch still in flight.
func NewModel(ctx context.Context, ctrl Controller, opts Options, logger *logging.Logger) Model {
	if logger == nil {
		logger = logging.NopLogger()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "name or glob"
	ti.CharLimit = 64

	st := styles.New(styles.GetPalette(styles.ThemeName(opts.Theme)))
	sp.Style = st.Spinner

	return Model{
		ctx:          ctx,
		ctrl:         ctrl,
		logger:       logger.WithComponent("tui"),
		opts:         opts,
		keys:         defaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
		filterInput:  ti,
		styles:       st,
		avatars:      styles.NewAvatarPicker(styles.SeededIndex(opts.AvatarSeed)),
		initializing: true,
	}
}

// Init starts the initial load and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.run(roster.OpInitialize, m.ctrl.Initialize),
		m.spinner.Tick,
	)
}

// run wraps a controller operation in a command. The operation reports its
// outcome through the bus; the returned message only triggers a resync.
func (m Model) run(op string, fn func(context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return operationDoneMsg{op: op}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listChangedMsg:
		m.logger.Debug("list changed", "reason", string(msg.reason), "count", msg.count)
		m.sync()
		return m, nil

	case busyChangedMsg:
		m.busy = msg.busy
		return m, nil

	case operationDoneMsg:
		if msg.op == roster.OpInitialize {
			m.initializing = false
		}
		m.sync()
		return m, nil

	case notificationMsg:
		return m, m.showToast(msg.n)

	case toastExpiredMsg:
		m.dismissToast(msg.id)
		return m, nil

	case optionsMsg:
		m.applyOptions(msg.opts)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.run(roster.OpRefresh, m.ctrl.Refresh)

	case key.Matches(msg, m.keys.Add):
		return m, m.run(roster.OpAddOne, m.ctrl.AddOne)

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-len(m.users))
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.users))

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filterErr = ""
		return m, m.filterInput.Focus()

	case key.Matches(msg, m.keys.Clear):
		m.clearFilter()
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.clearFilter()
		return m, nil
	case tea.KeyEnter:
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)

	f, err := user.CompileFilter(m.filterInput.Value())
	if err != nil {
		// Keep the last good filter while the pattern is incomplete.
		m.filterErr = err.Error()
		return m, cmd
	}
	m.filterErr = ""
	m.filter = f
	m.restoreCursor()
	return m, cmd
}

func (m *Model) clearFilter() {
	m.filtering = false
	m.filter = nil
	m.filterErr = ""
	m.filterInput.Reset()
	m.filterInput.Blur()
	m.restoreCursor()
}

// sync replaces the rendered list with a fresh controller snapshot.
func (m *Model) sync() {
	snap := m.ctrl.Snapshot()
	m.users = snap.List
	m.busy = snap.Busy

	if dups := m.users.DuplicateUIDs(); len(dups) > 0 {
		m.logger.Warn("rendering list with duplicate uids", "uids", dups)
	}

	keep := make(map[string]bool, len(m.users))
	for _, u := range m.users {
		keep[u.UID.String()] = true
	}
	m.avatars.Forget(keep)

	m.restoreCursor()
}

// visible returns the users that pass the filter.
func (m Model) visible() user.List {
	return m.filter.Apply(m.users)
}

// restoreCursor keeps the selection on the same uid when it is still visible.
func (m *Model) restoreCursor() {
	rows := m.visible()
	if m.selected != "" {
		for i, u := range rows {
			if u.UID == m.selected {
				m.cursor = i
				m.clampCursor()
				return
			}
		}
	}
	m.clampCursor()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

// clampCursor bounds the cursor, records the selected uid and scrolls the
// window so the cursor row is on screen.
func (m *Model) clampCursor() {
	rows := m.visible()
	if len(rows) == 0 {
		m.cursor, m.offset = 0, 0
		m.selected = ""
		return
	}
	m.cursor = max(0, min(m.cursor, len(rows)-1))
	m.selected = rows[m.cursor].UID

	height := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}
	m.offset = max(0, min(m.offset, len(rows)-1))
}

func (m *Model) showToast(n notify.Notification) tea.Cmd {
	m.toasts = append(m.toasts, n)
	id := n.ID
	return tea.Tick(n.Visibility, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) dismissToast(id string) {
	for i, n := range m.toasts {
		if n.ID == id {
			m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
			return
		}
	}
}

// currentToast returns the newest visible notification.
func (m Model) currentToast() (notify.Notification, bool) {
	if len(m.toasts) == 0 {
		return notify.Notification{}, false
	}
	return m.toasts[len(m.toasts)-1], true
}

func (m *Model) applyOptions(opts Options) {
	if opts.Theme != m.opts.Theme {
		m.styles = styles.New(styles.GetPalette(styles.ThemeName(opts.Theme)))
		m.spinner.Style = m.styles.Spinner
	}
	opts.AvatarSeed = m.opts.AvatarSeed
	m.opts = opts
	m.logger.Info("display options reloaded", "theme", opts.Theme, "align_right", opts.AlignRight)
}
