package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/roster/internal/errors"
	"github.com/Iron-Ham/roster/internal/event"
	"github.com/Iron-Ham/roster/internal/notify"
	"github.com/Iron-Ham/roster/internal/roster"
	"github.com/Iron-Ham/roster/internal/testutil"
	"github.com/Iron-Ham/roster/internal/user"
)

type harness struct {
	ctrl  *roster.Controller
	bus   *event.Bus
	shown chan notify.Notification
}

func noSleep(context.Context, time.Duration) error { return nil }

func newHarness(t *testing.T, src *testutil.FakeSource) *harness {
	t.Helper()
	bus := event.NewBus()
	h := &harness{
		bus:   bus,
		shown: make(chan notify.Notification, 16),
		ctrl: roster.New(src, notify.NewBusSink(bus),
			roster.WithBus(bus),
			roster.WithSleep(noSleep),
		),
	}
	bus.Subscribe(event.TypeNotificationShown, func(e event.Event) {
		h.shown <- e.(notify.ShownEvent).Notification
	})
	return h
}

func (h *harness) lastNotification(t *testing.T) notify.Notification {
	t.Helper()
	select {
	case n := <-h.shown:
		return n
	default:
		t.Fatal("expected a notification to be shown")
		return notify.Notification{}
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key. For the operation keys it also runs the returned
// command and feeds its completion back into the model.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	m, cmd := update(t, m, keyPress(k))
	if k != "r" && k != "a" {
		return m
	}
	if cmd == nil {
		t.Fatalf("key %q should start an operation", k)
	}
	done, ok := cmd().(operationDoneMsg)
	if !ok {
		t.Fatalf("key %q command did not return operationDoneMsg", k)
	}
	m, _ = update(t, m, done)
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// loaded returns a sized model after a completed initial load.
func loaded(t *testing.T, h *harness, opts Options) Model {
	t.Helper()
	m := NewModel(context.Background(), h.ctrl, opts, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	done := m.run(roster.OpInitialize, h.ctrl.Initialize)()
	m, _ = update(t, m, done)
	return m
}

func TestModel_ViewBeforeReady(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := NewModel(context.Background(), h.ctrl, Options{}, nil)

	if got := m.View(); got != "Loading..." {
		t.Errorf("View() before window size = %q", got)
	}
	if m.Init() == nil {
		t.Error("Init should return a command")
	}
}

func TestModel_InitialLoad(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := NewModel(context.Background(), h.ctrl, Options{}, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	if !strings.Contains(m.View(), "Loading users...") {
		t.Error("expected loading message before the initial load completes")
	}

	done := m.run(roster.OpInitialize, h.ctrl.Initialize)()
	m, _ = update(t, m, done)

	if len(m.users) != roster.DefaultBatchSize {
		t.Fatalf("users = %d, want %d", len(m.users), roster.DefaultBatchSize)
	}
	if m.initializing {
		t.Error("initializing should be false after the initial load")
	}
	view := m.View()
	if !strings.Contains(view, "10 users") {
		t.Error("header should show the user count")
	}
	if !strings.Contains(view, "auto00") {
		t.Error("first user should be rendered")
	}
	if len(h.shown) != 0 {
		t.Error("initial load must not show a notification")
	}
}

func TestModel_InitialLoadFailureShowsEmptyList(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource(testutil.Fail(errors.ErrNetwork)))
	m := loaded(t, h, Options{})

	if len(m.users) != 0 {
		t.Fatalf("users = %d, want 0", len(m.users))
	}
	if !strings.Contains(m.View(), "No users.") {
		t.Error("expected empty-list hint")
	}
}

func TestModel_RefreshKeyReplacesList(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := loaded(t, h, Options{})

	m = press(t, m, "r")

	if got := m.users[0].UID; got != "auto1-0" {
		t.Errorf("head uid = %q, want auto1-0", got)
	}
	if len(m.users) != roster.DefaultBatchSize {
		t.Errorf("users = %d, want %d", len(m.users), roster.DefaultBatchSize)
	}
	if n := h.lastNotification(t); n.Title != "Refreshed" {
		t.Errorf("notification title = %q, want Refreshed", n.Title)
	}
}

func TestModel_AddKeyPrependsAndKeepsSelection(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := loaded(t, h, Options{})

	m = press(t, m, "down")
	m = press(t, m, "j")
	if m.selected != "auto0-2" {
		t.Fatalf("selected = %q, want auto0-2", m.selected)
	}

	m = press(t, m, "a")

	if len(m.users) != roster.DefaultBatchSize+1 {
		t.Fatalf("users = %d, want %d", len(m.users), roster.DefaultBatchSize+1)
	}
	if m.users[0].UID != "auto1-0" {
		t.Errorf("head uid = %q, want auto1-0", m.users[0].UID)
	}
	if m.selected != "auto0-2" || m.cursor != 3 {
		t.Errorf("selection = %q at %d, want auto0-2 at 3", m.selected, m.cursor)
	}
	if n := h.lastNotification(t); n.Title != "Hello" {
		t.Errorf("notification title = %q, want Hello", n.Title)
	}
}

func TestModel_CursorBounds(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := loaded(t, h, Options{})

	m = press(t, m, "k")
	if m.cursor != 0 {
		t.Errorf("cursor = %d after moving up from top", m.cursor)
	}
	m = press(t, m, "G")
	if m.cursor != len(m.users)-1 {
		t.Errorf("cursor = %d, want last row", m.cursor)
	}
	m = press(t, m, "j")
	if m.cursor != len(m.users)-1 {
		t.Errorf("cursor moved past the last row: %d", m.cursor)
	}
	m = press(t, m, "g")
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestModel_ScrollKeepsCursorVisible(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := NewModel(context.Background(), h.ctrl, Options{}, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 12})
	m, _ = update(t, m, m.run(roster.OpInitialize, h.ctrl.Initialize)())

	height := m.listHeight()
	if height >= len(m.users) {
		t.Fatalf("test needs a window shorter than the list, height=%d", height)
	}

	m = press(t, m, "G")
	if m.offset != len(m.users)-height {
		t.Errorf("offset = %d, want %d", m.offset, len(m.users)-height)
	}
	if !strings.Contains(m.View(), m.users[len(m.users)-1].FirstName) {
		t.Error("last row should be visible after jumping to the bottom")
	}
}

func TestModel_Filter(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := loaded(t, h, Options{})

	m = press(t, m, "/")
	if !m.filtering {
		t.Fatal("expected filter mode")
	}

	m = typeText(t, m, "auto03")
	if rows := m.visible(); len(rows) != 1 || rows[0].UID != "auto0-3" {
		t.Fatalf("visible = %v, want [auto0-3]", rows.UIDs())
	}
	if m.selected != "auto0-3" {
		t.Errorf("selected = %q, want auto0-3", m.selected)
	}

	// Keys typed in filter mode go to the input, not the keymap.
	if len(m.users) != roster.DefaultBatchSize {
		t.Error("typing in the filter must not trigger operations")
	}

	m = press(t, m, "enter")
	if m.filtering || m.filter == nil {
		t.Fatal("enter should keep the filter and leave input mode")
	}
	if !strings.Contains(m.View(), "1 of 10 users") {
		t.Error("header should show the filtered count")
	}

	m = press(t, m, "esc")
	if m.filter != nil || len(m.visible()) != roster.DefaultBatchSize {
		t.Error("esc should clear the filter")
	}
	if m.selected != "auto0-3" {
		t.Errorf("selection should survive clearing the filter, got %q", m.selected)
	}
}

func TestModel_FilterIncompletePatternKeepsLastFilter(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := loaded(t, h, Options{})

	m = press(t, m, "/")
	m = typeText(t, m, "auto0")
	m = typeText(t, m, "[")
	if m.filterErr == "" {
		t.Error("expected an error for an unclosed range")
	}
	if len(m.visible()) != roster.DefaultBatchSize {
		t.Error("last good filter should stay applied")
	}

	m = typeText(t, m, "12]*")
	if m.filterErr != "" {
		t.Errorf("unexpected filter error: %s", m.filterErr)
	}
	if rows := m.visible(); len(rows) != 2 {
		t.Errorf("visible = %v, want auto0-1 and auto0-2", rows.UIDs())
	}
}

func TestModel_FilterNoMatches(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := loaded(t, h, Options{})

	m = press(t, m, "/")
	m = typeText(t, m, "nobody")

	if !strings.Contains(m.View(), "No users match the filter.") {
		t.Error("expected no-match message")
	}
	if m.selected != "" {
		t.Errorf("selected = %q, want none", m.selected)
	}
}

func TestModel_Toasts(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := loaded(t, h, Options{})

	n := notify.DefaultCatalog().Build(notify.AddFailed)
	m, cmd := update(t, m, notificationMsg{n: n})
	if cmd == nil {
		t.Fatal("showing a toast should schedule its expiry")
	}
	if !strings.Contains(m.View(), "Oops") {
		t.Error("toast should be visible")
	}

	m, _ = update(t, m, toastExpiredMsg{id: "some-other-id"})
	if len(m.toasts) != 1 {
		t.Error("expiring an unknown id must not remove the toast")
	}

	m, _ = update(t, m, toastExpiredMsg{id: n.ID})
	if len(m.toasts) != 0 {
		t.Error("toast should be dismissed")
	}
	if strings.Contains(m.View(), "Oops") {
		t.Error("dismissed toast should not be rendered")
	}
}

func TestModel_ToastPosition(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := loaded(t, h, Options{})

	for _, pos := range []notify.Position{notify.PositionTop, notify.PositionBottom} {
		t.Run(string(pos), func(t *testing.T) {
			n := notify.New(notify.KindInfo, "Refreshed", "", pos, time.Second)
			m, _ := update(t, m, notificationMsg{n: n})

			view := m.View()
			toastAt := strings.Index(view, "Refreshed")
			rowAt := strings.Index(view, "auto00")
			if toastAt < 0 || rowAt < 0 {
				t.Fatal("expected both toast and first row in the view")
			}
			if (pos == notify.PositionTop) != (toastAt < rowAt) {
				t.Errorf("toast at %d, first row at %d for position %s", toastAt, rowAt, pos)
			}
		})
	}
}

func TestModel_BusyShowsSpinner(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := loaded(t, h, Options{})

	idle := m.renderHeader()
	m, _ = update(t, m, busyChangedMsg{busy: true})
	if m.renderHeader() == idle {
		t.Error("header should change while busy")
	}
	m, _ = update(t, m, busyChangedMsg{busy: false})
	if m.renderHeader() != idle {
		t.Error("header should return to idle")
	}
}

func TestModel_RowRendering(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	u := user.User{
		UID:       "x1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Avatar:    "https://robohash.org/a-very-long-avatar-path-that-will-not-fit.png?size=300x300&set=set1",
	}

	t.Run("avatar url", func(t *testing.T) {
		m := loaded(t, h, Options{ShowAvatarURL: true})
		row := m.renderRow(u, false)
		if !strings.Contains(row, "AL") {
			t.Error("row should contain the initials badge")
		}
		if !strings.Contains(row, "robohash") {
			t.Error("row should contain the start of the avatar url")
		}
	})

	t.Run("hide avatar url", func(t *testing.T) {
		m := loaded(t, h, Options{})
		if strings.Contains(m.renderRow(u, false), "robohash") {
			t.Error("avatar url should be hidden")
		}
	})

	t.Run("align right", func(t *testing.T) {
		m := loaded(t, h, Options{AlignRight: true})
		row := m.renderRow(u, false)
		if !strings.HasPrefix(row, "          ") {
			t.Errorf("right-aligned row should be padded on the left: %q", row)
		}
	})

	t.Run("stable avatar color", func(t *testing.T) {
		m := loaded(t, h, Options{AvatarSeed: 7})
		if m.renderRow(u, false) != m.renderRow(u, false) {
			t.Error("rendering the same user twice should be identical")
		}
	})
}

func TestModel_QuitKeys(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())

	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			m := loaded(t, h, Options{})
			m, cmd := update(t, m, keyPress(k))
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
			if m.View() != "" {
				t.Error("view should be empty after quitting")
			}
		})
	}
}

func TestModel_HelpToggle(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := loaded(t, h, Options{})

	short := m.listHeight()
	m = press(t, m, "?")
	if !m.showHelp {
		t.Fatal("expected full help")
	}
	if m.listHeight() >= short {
		t.Error("full help should take rows from the list")
	}
	m = press(t, m, "?")
	if m.showHelp {
		t.Error("expected short help")
	}
}

func TestModel_ApplyOptions(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	m := loaded(t, h, Options{Theme: "default", AvatarSeed: 3})
	before := m.styles

	m, _ = update(t, m, optionsMsg{opts: Options{Theme: "nord", AlignRight: true, AvatarSeed: 99}})

	if m.styles == before {
		t.Error("theme change should rebuild styles")
	}
	if !m.opts.AlignRight {
		t.Error("align option should be applied")
	}
	if m.opts.AvatarSeed != 3 {
		t.Errorf("avatar seed = %d, reload must not change it", m.opts.AvatarSeed)
	}
}

func TestModel_ListChangedResyncs(t *testing.T) {
	src := testutil.NewFakeSource(testutil.Succeed(testutil.MakeUsers("a", 3)))
	h := newHarness(t, src)
	m := NewModel(context.Background(), h.ctrl, Options{}, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	// The controller changes outside the model; the bus event triggers a resync.
	h.ctrl.Initialize(context.Background())
	m, _ = update(t, m, listChangedMsg{reason: event.ReasonInitialize, count: 3})

	if len(m.users) != 3 {
		t.Errorf("users = %d, want 3", len(m.users))
	}
}

func TestModel_DuplicateUIDsRender(t *testing.T) {
	dup := user.List{
		{UID: "same", FirstName: "One"},
		{UID: "same", FirstName: "Two"},
	}
	h := newHarness(t, testutil.NewFakeSource(testutil.Succeed(dup)))
	m := loaded(t, h, Options{})

	view := m.View()
	if !strings.Contains(view, "One") || !strings.Contains(view, "Two") {
		t.Error("both rows should render even when uids collide")
	}
	if m.avatars.Len() != 1 {
		t.Errorf("avatar colors = %d, want one per uid", m.avatars.Len())
	}
}

func TestEventToMsg(t *testing.T) {
	n := notify.New(notify.KindSuccess, "Hello", "", notify.PositionBottom, time.Second)

	tests := []struct {
		name string
		in   event.Event
		want any
	}{
		{"list changed", event.NewListChangedEvent(event.ReasonAdd, 4), listChangedMsg{reason: event.ReasonAdd, count: 4}},
		{"busy changed", event.NewBusyChangedEvent(true), busyChangedMsg{busy: true}},
		{"notification", notify.NewShownEvent(n), notificationMsg{n: n}},
		{"ignored", event.NewOperationFailedEvent(roster.OpRefresh, errors.ErrNetwork), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eventToMsg(tt.in); got != tt.want {
				t.Errorf("eventToMsg() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestApp_ReloadBeforeRunIsNoop(t *testing.T) {
	h := newHarness(t, testutil.NewFakeSource())
	app := New(context.Background(), h.ctrl, h.bus, Options{}, nil)
	app.Reload(Options{Theme: "nord"})
}
