package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/roster/internal/notify"
	"github.com/Iron-Ham/roster/internal/user"
	"github.com/Iron-Ham/roster/internal/util"
)

// Layout constants
const (
	headerHeight = 2 // title line + filter line
	footerHeight = 2 // blank line + help bar
	toastHeight  = 3 // bordered single-line toast

	rowIndent    = 2 // selection border + padding
	minURLWidth  = 8
	urlSeparator = "  "
)

// listHeight is the number of rows that fit between header and footer. Room
// for a toast is always reserved so the list does not jump when one appears.
func (m Model) listHeight() int {
	if m.height <= 0 {
		return max(1, len(m.users))
	}
	h := m.height - headerHeight - footerHeight - toastHeight
	if m.showHelp {
		h -= len(m.keys.FullHelp()) - 1
	}
	return max(1, h)
}

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	toast := m.renderToast()
	position := notify.DefaultPosition
	if n, ok := m.currentToast(); ok && n.Position != "" {
		position = n.Position
	}

	sections := []string{m.renderHeader(), m.renderFilterLine()}
	if position == notify.PositionTop {
		sections = append(sections, toast)
	}
	sections = append(sections, m.renderList())
	if position != notify.PositionTop {
		sections = append(sections, toast)
	}
	sections = append(sections, "", m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("Roster")

	var count string
	rows := m.visible()
	if m.filter != nil {
		count = fmt.Sprintf("%d of %d users", len(rows), len(m.users))
	} else {
		count = fmt.Sprintf("%d users", len(m.users))
	}
	header := title + m.styles.Count.Render(count)

	if m.busy {
		header += " " + m.spinner.View()
	}
	return util.TruncateANSI(header, m.width)
}

func (m Model) renderFilterLine() string {
	switch {
	case m.filtering:
		line := m.filterInput.View()
		if m.filterErr != "" {
			line += "  " + m.styles.Count.Render("(incomplete pattern)")
		}
		return line
	case m.filter != nil:
		return m.styles.Filter.Render("filter: " + m.filter.Pattern())
	default:
		return ""
	}
}

// renderToast renders the newest notification, or a blank area of the same
// height when there is none.
func (m Model) renderToast() string {
	n, ok := m.currentToast()
	if !ok {
		return strings.Repeat("\n", toastHeight-1)
	}
	box := m.styles.Toast(n)
	if m.opts.AlignRight {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, box)
	}
	return box
}

func (m Model) renderList() string {
	height := m.listHeight()
	rows := m.visible()

	if len(rows) == 0 {
		var msg string
		switch {
		case m.initializing:
			msg = "Loading users..."
		case len(m.users) > 0:
			msg = "No users match the filter."
		default:
			msg = "No users. Press r to refresh or a to add one."
		}
		return m.padHeight(m.styles.Empty.Render(msg), height)
	}

	end := min(m.offset+height, len(rows))
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(rows[i], i == m.cursor))
	}
	return m.padHeight(strings.Join(lines, "\n"), height)
}

func (m Model) renderRow(u user.User, selected bool) string {
	badge := m.styles.AvatarBadge(u.Initials(), m.avatars.Color(u.UID.String()))
	line := badge + " " +
		m.styles.FirstName.Render(u.FirstName) + " " +
		m.styles.LastName.Render(u.LastName)

	avail := m.width - rowIndent
	if m.opts.ShowAvatarURL && u.Avatar != "" {
		room := avail - lipgloss.Width(line) - len(urlSeparator)
		if room >= minURLWidth {
			line += urlSeparator + m.styles.URL.Render(util.TruncateMiddle(u.Avatar, room))
		}
	}
	line = util.TruncateANSI(line, avail)

	if selected {
		line = m.styles.Selected.Render(line)
	} else {
		line = strings.Repeat(" ", rowIndent) + line
	}
	return util.Align(line, m.width, m.opts.AlignRight)
}

func (m Model) padHeight(s string, height int) string {
	if n := lipgloss.Height(s); n < height {
		s += strings.Repeat("\n", height-n)
	}
	return s
}
