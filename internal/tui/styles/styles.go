// Package styles defines the lipgloss styles used by the roster TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/roster/internal/notify"
)

// Styles holds every style the TUI renders with, derived from one palette.
type Styles struct {
	Palette *ColorPalette

	Title     lipgloss.Style
	Count     lipgloss.Style
	Spinner   lipgloss.Style
	FirstName lipgloss.Style
	LastName  lipgloss.Style
	URL       lipgloss.Style
	Selected  lipgloss.Style
	Empty     lipgloss.Style
	Help      lipgloss.Style
	HelpKey   lipgloss.Style
	Filter    lipgloss.Style
	Badge     lipgloss.Style

	toastBase  lipgloss.Style
	toastTitle lipgloss.Style
}

// New builds Styles from p. A nil palette uses DefaultPalette.
func New(p *ColorPalette) *Styles {
	if p == nil {
		p = DefaultPalette()
	}
	return &Styles{
		Palette: p,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			MarginRight(1),
		Count:     lipgloss.NewStyle().Foreground(p.Muted),
		Spinner:   lipgloss.NewStyle().Foreground(p.Primary),
		FirstName: lipgloss.NewStyle().Bold(true).Foreground(p.Text),
		LastName:  lipgloss.NewStyle().Foreground(p.Muted),
		URL:       lipgloss.NewStyle().Foreground(p.Muted).Italic(true),
		Selected: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(p.Primary).
			PaddingLeft(1),
		Empty:   lipgloss.NewStyle().Foreground(p.Muted).Italic(true).Padding(1, 2),
		Help:    lipgloss.NewStyle().Foreground(p.Muted),
		HelpKey: lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		Filter:  lipgloss.NewStyle().Foreground(p.Warning),
		Badge: lipgloss.NewStyle().
			Bold(true).
			Width(4).
			Align(lipgloss.Center),

		toastBase: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Foreground(p.Text),
		toastTitle: lipgloss.NewStyle().Bold(true),
	}
}

// KindColor returns the accent color for a notification kind.
func (s *Styles) KindColor(kind notify.Kind) lipgloss.Color {
	switch kind {
	case notify.KindSuccess:
		return s.Palette.Secondary
	case notify.KindError:
		return s.Palette.Error
	default:
		return s.Palette.Primary
	}
}

// KindIcon returns the glyph shown before a toast title.
func KindIcon(kind notify.Kind) string {
	switch kind {
	case notify.KindSuccess:
		return "✓"
	case notify.KindError:
		return "✗"
	default:
		return "ℹ"
	}
}

// Toast renders a notification box.
func (s *Styles) Toast(n notify.Notification) string {
	accent := s.KindColor(n.Kind)
	title := s.toastTitle.Foreground(accent).Render(KindIcon(n.Kind) + " " + n.Title)
	return s.toastBase.BorderForeground(accent).Render(title + "  " + n.Message)
}

// AvatarBadge renders initials on the given background color.
func (s *Styles) AvatarBadge(initials string, bg lipgloss.Color) string {
	return s.Badge.
		Background(bg).
		Foreground(ContrastText(bg)).
		Render(initials)
}
