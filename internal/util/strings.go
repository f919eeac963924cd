// Package util provides terminal text helpers shared by the TUI and CLI.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks elided text. It is one column wide.
const Ellipsis = "…"

// TruncateANSI truncates s to maxWidth visual columns, ending with an
// ellipsis when anything was cut. Escape sequences and wide characters are
// handled, so styled text can be passed in.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, Ellipsis)
}

// TruncateMiddle shortens s to maxWidth columns by eliding its middle, which
// keeps both the host and the file name of a URL visible.
func TruncateMiddle(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	width := lipgloss.Width(s)
	if width <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return Ellipsis
	}

	keep := maxWidth - 1
	headWidth := (keep + 1) / 2
	tailWidth := keep - headWidth

	head := ansi.Truncate(s, headWidth, "")
	tail := ansi.TruncateLeft(s, width-tailWidth, "")
	return head + Ellipsis + tail
}

// Align pads s with spaces to width columns, on the left when right is true.
// Strings already at least width wide are returned unchanged.
func Align(s string, width int, right bool) string {
	pad := width - lipgloss.Width(s)
	if pad <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", pad) + s
	}
	return s + strings.Repeat(" ", pad)
}
