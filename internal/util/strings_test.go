package util

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncateANSI(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("Ada Lovelace")

	tests := []struct {
		name      string
		input     string
		maxWidth  int
		wantWidth int
		wantPlain string
	}{
		{name: "fits", input: "Ada", maxWidth: 10, wantWidth: 3, wantPlain: "Ada"},
		{name: "exact", input: "Ada", maxWidth: 3, wantWidth: 3, wantPlain: "Ada"},
		{name: "cut", input: "Ada Lovelace", maxWidth: 5, wantWidth: 5, wantPlain: "Ada " + Ellipsis},
		{name: "zero width", input: "Ada", maxWidth: 0, wantWidth: 0, wantPlain: ""},
		{name: "wide characters", input: "日本語テスト", maxWidth: 5, wantWidth: 5},
		{name: "styled", input: styled, maxWidth: 4, wantWidth: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateANSI(tt.input, tt.maxWidth)
			if w := lipgloss.Width(got); w > tt.maxWidth || (tt.wantWidth > 0 && w < tt.wantWidth-1) {
				t.Errorf("TruncateANSI(%q, %d) width = %d", tt.input, tt.maxWidth, w)
			}
			if tt.wantPlain != "" && got != tt.wantPlain {
				t.Errorf("TruncateANSI(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.wantPlain)
			}
		})
	}
}

func TestTruncateMiddle(t *testing.T) {
	url := "https://robohash.org/voluptatemquiaut.png?size=300x300&set=set1"

	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{name: "fits", input: "a.png", maxWidth: 10, want: "a.png"},
		{name: "zero", input: url, maxWidth: 0, want: ""},
		{name: "one column", input: url, maxWidth: 1, want: Ellipsis},
		{name: "odd width", input: "abcdefghij", maxWidth: 5, want: "ab" + Ellipsis + "ij"},
		{name: "even width", input: "abcdefghij", maxWidth: 6, want: "abc" + Ellipsis + "ij"},
		{name: "url keeps both ends", input: url, maxWidth: 21, want: "https://ro" + Ellipsis + "0&set=set1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateMiddle(tt.input, tt.maxWidth)
			if got != tt.want {
				t.Errorf("TruncateMiddle(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
			if w := lipgloss.Width(got); w > tt.maxWidth {
				t.Errorf("width %d exceeds %d", w, tt.maxWidth)
			}
		})
	}
}

func TestAlign(t *testing.T) {
	tests := []struct {
		input string
		width int
		right bool
		want  string
	}{
		{"ab", 5, false, "ab   "},
		{"ab", 5, true, "   ab"},
		{"abcdef", 3, true, "abcdef"},
		{"", 2, false, "  "},
	}

	for _, tt := range tests {
		if got := Align(tt.input, tt.width, tt.right); got != tt.want {
			t.Errorf("Align(%q, %d, %v) = %q, want %q", tt.input, tt.width, tt.right, got, tt.want)
		}
	}
}
