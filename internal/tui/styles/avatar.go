package styles

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// AvatarColors is the fixed set of avatar background colors.
var AvatarColors = []lipgloss.Color{
	"#ccc", "#fafafa", "#ccaabb", "#FF0000", "#0000FF", "#008000",
	"#FFFF00", "#FFA500", "#800080", "#FFC0CB", "#A52A2A", "#000000",
	"#FFFFFF", "#808080", "#00FFFF", "#FF00FF", "#00FF00", "#4B0082",
	"#008080", "#800000", "#808000", "#000080", "#FF7F50",
}

// IndexFunc returns an index in [0, n).
type IndexFunc func(n int) int

// SeededIndex returns an IndexFunc driven by a PRNG seeded with seed, so the
// same seed yields the same sequence of colors.
func SeededIndex(seed int64) IndexFunc {
	rng := rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
	var mu sync.Mutex
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return rng.IntN(n)
	}
}

// AvatarPicker assigns each key a color from AvatarColors the first time it
// is seen and returns the same color afterwards.
type AvatarPicker struct {
	mu       sync.Mutex
	index    IndexFunc
	assigned map[string]lipgloss.Color
}

// NewAvatarPicker creates a picker using index to choose colors.
func NewAvatarPicker(index IndexFunc) *AvatarPicker {
	return &AvatarPicker{
		index:    index,
		assigned: make(map[string]lipgloss.Color),
	}
}

// Color returns the color assigned to key.
func (p *AvatarPicker) Color(key string) lipgloss.Color {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.assigned[key]; ok {
		return c
	}
	i := p.index(len(AvatarColors))
	if i < 0 || i >= len(AvatarColors) {
		i = 0
	}
	c := AvatarColors[i]
	p.assigned[key] = c
	return c
}

// Forget drops every assignment not in keep. The TUI calls it after a
// refresh so the cache does not grow without bound.
func (p *AvatarPicker) Forget(keep map[string]bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k := range p.assigned {
		if !keep[k] {
			delete(p.assigned, k)
		}
	}
}

// Len returns how many keys have an assigned color.
func (p *AvatarPicker) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.assigned)
}

// ContrastText returns black or white, whichever reads better on bg.
// Colors that are not hex triplets get white text.
func ContrastText(bg lipgloss.Color) lipgloss.Color {
	r, g, b, ok := parseHex(string(bg))
	if !ok {
		return lipgloss.Color("#FFFFFF")
	}
	// ITU-R BT.601 luma.
	luma := (299*r + 587*g + 114*b) / 1000
	if luma > 140 {
		return lipgloss.Color("#000000")
	}
	return lipgloss.Color("#FFFFFF")
}

func parseHex(s string) (r, g, b int, ok bool) {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
