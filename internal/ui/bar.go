package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Meter block characters.
const (
	barFilled = '█'
	barEmpty  = '░'
)

// BarOptions configures Bar rendering.
type BarOptions struct {
	Width    int
	Brackets bool           // wrap the meter in [ ]
	Color    lipgloss.Color // empty means severity coloring by value
}

// ClampPercent clamps a percentage to the 0-100 range.
func ClampPercent(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// Bar renders a horizontal meter for a 0-100 value. The bracket characters
// count against Width, so the output is always exactly Width cells.
func Bar(percent float64, opts BarOptions) string {
	width := opts.Width
	if opts.Brackets {
		width -= 2
	}
	if width <= 0 {
		return ""
	}

	percent = ClampPercent(percent)
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	var sb strings.Builder
	sb.Grow(width*3 + 2)
	if opts.Brackets {
		sb.WriteRune('[')
	}
	for i := 0; i < filled; i++ {
		sb.WriteRune(barFilled)
	}
	for i := filled; i < width; i++ {
		sb.WriteRune(barEmpty)
	}
	if opts.Brackets {
		sb.WriteRune(']')
	}

	color := opts.Color
	if color == "" {
		color = SeverityColor(percent)
	}
	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}
