// Package ui is the terminal rendering toolkit shared by the dashboard view
// and the built-in displayers: the color theme, severity mapping, and the
// bar, sparkline, and graph primitives. Everything here is pure string
// building; no package state changes at render time, so callers may redraw
// as often as they like.
package ui

import "github.com/charmbracelet/lipgloss"

// Theme palette. Tuned for dark terminals; lipgloss degrades the colors on
// profiles that cannot show them.
var (
	ColorBg     = lipgloss.Color("#11131C")
	ColorBorder = lipgloss.Color("#323650")

	ColorText    = lipgloss.Color("#E7E9F2")
	ColorTextDim = lipgloss.Color("#9EA0B8")
	ColorMuted   = lipgloss.Color("#5C5F78")

	ColorAccent = lipgloss.Color("#46C8FF") // cyan, the default panel accent
	ColorSelect = lipgloss.Color("#FF5FA2") // pink, selected panel borders

	// Severity colors for percentage metrics.
	ColorGood = lipgloss.Color("#3BE37B")
	ColorWarn = lipgloss.Color("#FFB454")
	ColorCrit = lipgloss.Color("#FF4D61")
)

// Severity thresholds for percentage metrics.
const (
	WarnThreshold = 70.0
	CritThreshold = 90.0
)

// SeverityColor maps a 0-100 metric onto the good/warn/crit palette.
func SeverityColor(percent float64) lipgloss.Color {
	return SeverityColorAt(percent, WarnThreshold, CritThreshold)
}

// SeverityColorAt is SeverityColor with caller-supplied thresholds.
func SeverityColorAt(percent, warn, crit float64) lipgloss.Color {
	switch {
	case percent >= crit:
		return ColorCrit
	case percent >= warn:
		return ColorWarn
	default:
		return ColorGood
	}
}

// SeverityStyle returns a foreground style colored by SeverityColor.
func SeverityStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(SeverityColor(percent))
}

// Status symbols used by panels and CLI output.
const (
	SymbolOK     = "✓"
	SymbolFail   = "✗"
	SymbolLamp   = "●"
	SymbolHollow = "○"
	SymbolPaused = "❚❚"
)

// Fit truncates s to at most width terminal cells, appending an ellipsis
// when something was cut. Safe only on unstyled strings; truncate before
// applying color.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// Pad right-pads s with spaces to exactly width cells, truncating first if
// it is too long.
func Pad(s string, width int) string {
	s = Fit(s, width)
	for len([]rune(s)) < width {
		s += " "
	}
	return s
}
