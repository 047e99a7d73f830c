package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gridsens/gridsens/internal/ui"
)

// Styles for the dashboard chrome. Panel bodies style themselves through
// their displayers; everything here is frame, background, and status bar.
var (
	backgroundDotStyle = lipgloss.NewStyle().
				Foreground(ui.ColorMuted)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(ui.ColorTextDim).
			Background(ui.ColorBg).
			Padding(0, 1)

	statusProfileStyle = lipgloss.NewStyle().
				Foreground(ui.ColorAccent).
				Bold(true)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(ui.ColorCrit).
				Bold(true)

	statusPausedStyle = lipgloss.NewStyle().
				Foreground(ui.ColorWarn).
				Bold(true)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(ui.ColorText).
			Bold(true)

	panelErrorStyle = lipgloss.NewStyle().
			Foreground(ui.ColorCrit)

	ghostValidStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorGood)

	ghostInvalidStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ui.ColorCrit)

	selectBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ui.ColorAccent)

	helpOverlayStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ui.ColorBorder).
				Padding(0, 2)

	formOverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorAccent).
			Padding(1, 2)
)

// borderFor maps a panel's stored border name to a lipgloss border.
// Unknown names fall back to rounded so old layouts keep rendering.
func borderFor(name string) lipgloss.Border {
	switch name {
	case "normal":
		return lipgloss.NormalBorder()
	case "thick":
		return lipgloss.ThickBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "none":
		return lipgloss.HiddenBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}
