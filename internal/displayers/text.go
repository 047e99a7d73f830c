package displayers

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gridsens/gridsens/internal/plugin"
	"github.com/gridsens/gridsens/internal/ui"
)

// textDisplayer shows the latest value as a single formatted line. It
// accepts every shape, which makes it the universal fallback pairing.
type textDisplayer struct {
	align lipgloss.Position
}

func newTextDisplayer(opts map[string]any) *textDisplayer {
	align := lipgloss.Center
	switch plugin.StringOpt(opts, "align", "center") {
	case "left":
		align = lipgloss.Left
	case "right":
		align = lipgloss.Right
	}
	return &textDisplayer{align: align}
}

func (d *textDisplayer) Push(plugin.Value) {}

func (d *textDisplayer) Render(area plugin.Size, v plugin.Value, st plugin.Style) string {
	if area.W <= 0 || area.H <= 0 {
		return ""
	}
	if v.IsZero() {
		return placeholder(area)
	}

	line := lipgloss.NewStyle().
		Foreground(ui.ColorText).
		Bold(true).
		Render(ui.Fit(v.Display(), area.W))
	return lipgloss.Place(area.W, area.H, d.align, lipgloss.Center, line)
}

func (d *textDisplayer) Reset() {}

func (d *textDisplayer) Close() error { return nil }
