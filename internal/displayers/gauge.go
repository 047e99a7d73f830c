package displayers

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/gridsens/gridsens/internal/plugin"
	"github.com/gridsens/gridsens/internal/ui"
)

// gaugeDisplayer draws a percent value as a horizontal meter colored by
// severity.
type gaugeDisplayer struct {
	brackets  bool
	showValue bool
}

func newGaugeDisplayer(opts map[string]any) *gaugeDisplayer {
	return &gaugeDisplayer{
		brackets:  plugin.BoolOpt(opts, "brackets", true),
		showValue: plugin.BoolOpt(opts, "show_value", true),
	}
}

func (d *gaugeDisplayer) Push(plugin.Value) {}

func (d *gaugeDisplayer) Render(area plugin.Size, v plugin.Value, st plugin.Style) string {
	if area.W <= 0 || area.H <= 0 {
		return ""
	}
	if v.Kind != plugin.KindScalar {
		return placeholder(area)
	}

	pct := ui.ClampPercent(v.Scalar)
	readout := ""
	if d.showValue {
		readout = fmt.Sprintf(" %5.1f%%", pct)
	}

	barWidth := area.W - len([]rune(readout))
	if barWidth < 3 {
		barWidth = area.W
		readout = ""
	}

	line := ui.Bar(pct, ui.BarOptions{Width: barWidth, Brackets: d.brackets})
	if readout != "" {
		line += ui.SeverityStyle(pct).Render(readout)
	}
	return lipgloss.Place(area.W, area.H, lipgloss.Left, lipgloss.Center, line)
}

func (d *gaugeDisplayer) Reset() {}

func (d *gaugeDisplayer) Close() error { return nil }
