package displayers

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gridsens/gridsens/internal/plugin"
	"github.com/gridsens/gridsens/internal/ui"
)

// indicatorDisplayer shows a status lamp colored by where the value sits
// against its warn and crit thresholds, with the reading next to it. With
// invert set, low values are the bad ones (free disk, battery).
type indicatorDisplayer struct {
	warn   float64
	crit   float64
	invert bool
}

func newIndicatorDisplayer(opts map[string]any) *indicatorDisplayer {
	return &indicatorDisplayer{
		warn:   plugin.FloatOpt(opts, "warn", 70),
		crit:   plugin.FloatOpt(opts, "crit", 90),
		invert: plugin.BoolOpt(opts, "invert", false),
	}
}

func (d *indicatorDisplayer) Push(plugin.Value) {}

func (d *indicatorDisplayer) Render(area plugin.Size, v plugin.Value, st plugin.Style) string {
	if area.W <= 0 || area.H <= 0 {
		return ""
	}
	if v.Kind != plugin.KindScalar {
		return placeholder(area)
	}

	lamp := lipgloss.NewStyle().Foreground(d.lampColor(v.Scalar)).Render(ui.SymbolLamp)
	text := lipgloss.NewStyle().Foreground(ui.ColorText).Render(ui.Fit(v.Display(), area.W-2))
	return lipgloss.Place(area.W, area.H, lipgloss.Center, lipgloss.Center, lamp+" "+text)
}

func (d *indicatorDisplayer) lampColor(val float64) lipgloss.Color {
	if d.invert {
		switch {
		case val <= d.crit:
			return ui.ColorCrit
		case val <= d.warn:
			return ui.ColorWarn
		default:
			return ui.ColorGood
		}
	}
	return ui.SeverityColorAt(val, d.warn, d.crit)
}

func (d *indicatorDisplayer) Reset() {}

func (d *indicatorDisplayer) Close() error { return nil }
