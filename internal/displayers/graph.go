package displayers

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gridsens/gridsens/internal/plugin"
	"github.com/gridsens/gridsens/internal/ui"
)

// graphDisplayer plots a series value as a braille or column chart, with an
// optional min/avg/max legend on the bottom row.
type graphDisplayer struct {
	style  string
	legend bool
}

func newGraphDisplayer(opts map[string]any) *graphDisplayer {
	return &graphDisplayer{
		style:  plugin.StringOpt(opts, "style", "braille"),
		legend: plugin.BoolOpt(opts, "legend", true),
	}
}

func (d *graphDisplayer) Push(plugin.Value) {}

func (d *graphDisplayer) Render(area plugin.Size, v plugin.Value, st plugin.Style) string {
	if area.W <= 0 || area.H <= 0 {
		return ""
	}
	if v.Kind != plugin.KindSeries || len(v.Series) == 0 {
		return placeholder(area)
	}

	plotH := area.H
	legend := ""
	if d.legend && area.H >= 2 {
		plotH--
		legend = legendLine(v, area.W)
	}

	var plot string
	if d.style == "columns" {
		plot = ui.ColumnGraph(v.Series, area.W, plotH, accent(st))
	} else {
		plot = ui.BrailleGraph(v.Series, area.W, plotH, accent(st))
	}

	if legend != "" {
		plot += "\n" + legend
	}
	return plot
}

func (d *graphDisplayer) Reset() {}

func (d *graphDisplayer) Close() error { return nil }

func legendLine(v plugin.Value, width int) string {
	lo := floats.Min(v.Series)
	hi := floats.Max(v.Series)
	avg := stat.Mean(v.Series, nil)

	line := fmt.Sprintf("min %.1f%s  avg %.1f%s  max %.1f%s",
		lo, v.Unit, avg, v.Unit, hi, v.Unit)
	return lipgloss.NewStyle().Foreground(ui.ColorTextDim).Render(ui.Fit(line, width))
}
