package displayers

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gridsens/gridsens/internal/plugin"
	"github.com/gridsens/gridsens/internal/ui"
)

// fieldsDisplayer lays out labeled rows with the labels padded into one
// aligned column. Rows that do not fit the area height are dropped from the
// bottom.
type fieldsDisplayer struct{}

func (d *fieldsDisplayer) Push(plugin.Value) {}

func (d *fieldsDisplayer) Render(area plugin.Size, v plugin.Value, st plugin.Style) string {
	if area.W <= 0 || area.H <= 0 {
		return ""
	}
	if v.Kind != plugin.KindFields || len(v.Fields) == 0 {
		return placeholder(area)
	}

	rows := v.Fields
	if len(rows) > area.H {
		rows = rows[:area.H]
	}

	labelW := 0
	for _, f := range rows {
		if n := len([]rune(f.Label)); n > labelW {
			labelW = n
		}
	}
	// Leave at least a third of the width for values
	if maxLabel := area.W * 2 / 3; labelW > maxLabel {
		labelW = maxLabel
	}

	labelStyle := lipgloss.NewStyle().Foreground(ui.ColorTextDim)
	valueStyle := lipgloss.NewStyle().Foreground(ui.ColorText)

	lines := make([]string, 0, len(rows))
	for _, f := range rows {
		label := labelStyle.Render(ui.Pad(f.Label, labelW))
		value := valueStyle.Render(ui.Fit(f.Value, area.W-labelW-2))
		lines = append(lines, label+"  "+value)
	}
	return strings.Join(lines, "\n")
}

func (d *fieldsDisplayer) Reset() {}

func (d *fieldsDisplayer) Close() error { return nil }
