// Package displayers provides the built-in displayer types. Each one maps a
// value shape onto a terminal rendering; RegisterAll installs the whole set
// into a registry at startup.
package displayers

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gridsens/gridsens/internal/plugin"
	"github.com/gridsens/gridsens/internal/ui"
)

// RegisterAll installs every built-in displayer type into the registry.
func RegisterAll(reg *plugin.Registry) error {
	infos := []plugin.DisplayerInfo{
		{
			Type:    "text",
			Name:    "Text readout",
			Accepts: plugin.AllShapes(),
			Schema: plugin.Schema{
				{Key: "align", Label: "Alignment", Type: plugin.OptionSelect, Default: "center",
					Choices: []string{"left", "center", "right"}},
			},
			New: func(opts map[string]any) (plugin.Displayer, error) {
				return newTextDisplayer(opts), nil
			},
		},
		{
			Type:    "gauge",
			Name:    "Gauge",
			Accepts: []plugin.Shape{plugin.ShapePercent},
			Schema: plugin.Schema{
				{Key: "brackets", Label: "Brackets", Type: plugin.OptionBool, Default: true},
				{Key: "show_value", Label: "Show value", Type: plugin.OptionBool, Default: true},
			},
			New: func(opts map[string]any) (plugin.Displayer, error) {
				return newGaugeDisplayer(opts), nil
			},
		},
		{
			Type:    "sparkline",
			Name:    "Sparkline",
			Accepts: []plugin.Shape{plugin.ShapePercent, plugin.ShapeTemperature, plugin.ShapeFrequency},
			Schema: plugin.Schema{
				{Key: "history", Label: "Samples kept", Type: plugin.OptionInt,
					Default: 240, Min: 30, Max: 4096, Step: 10},
				{Key: "show_value", Label: "Show value", Type: plugin.OptionBool, Default: true},
			},
			New: func(opts map[string]any) (plugin.Displayer, error) {
				return newSparkDisplayer(opts), nil
			},
		},
		{
			Type:    "graph",
			Name:    "Graph",
			Accepts: []plugin.Shape{plugin.ShapeSeries},
			Schema: plugin.Schema{
				{Key: "style", Label: "Style", Type: plugin.OptionSelect, Default: "braille",
					Choices: []string{"braille", "columns"}},
				{Key: "legend", Label: "Legend", Type: plugin.OptionBool, Default: true},
			},
			New: func(opts map[string]any) (plugin.Displayer, error) {
				return newGraphDisplayer(opts), nil
			},
		},
		{
			Type:    "fields",
			Name:    "Field list",
			Accepts: []plugin.Shape{plugin.ShapeFields},
			New: func(opts map[string]any) (plugin.Displayer, error) {
				return &fieldsDisplayer{}, nil
			},
		},
		{
			Type:    "indicator",
			Name:    "Status lamp",
			Accepts: []plugin.Shape{plugin.ShapePercent, plugin.ShapeTemperature, plugin.ShapeFrequency},
			Schema: plugin.Schema{
				{Key: "warn", Label: "Warn at", Type: plugin.OptionFloat, Default: 70.0},
				{Key: "crit", Label: "Critical at", Type: plugin.OptionFloat, Default: 90.0},
				{Key: "invert", Label: "Lower is worse", Type: plugin.OptionBool, Default: false},
			},
			New: func(opts map[string]any) (plugin.Displayer, error) {
				return newIndicatorDisplayer(opts), nil
			},
		},
	}

	for _, info := range infos {
		if err := reg.RegisterDisplayer(info); err != nil {
			return err
		}
	}
	return nil
}

// accent resolves the panel accent color, falling back to the theme default.
func accent(st plugin.Style) lipgloss.Color {
	if st.Accent != "" {
		return lipgloss.Color(st.Accent)
	}
	return ui.ColorAccent
}

// placeholder fills the area with a muted marker for panels that have
// nothing to show yet.
func placeholder(area plugin.Size) string {
	msg := lipgloss.NewStyle().Foreground(ui.ColorMuted).Render(ui.Fit("no data", area.W))
	return lipgloss.Place(area.W, area.H, lipgloss.Center, lipgloss.Center, msg)
}
