// Package sources provides the built-in data sources: what a panel can
// show. Every source is registered once at startup into the plugin
// registry; a duplicate type name there is a programming error and
// aborts startup.
//
// The system sources read the kernel's /proc and /sys trees directly.
// On systems without those trees they report permanent fetch errors,
// and the clock, wave, and goruntime sources keep working everywhere.
package sources

import (
	"github.com/gridsens/gridsens/internal/plugin"
)

// RegisterAll registers every built-in source.
func RegisterAll(reg *plugin.Registry) error {
	infos := []plugin.SourceInfo{
		{
			Type:  "clock",
			Name:  "Clock",
			Shape: plugin.ShapeText,
			Schema: plugin.Schema{
				{Key: "format", Label: "Format", Type: plugin.OptionSelect, Default: "24h",
					Choices: []string{"24h", "12h", "full", "iso"}},
				{Key: "utc", Label: "UTC", Type: plugin.OptionBool, Default: false},
			},
			New: func(opts map[string]any) (plugin.Source, error) {
				return newClockSource(opts), nil
			},
		},
		{
			Type:  "cpu",
			Name:  "CPU usage",
			Shape: plugin.ShapePercent,
			Schema: plugin.Schema{
				{Key: "core", Label: "Core (-1 for all)", Type: plugin.OptionInt,
					Default: -1, Min: -1, Max: 255, Step: 1},
			},
			New: func(opts map[string]any) (plugin.Source, error) {
				return newCPUSource(DefaultProcRoot, opts), nil
			},
		},
		{
			Type:  "cores",
			Name:  "Per-core CPU usage",
			Shape: plugin.ShapeSeries,
			New: func(opts map[string]any) (plugin.Source, error) {
				return newCoresSource(DefaultProcRoot), nil
			},
		},
		{
			Type:  "memory",
			Name:  "Memory usage",
			Shape: plugin.ShapePercent,
			New: func(opts map[string]any) (plugin.Source, error) {
				return newMemorySource(DefaultProcRoot), nil
			},
		},
		{
			Type:  "loadavg",
			Name:  "Load average",
			Shape: plugin.ShapeFields,
			New: func(opts map[string]any) (plugin.Source, error) {
				return newLoadavgSource(DefaultProcRoot), nil
			},
		},
		{
			Type:  "cpufreq",
			Name:  "CPU clock speed",
			Shape: plugin.ShapeFrequency,
			Schema: plugin.Schema{
				{Key: "core", Label: "Core", Type: plugin.OptionInt,
					Default: 0, Min: 0, Max: 255, Step: 1},
			},
			New: func(opts map[string]any) (plugin.Source, error) {
				return newCPUFreqSource(DefaultSysRoot, opts), nil
			},
		},
		{
			Type:  "temp",
			Name:  "Temperature",
			Shape: plugin.ShapeTemperature,
			Schema: plugin.Schema{
				{Key: "zone", Label: "Thermal zone", Type: plugin.OptionInt,
					Default: 0, Min: 0, Max: 255, Step: 1},
			},
			New: func(opts map[string]any) (plugin.Source, error) {
				return newTempSource(DefaultSysRoot, opts), nil
			},
		},
		{
			Type:  "hostinfo",
			Name:  "Host information",
			Shape: plugin.ShapeFields,
			New: func(opts map[string]any) (plugin.Source, error) {
				return newHostinfoSource(DefaultProcRoot), nil
			},
		},
		{
			Type:  "goruntime",
			Name:  "Dashboard runtime",
			Shape: plugin.ShapeFields,
			New: func(opts map[string]any) (plugin.Source, error) {
				return newGoruntimeSource(), nil
			},
		},
		{
			Type:  "wave",
			Name:  "Demo wave",
			Shape: plugin.ShapePercent,
			Schema: plugin.Schema{
				{Key: "period", Label: "Period (seconds)", Type: plugin.OptionFloat,
					Default: 30.0, Min: 1, Max: 3600, Step: 1},
			},
			New: func(opts map[string]any) (plugin.Source, error) {
				return newWaveSource(opts), nil
			},
		},
	}

	for _, info := range infos {
		if err := reg.RegisterSource(info); err != nil {
			return err
		}
	}
	return nil
}
