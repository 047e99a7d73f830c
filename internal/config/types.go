package config

import "time"

// CurrentSettingsVersion is the schema version for the settings file.
// Increment when making breaking changes to the settings structure.
const CurrentSettingsVersion = 1

// Settings represents the complete gridsens configuration file.
// Dashboard layouts live in profiles, not here; this file holds the
// knobs that apply to every profile.
type Settings struct {
	Version  int              `yaml:"version" mapstructure:"version"`
	Poll     PollSettings     `yaml:"poll" mapstructure:"poll"`
	Autosave AutosaveSettings `yaml:"autosave" mapstructure:"autosave"`
	Profiles ProfileSettings  `yaml:"profiles" mapstructure:"profiles"`
	Grid     GridSettings     `yaml:"grid" mapstructure:"grid"`
	UI       UISettings       `yaml:"ui" mapstructure:"ui"`
}

// PollSettings controls how panels fetch their readings.
type PollSettings struct {
	// Interval is the default poll cadence. Panels can override it.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Timeout bounds a single fetch before it is abandoned.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// AutosaveSettings controls writing layout changes back to disk.
type AutosaveSettings struct {
	// Enabled toggles autosave on/off. When off, layouts only persist
	// on an explicit save or on exit.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Debounce is how long after the last edit the write happens.
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// ProfileSettings locates and names layout profiles.
type ProfileSettings struct {
	// Dir is the directory holding profile files. Supports a leading ~.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Default is the profile loaded when none is named on the command line.
	Default string `yaml:"default" mapstructure:"default"`
}

// GridSettings sets the extents of the placement grid.
type GridSettings struct {
	Columns int `yaml:"columns" mapstructure:"columns"`
	Rows    int `yaml:"rows" mapstructure:"rows"`
}

// UISettings controls terminal rendering.
type UISettings struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`

	// Mouse toggles mouse capture. With it off, panels can only be
	// arranged from the keyboard.
	Mouse bool `yaml:"mouse" mapstructure:"mouse"`
}

// DefaultSettings returns Settings with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		Version: CurrentSettingsVersion,
		Poll: PollSettings{
			Interval: 2 * time.Second,
			Timeout:  5 * time.Second,
		},
		Autosave: AutosaveSettings{
			Enabled:  true,
			Debounce: 500 * time.Millisecond,
		},
		Profiles: ProfileSettings{
			Dir:     DefaultProfilesDir(),
			Default: "default",
		},
		Grid: GridSettings{
			Columns: 96,
			Rows:    48,
		},
		UI: UISettings{
			Color: "auto",
			Mouse: true,
		},
	}
}
