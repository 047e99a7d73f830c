package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/gridsens/gridsens/internal/errors"
)

const (
	// SettingsFileName is the settings file name inside the config dir.
	SettingsFileName = "config.yaml"
	// configDirName is the per-user config directory under
	// $XDG_CONFIG_HOME (or ~/.config).
	configDirName = "gridsens"
)

// ConfigDir returns the directory gridsens keeps its settings in.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, configDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return configDirName
	}
	return filepath.Join(home, ".config", configDirName)
}

// DefaultProfilesDir returns where layout profiles live unless the
// settings file says otherwise.
func DefaultProfilesDir() string {
	return filepath.Join(ConfigDir(), "profiles")
}

// Load reads settings from the specified path.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrSettings,
				"Settings file not found: "+path,
				"Create it, or drop the --config flag to use defaults")
		}
		return nil, errors.WrapWithCode(err, errors.ErrSettings,
			"Failed to read settings file",
			"Check the file exists and is valid YAML")
	}

	return parseSettings(v, path)
}

// Find locates the settings file using the search order:
// 1. Explicit path (from --config flag)
// 2. $XDG_CONFIG_HOME/gridsens/config.yaml (or ~/.config/gridsens/config.yaml)
//
// Returns the path to the settings file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrSettings,
					"Specified settings file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrSettings,
				"Cannot access settings file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	global := filepath.Join(ConfigDir(), SettingsFileName)
	if _, err := os.Stat(global); err == nil {
		return global, nil
	}

	return "", nil
}

// LoadOrDefault loads settings from the found path, or returns defaults
// if no file exists. First runs work with no config at all.
func LoadOrDefault(explicit string) (*Settings, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return DefaultSettings(), nil
	}

	return Load(path)
}

// parseSettings converts viper config to our Settings struct with
// defaults merged in.
func parseSettings(v *viper.Viper, path string) (*Settings, error) {
	cfg := DefaultSettings()

	setDefaults(v)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSettings,
			"Invalid settings format",
			"Check the YAML syntax in "+path)
	}

	cfg.Profiles.Dir = ExpandHome(cfg.Profiles.Dir)

	return cfg, nil
}

// setDefaults seeds viper so missing keys resolve to the same values
// DefaultSettings uses.
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", CurrentSettingsVersion)
	v.SetDefault("poll.interval", "2s")
	v.SetDefault("poll.timeout", "5s")
	v.SetDefault("autosave.enabled", true)
	v.SetDefault("autosave.debounce", "500ms")
	v.SetDefault("profiles.dir", DefaultProfilesDir())
	v.SetDefault("profiles.default", "default")
	v.SetDefault("grid.columns", 96)
	v.SetDefault("grid.rows", 48)
	v.SetDefault("ui.color", "auto")
	v.SetDefault("ui.mouse", true)
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
