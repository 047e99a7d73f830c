package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gridsens/gridsens/internal/errors"
)

// Validate checks the settings for errors and returns structured error
// messages.
func Validate(cfg *Settings) error {
	if cfg == nil {
		return errors.New(errors.ErrSettings,
			"Settings are nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentSettingsVersion {
		return errors.New(errors.ErrSettings,
			fmt.Sprintf("This settings file is from the future (version %d, but gridsens only knows up to %d)", cfg.Version, CurrentSettingsVersion),
			"Grab the latest gridsens: https://github.com/gridsens/gridsens/releases")
	}

	if err := validatePoll(cfg.Poll); err != nil {
		return errors.WrapWithCode(err, errors.ErrSettings, err.Error(), "Check the 'poll' section in your config.yaml.")
	}
	if err := validateAutosave(cfg.Autosave); err != nil {
		return errors.WrapWithCode(err, errors.ErrSettings, err.Error(), "Check the 'autosave' section in your config.yaml.")
	}
	if err := validateProfiles(cfg.Profiles); err != nil {
		return errors.WrapWithCode(err, errors.ErrSettings, err.Error(), "Check the 'profiles' section in your config.yaml.")
	}
	if err := validateGrid(cfg.Grid); err != nil {
		return errors.WrapWithCode(err, errors.ErrSettings, err.Error(), "Check the 'grid' section in your config.yaml.")
	}
	if err := validateUI(cfg.UI); err != nil {
		return errors.WrapWithCode(err, errors.ErrSettings, err.Error(), "Check the 'ui' section in your config.yaml.")
	}

	return nil
}

// validatePoll checks poll cadence settings.
func validatePoll(p PollSettings) error {
	if p.Interval < 100*time.Millisecond {
		return fmt.Errorf("poll.interval %v is too aggressive - anything under 100ms just burns CPU", p.Interval)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("poll.timeout can't be zero or negative - a fetch needs some time budget")
	}
	return nil
}

// validateAutosave checks autosave settings.
func validateAutosave(a AutosaveSettings) error {
	if a.Debounce <= 0 {
		return fmt.Errorf("autosave.debounce can't be zero or negative - try 500ms")
	}
	if a.Debounce > time.Minute {
		return fmt.Errorf("autosave.debounce of %v means edits sit unsaved for a long time - keep it under a minute", a.Debounce)
	}
	return nil
}

// validateProfiles checks profile location settings.
func validateProfiles(p ProfileSettings) error {
	if strings.TrimSpace(p.Dir) == "" {
		return fmt.Errorf("profiles.dir is empty - gridsens needs somewhere to save layouts")
	}
	if p.Default == "" {
		return fmt.Errorf("profiles.default is empty - name the profile to load on startup")
	}
	if strings.ContainsAny(p.Default, `/\`) || strings.HasPrefix(p.Default, ".") {
		return fmt.Errorf("profiles.default '%s' isn't a valid profile name - no path separators or leading dots", p.Default)
	}
	return nil
}

// validateGrid checks grid extents.
func validateGrid(g GridSettings) error {
	if g.Columns < 8 {
		return fmt.Errorf("grid.columns needs to be at least 8 (got %d) - panels wouldn't fit", g.Columns)
	}
	if g.Rows < 4 {
		return fmt.Errorf("grid.rows needs to be at least 4 (got %d) - panels wouldn't fit", g.Rows)
	}
	if g.Columns > 1024 || g.Rows > 1024 {
		return fmt.Errorf("grid extents %dx%d are absurdly large - keep both under 1024", g.Columns, g.Rows)
	}
	return nil
}

// validateUI checks terminal rendering settings.
func validateUI(u UISettings) error {
	validColors := map[string]bool{"auto": true, "always": true, "never": true, "": true}
	if !validColors[u.Color] {
		return fmt.Errorf("ui.color '%s' isn't valid - use 'auto', 'always', or 'never'", u.Color)
	}
	return nil
}
