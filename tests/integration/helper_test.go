package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gridsens/gridsens/internal/config"
	"github.com/gridsens/gridsens/internal/displayers"
	"github.com/gridsens/gridsens/internal/logger"
	"github.com/gridsens/gridsens/internal/plugin"
	"github.com/gridsens/gridsens/internal/sources"
	"github.com/gridsens/gridsens/internal/workspace"
)

// newRegistry builds the full production plugin table, the same one the
// binary registers at startup.
func newRegistry(t *testing.T) *plugin.Registry {
	t.Helper()
	reg := plugin.NewRegistry()
	require.NoError(t, sources.RegisterAll(reg))
	require.NoError(t, displayers.RegisterAll(reg))
	return reg
}

// newSettings returns production defaults pointed at a throwaway profiles
// dir, with polling slowed to a crawl so each test controls fetch timing.
func newSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	s.Profiles.Dir = t.TempDir()
	s.Poll.Interval = time.Hour
	s.Autosave.Enabled = false
	return s
}

// newWorkspace assembles a dashboard session over the given settings. The
// caller owns Close; tests that exercise shutdown call it mid-test.
func newWorkspace(t *testing.T, s *config.Settings) *workspace.Workspace {
	t.Helper()
	return workspace.New(s, newRegistry(t), logger.Noop())
}
