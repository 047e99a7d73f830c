package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilesCommand_EmptyDir(t *testing.T) {
	withTestSettings(t)

	var out bytes.Buffer
	require.NoError(t, profilesCommand(&out))

	assert.Contains(t, out.String(), "No profiles")
}

func TestProfilesCommand_ListsWithDefaultMarker(t *testing.T) {
	profiles := withTestSettings(t)
	writeProfile(t, profiles, "default", validProfile)
	writeProfile(t, profiles, "work", validProfile)

	var out bytes.Buffer
	require.NoError(t, profilesCommand(&out))

	assert.Contains(t, out.String(), "* default")
	assert.Contains(t, out.String(), "  work")
	assert.Contains(t, out.String(), "2 panels")
}

func TestProfilesCommand_SurfacesCorruptProfiles(t *testing.T) {
	profiles := withTestSettings(t)
	writeProfile(t, profiles, "mangled", "{{{ not yaml")

	var out bytes.Buffer
	require.NoError(t, profilesCommand(&out))

	assert.Contains(t, out.String(), "mangled")
	assert.Contains(t, out.String(), "corrupt")
}
