package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Force a deterministic color profile so rendering assertions do not
	// depend on the terminal running the tests.
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCanvas_DrawPlacesBlock(t *testing.T) {
	c := NewCanvas(10, 3)
	c.Draw(2, 1, "ab\ncd")

	lines := strings.Split(c.String(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "          ", lines[0])
	assert.Equal(t, "  ab      ", lines[1])
	assert.Equal(t, "  cd      ", lines[2])
}

func TestCanvas_LaterDrawsCoverEarlier(t *testing.T) {
	c := NewCanvas(6, 1)
	c.Draw(0, 0, "aaaaaa")
	c.Draw(2, 0, "XX")

	assert.Equal(t, "aaXXaa", c.String())
}

func TestCanvas_ClipsOutOfBounds(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		want string
	}{
		{name: "off right edge", x: 4, y: 0, want: "    ab"},
		{name: "off left edge", x: -1, y: 0, want: "bcd   "},
		{name: "below canvas", x: 0, y: 5, want: "      "},
		{name: "above canvas", x: 0, y: -1, want: "      "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(6, 1)
			c.Draw(tt.x, tt.y, "abcd")
			assert.Equal(t, tt.want, c.String())
		})
	}
}

func TestCanvas_PreservesStyledNeighbors(t *testing.T) {
	styled := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Render("rrrrrr")

	c := NewCanvas(6, 1)
	c.Draw(0, 0, styled)
	c.Draw(2, 0, "XX")

	out := c.String()
	assert.Equal(t, "rrXXrr", ansi.Strip(out))
	assert.Equal(t, 6, ansi.StringWidth(out))
}

func TestCanvas_FillRowPadsAndClips(t *testing.T) {
	c := NewCanvas(4, 2)
	c.FillRow(0, "ab")
	c.FillRow(1, "abcdef")

	lines := strings.Split(c.String(), "\n")
	assert.Equal(t, "ab  ", lines[0])
	assert.Equal(t, "abcd", lines[1])
}
