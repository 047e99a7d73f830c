package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Canvas is a fixed-size character buffer that styled blocks are drawn
// onto at absolute positions. Later draws cover earlier ones, which is
// how panel z-order and gesture ghosts end up layered correctly.
type Canvas struct {
	width  int
	height int
	lines  []string
}

// NewCanvas returns a blank canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	lines := make([]string, height)
	blank := strings.Repeat(" ", width)
	for i := range lines {
		lines[i] = blank
	}
	return &Canvas{width: width, height: height, lines: lines}
}

// Width returns the canvas width in terminal cells.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in rows.
func (c *Canvas) Height() int { return c.height }

// FillRow replaces an entire row, used for the grid background. The row
// is clipped to the canvas width.
func (c *Canvas) FillRow(row int, s string) {
	if row < 0 || row >= c.height {
		return
	}
	w := ansi.StringWidth(s)
	if w > c.width {
		s = ansi.Truncate(s, c.width, "")
	} else if w < c.width {
		s += strings.Repeat(" ", c.width-w)
	}
	c.lines[row] = s
}

// Draw overlays a multi-line block with its top-left corner at (x, y).
// The block may contain ANSI styling; anything outside the canvas is
// clipped.
func (c *Canvas) Draw(x, y int, block string) {
	for i, line := range strings.Split(block, "\n") {
		c.drawLine(x, y+i, line)
	}
}

func (c *Canvas) drawLine(x, row int, line string) {
	if row < 0 || row >= c.height {
		return
	}
	w := ansi.StringWidth(line)
	if w == 0 {
		return
	}
	if x < 0 {
		line = ansi.TruncateLeft(line, -x, "")
		w = ansi.StringWidth(line)
		x = 0
	}
	if x >= c.width || w == 0 {
		return
	}
	if x+w > c.width {
		line = ansi.Truncate(line, c.width-x, "")
		w = c.width - x
	}

	base := c.lines[row]
	left := ansi.Truncate(base, x, "")
	leftW := ansi.StringWidth(left)
	if leftW < x {
		left += strings.Repeat(" ", x-leftW)
	}
	right := ansi.TruncateLeft(base, x+w, "")
	c.lines[row] = left + line + right
}

// String renders the canvas as terminal output.
func (c *Canvas) String() string {
	return strings.Join(c.lines, "\n")
}
