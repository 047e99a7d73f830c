package interact

import (
	"math"

	"github.com/gridsens/gridsens/internal/grid"
)

// Geometry maps pointer coordinates (terminal character positions) to
// grid cells. Each grid cell renders as CellW x CellH characters, with
// the grid's top-left cell starting at (OffsetX, OffsetY) on screen.
type Geometry struct {
	CellW   int
	CellH   int
	OffsetX int
	OffsetY int
}

// norm clamps cell metrics so division is always safe.
func (g Geometry) norm() Geometry {
	if g.CellW < 1 {
		g.CellW = 1
	}
	if g.CellH < 1 {
		g.CellH = 1
	}
	return g
}

// CellAt returns the grid cell under a screen position. Positions left
// of or above the grid map to negative cells.
func (g Geometry) CellAt(x, y int) grid.Cell {
	return grid.Cell{
		X: floorDiv(x-g.OffsetX, g.CellW),
		Y: floorDiv(y-g.OffsetY, g.CellH),
	}
}

// DeltaCells converts a pointer movement in characters to whole cells,
// rounding to the nearest cell. A movement under half a cell snaps to
// zero, which is what makes small jitters commit nothing.
func (g Geometry) DeltaCells(dx, dy int) (int, int) {
	return roundDiv(dx, g.CellW), roundDiv(dy, g.CellH)
}

// ScreenRect returns the character-space rectangle a placement covers.
func (g Geometry) ScreenRect(r grid.Rect) (x, y, w, h int) {
	return g.OffsetX + r.X*g.CellW, g.OffsetY + r.Y*g.CellH, r.W * g.CellW, r.H * g.CellH
}

// floorDiv divides rounding toward negative infinity, so positions just
// left of the grid land in cell -1 rather than 0.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// roundDiv divides rounding half away from zero.
func roundDiv(a, b int) int {
	return int(math.Round(float64(a) / float64(b)))
}
