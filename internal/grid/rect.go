package grid

import "fmt"

// Cell is a position on the grid in cell units.
type Cell struct {
	X int
	Y int
}

// Add returns the cell offset by dx, dy.
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Rect is an axis-aligned rectangle in cell units. X,Y is the top-left
// corner; W,H are the extents. Right/Bottom edges are exclusive.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// NewRect builds a rect from an origin cell and extents.
func NewRect(origin Cell, w, h int) Rect {
	return Rect{X: origin.X, Y: origin.Y, W: w, H: h}
}

// Origin returns the top-left cell of the rect.
func (r Rect) Origin() Cell {
	return Cell{X: r.X, Y: r.Y}
}

// Right returns the exclusive right edge (X + W).
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the exclusive bottom edge (Y + H).
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Valid reports whether the rect has positive extents.
func (r Rect) Valid() bool {
	return r.W >= 1 && r.H >= 1
}

// At returns the rect moved so its origin is the given cell, keeping extents.
func (r Rect) At(origin Cell) Rect {
	return Rect{X: origin.X, Y: origin.Y, W: r.W, H: r.H}
}

// Translate returns the rect shifted by dx, dy cells.
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Intersects reports whether two rects share at least one cell.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether the cell lies inside the rect.
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.X && c.X < r.Right() && c.Y >= r.Y && c.Y < r.Bottom()
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Union returns the smallest rect covering both r and o.
func (r Rect) Union(o Rect) Rect {
	x := min(r.X, o.X)
	y := min(r.Y, o.Y)
	right := max(r.Right(), o.Right())
	bottom := max(r.Bottom(), o.Bottom())
	return Rect{X: x, Y: y, W: right - x, H: bottom - y}
}

// String formats the rect as "WxH at (X,Y)" for log and error messages.
func (r Rect) String() string {
	return fmt.Sprintf("%dx%d at (%d,%d)", r.W, r.H, r.X, r.Y)
}
