// Package grid tracks panel placements on a uniform cell grid and is the
// single authority on occupancy. Placements never overlap and never extend
// past the grid bounds; every mutating operation validates first and commits
// only when the whole operation is valid, so a rejected call leaves the grid
// exactly as it was.
package grid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gridsens/gridsens/internal/errors"
)

// Model holds the placement of every panel on the grid, keyed by panel id.
// It is not safe for concurrent use; all calls must come from the owning
// goroutine.
type Model struct {
	cols       int
	rows       int
	placements map[string]Rect
}

// New creates an empty grid with the given dimensions. Dimensions below 1
// are clamped to 1.
func New(cols, rows int) *Model {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Model{
		cols:       cols,
		rows:       rows,
		placements: make(map[string]Rect),
	}
}

// Columns returns the grid width in cells.
func (m *Model) Columns() int { return m.cols }

// Rows returns the grid height in cells.
func (m *Model) Rows() int { return m.rows }

// Bounds returns the grid area as a rect at the origin.
func (m *Model) Bounds() Rect {
	return Rect{X: 0, Y: 0, W: m.cols, H: m.rows}
}

// Count returns the number of placements.
func (m *Model) Count() int { return len(m.placements) }

// RectOf returns the placement for a panel id.
func (m *Model) RectOf(id string) (Rect, bool) {
	r, ok := m.placements[id]
	return r, ok
}

// Placements returns a copy of all placements keyed by panel id.
func (m *Model) Placements() map[string]Rect {
	out := make(map[string]Rect, len(m.placements))
	for id, r := range m.placements {
		out[id] = r
	}
	return out
}

// Inside reports whether the rect lies entirely within the grid bounds.
func (m *Model) Inside(r Rect) bool {
	return r.X >= 0 && r.Y >= 0 && r.Right() <= m.cols && r.Bottom() <= m.rows
}

// Occupied reports whether any cell of the rect is taken by a panel other
// than those in exclude. Rects that fall outside the grid count as occupied.
func (m *Model) Occupied(r Rect, exclude ...string) bool {
	if !m.Inside(r) {
		return true
	}
	return len(m.conflicts(r, exclude)) > 0
}

// Fits reports whether the rect is fully on-grid and free of conflicts.
func (m *Model) Fits(r Rect, exclude ...string) bool {
	return r.Valid() && !m.Occupied(r, exclude...)
}

// Conflicts returns the ids of panels overlapping the rect, excluding the
// given ids, sorted for stable error messages.
func (m *Model) Conflicts(r Rect, exclude ...string) []string {
	ids := m.conflicts(r, exclude)
	sort.Strings(ids)
	return ids
}

func (m *Model) conflicts(r Rect, exclude []string) []string {
	var ids []string
	for id, placed := range m.placements {
		if contains(exclude, id) {
			continue
		}
		if placed.Intersects(r) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Place adds a new placement for id. It fails without mutating when the rect
// has invalid extents, falls off the grid, collides with another panel, or
// the id is already placed.
func (m *Model) Place(id string, r Rect) error {
	if _, ok := m.placements[id]; ok {
		return errors.New(errors.ErrInternal,
			fmt.Sprintf("Panel %s is already placed", id), "")
	}
	if err := m.check(r, []string{id}); err != nil {
		return err
	}
	m.placements[id] = r
	return nil
}

// Move relocates an existing placement to a new origin, keeping its size.
func (m *Model) Move(id string, to Cell) error {
	r, ok := m.placements[id]
	if !ok {
		return errors.New(errors.ErrInternal,
			fmt.Sprintf("No placement for panel %s", id), "")
	}
	target := r.At(to)
	if err := m.check(target, []string{id}); err != nil {
		return err
	}
	m.placements[id] = target
	return nil
}

// Resize replaces an existing placement with the given rect. The caller is
// responsible for anchor math; the grid only enforces validity.
func (m *Model) Resize(id string, r Rect) error {
	if _, ok := m.placements[id]; !ok {
		return errors.New(errors.ErrInternal,
			fmt.Sprintf("No placement for panel %s", id), "")
	}
	if err := m.check(r, []string{id}); err != nil {
		return err
	}
	m.placements[id] = r
	return nil
}

// Probe runs the validation half of Apply without committing anything.
// Gesture previews use it to mark a pending drop as valid or blocked.
func (m *Model) Probe(moves map[string]Rect) error {
	exclude := make([]string, 0, len(moves))
	for id := range moves {
		exclude = append(exclude, id)
	}
	for id, r := range moves {
		if _, ok := m.placements[id]; !ok {
			return errors.New(errors.ErrInternal,
				fmt.Sprintf("No placement for panel %s", id), "")
		}
		if err := m.check(r, exclude); err != nil {
			return err
		}
	}
	return nil
}

// Apply commits a set of placements as one atomic operation: either every
// rect is valid against the grid (with all moved panels excluded from the
// conflict check) and all are applied, or none are. Used for group drags.
func (m *Model) Apply(moves map[string]Rect) error {
	if len(moves) == 0 {
		return nil
	}
	if err := m.Probe(moves); err != nil {
		return err
	}
	for id, r := range moves {
		m.placements[id] = r
	}
	return nil
}

// Release removes a placement. Releasing an unknown id is a no-op.
func (m *Model) Release(id string) {
	delete(m.placements, id)
}

// FreeSpot scans the grid row-major for the first origin where a w×h rect
// fits, used to auto-place new panels and to relocate stale placements.
func (m *Model) FreeSpot(w, h int) (Cell, bool) {
	if w < 1 || h < 1 || w > m.cols || h > m.rows {
		return Cell{}, false
	}
	for y := 0; y <= m.rows-h; y++ {
		for x := 0; x <= m.cols-w; x++ {
			r := Rect{X: x, Y: y, W: w, H: h}
			if len(m.conflicts(r, nil)) == 0 {
				return Cell{X: x, Y: y}, true
			}
		}
	}
	return Cell{}, false
}

// check validates a candidate rect and returns a placement error naming the
// blockers when it cannot be committed.
func (m *Model) check(r Rect, exclude []string) error {
	if !r.Valid() {
		return errors.New(errors.ErrPlacement,
			fmt.Sprintf("Placement %s has invalid size", r),
			"Panels must span at least one cell in each direction")
	}
	if !m.Inside(r) {
		return errors.New(errors.ErrPlacement,
			fmt.Sprintf("Placement %s falls outside the %dx%d grid", r, m.cols, m.rows),
			"Keep the panel fully inside the grid")
	}
	if ids := m.conflicts(r, exclude); len(ids) > 0 {
		sort.Strings(ids)
		return errors.New(errors.ErrPlacement,
			fmt.Sprintf("Placement %s overlaps %s", r, strings.Join(ids, ", ")),
			"Move the panel to a free region of the grid")
	}
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
