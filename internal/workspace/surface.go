package workspace

import (
	"sort"

	"github.com/gridsens/gridsens/internal/grid"
)

// Surface adapts the workspace for the interaction controller: hit tests
// respect panel z-order, commits go through the grid's atomic Apply, and
// every commit schedules an autosave.
type Surface struct {
	w *Workspace
}

// Surface returns the gesture surface over this workspace.
func (w *Workspace) Surface() *Surface {
	return &Surface{w: w}
}

// PanelAt returns the topmost panel covering the cell.
func (s *Surface) PanelAt(c grid.Cell) (string, bool) {
	best := ""
	bestZ := 0
	found := false
	for id, r := range s.w.grid.Placements() {
		if !r.Contains(c) {
			continue
		}
		z := 0
		if p, ok := s.w.panels.Get(id); ok {
			z = p.Z
		}
		if !found || z > bestZ {
			best, bestZ, found = id, z, true
		}
	}
	return best, found
}

// RectOf returns a panel's current placement.
func (s *Surface) RectOf(id string) (grid.Rect, bool) {
	return s.w.grid.RectOf(id)
}

// PanelIDs lists every placed panel, sorted for stable iteration.
func (s *Surface) PanelIDs() []string {
	placements := s.w.grid.Placements()
	ids := make([]string, 0, len(placements))
	for id := range placements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Probe validates a set of placements without committing them.
func (s *Surface) Probe(moves map[string]grid.Rect) error {
	return s.w.grid.Probe(moves)
}

// Apply commits a set of placements atomically and schedules an autosave.
func (s *Surface) Apply(moves map[string]grid.Rect) error {
	if err := s.w.grid.Apply(moves); err != nil {
		return err
	}
	s.w.MarkDirty()
	return nil
}

// Promote raises a panel above all others and schedules an autosave so the
// committed stacking order persists.
func (s *Surface) Promote(id string) {
	s.w.panels.PromoteZ(id)
	s.w.MarkDirty()
}

// Bounds returns the grid area.
func (s *Surface) Bounds() grid.Rect {
	return s.w.grid.Bounds()
}
