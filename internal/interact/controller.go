// Package interact turns raw pointer events into grid edits. A gesture
// (drag, resize, rubber-band select) only ever touches a preview; the
// grid itself is written once, at release, and only if the whole move
// is valid. A rejected release reverts to the pre-gesture layout.
package interact

import (
	"sort"

	"github.com/gridsens/gridsens/internal/grid"
	"github.com/gridsens/gridsens/internal/logger"
)

// State is the controller's current gesture.
type State int

const (
	// StateIdle means no gesture is in progress.
	StateIdle State = iota
	// StateDragging means one or more panels follow the pointer.
	StateDragging
	// StateResizing means one panel edge or corner follows the pointer.
	StateResizing
	// StateSelecting means a rubber-band box follows the pointer.
	StateSelecting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	case StateSelecting:
		return "selecting"
	default:
		return "unknown"
	}
}

// Handle identifies which edge or corner of a panel a resize grabs.
type Handle int

const (
	HandleNone Handle = iota
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
	HandleNW
)

func (h Handle) String() string {
	switch h {
	case HandleN:
		return "n"
	case HandleNE:
		return "ne"
	case HandleE:
		return "e"
	case HandleSE:
		return "se"
	case HandleS:
		return "s"
	case HandleSW:
		return "sw"
	case HandleW:
		return "w"
	case HandleNW:
		return "nw"
	default:
		return "none"
	}
}

// Surface is the dashboard as the controller sees it: enough to hit
// test panels, trial-run a move, and commit it.
type Surface interface {
	// PanelAt returns the topmost panel covering a cell.
	PanelAt(c grid.Cell) (string, bool)
	// RectOf returns a panel's current placement.
	RectOf(id string) (grid.Rect, bool)
	// PanelIDs lists every placed panel.
	PanelIDs() []string
	// Probe validates a set of placements without committing them.
	Probe(moves map[string]grid.Rect) error
	// Apply commits a set of placements atomically.
	Apply(moves map[string]grid.Rect) error
	// Promote raises a panel above all others.
	Promote(id string)
	// Bounds returns the grid area.
	Bounds() grid.Rect
}

// Preview is what the renderer draws while a gesture is in progress.
type Preview struct {
	// Active is false when no gesture is running.
	Active bool
	// Rects holds the ghost placement for each panel in the gesture.
	Rects map[string]grid.Rect
	// Valid reports whether releasing right now would commit.
	Valid bool
	// Box is the rubber-band rectangle in cell space.
	Box grid.Rect
	// BoxActive reports whether Box should be drawn.
	BoxActive bool
}

// Controller runs the pointer state machine over a Surface.
// It is driven from the UI goroutine and is not safe for concurrent use.
type Controller struct {
	surface Surface
	geom    Geometry
	log     logger.Logger

	state     State
	selection map[string]struct{}

	subject string
	handle  Handle
	pressX  int
	pressY  int
	moved   bool
	origin  map[string]grid.Rect
	preview map[string]grid.Rect
	valid   bool

	boxAnchor grid.Cell
	boxCursor grid.Cell
}

// NewController creates an idle controller over the given surface.
func NewController(surface Surface, geom Geometry, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Default()
	}
	return &Controller{
		surface:   surface,
		geom:      geom.norm(),
		log:       log,
		selection: make(map[string]struct{}),
	}
}

// State returns the current gesture state.
func (c *Controller) State() State { return c.state }

// Subject returns the panel the current gesture started on.
func (c *Controller) Subject() string { return c.subject }

// SetGeometry updates the cell metrics, typically after a terminal
// resize. It does not disturb a gesture in progress.
func (c *Controller) SetGeometry(geom Geometry) {
	c.geom = geom.norm()
}

// Selection returns the selected panel ids, sorted.
func (c *Controller) Selection() []string {
	ids := make([]string, 0, len(c.selection))
	for id := range c.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsSelected reports whether a panel is in the selection.
func (c *Controller) IsSelected(id string) bool {
	_, ok := c.selection[id]
	return ok
}

// ClearSelection empties the selection without touching any gesture.
func (c *Controller) ClearSelection() {
	c.selection = make(map[string]struct{})
}

// Preview returns the ghost state for rendering.
func (c *Controller) Preview() Preview {
	if c.state == StateIdle {
		return Preview{}
	}
	p := Preview{Active: true, Valid: c.valid}
	if len(c.preview) > 0 {
		p.Rects = make(map[string]grid.Rect, len(c.preview))
		for id, r := range c.preview {
			p.Rects[id] = r
		}
	}
	if c.state == StateSelecting {
		p.Box = cellBox(c.boxAnchor, c.boxCursor)
		p.BoxActive = true
		p.Valid = true
	}
	return p
}

// Press starts a gesture at a screen position. A press on a panel border
// starts a resize, a press on a panel body starts a drag (of the whole
// selection when the panel is a member), and a press on empty cells
// starts a rubber-band selection. Presses during a gesture are ignored.
func (c *Controller) Press(x, y int) {
	if c.state != StateIdle {
		return
	}
	c.pressX, c.pressY = x, y
	c.moved = false

	cell := c.geom.CellAt(x, y)
	id, ok := c.surface.PanelAt(cell)
	if !ok {
		c.state = StateSelecting
		c.boxAnchor = cell
		c.boxCursor = cell
		c.subject = ""
		return
	}

	rect, ok := c.surface.RectOf(id)
	if !ok {
		return
	}
	c.subject = id

	if h := c.handleAt(rect, x, y); h != HandleNone {
		c.state = StateResizing
		c.handle = h
		c.origin = map[string]grid.Rect{id: rect}
		c.preview = map[string]grid.Rect{id: rect}
		c.valid = true
		return
	}

	c.state = StateDragging
	c.handle = HandleNone
	c.origin = make(map[string]grid.Rect)
	if c.IsSelected(id) {
		for member := range c.selection {
			if r, ok := c.surface.RectOf(member); ok {
				c.origin[member] = r
			}
		}
	}
	c.origin[id] = rect
	c.preview = copyRects(c.origin)
	c.valid = true
}

// Move updates the gesture preview for the pointer's new position.
// Nothing is committed here.
func (c *Controller) Move(x, y int) {
	switch c.state {
	case StateDragging:
		dx, dy := c.geom.DeltaCells(x-c.pressX, y-c.pressY)
		if dx != 0 || dy != 0 {
			c.moved = true
		}
		c.preview = translated(c.origin, dx, dy)
		c.valid = (dx == 0 && dy == 0) || c.surface.Probe(c.preview) == nil

	case StateResizing:
		dx, dy := c.geom.DeltaCells(x-c.pressX, y-c.pressY)
		r := c.resizeRect(dx, dy)
		if r != c.origin[c.subject] {
			c.moved = true
		}
		c.preview = map[string]grid.Rect{c.subject: r}
		c.valid = r == c.origin[c.subject] || c.surface.Probe(c.preview) == nil

	case StateSelecting:
		c.boxCursor = c.geom.CellAt(x, y)
	}
}

// Release ends the gesture. Drags and resizes commit atomically through
// the surface; a rejected commit leaves the layout untouched and the
// error is returned for the UI to surface. A press-and-release that
// never crossed half a cell is a click: with the additive modifier it
// toggles the panel's selection membership, without it the panel
// becomes the sole selection. The modifier is read here, at release,
// never at press.
func (c *Controller) Release(x, y int, additive bool) error {
	defer c.reset()

	switch c.state {
	case StateDragging:
		dx, dy := c.geom.DeltaCells(x-c.pressX, y-c.pressY)
		if dx == 0 && dy == 0 {
			if !c.moved {
				c.click(additive)
			}
			return nil
		}
		moves := translated(c.origin, dx, dy)
		if err := c.surface.Apply(moves); err != nil {
			c.log.Debug("drag rejected: %v", err)
			return err
		}
		c.promoteAll(moves)
		if !c.IsSelected(c.subject) {
			c.selection = map[string]struct{}{c.subject: {}}
		}
		return nil

	case StateResizing:
		dx, dy := c.geom.DeltaCells(x-c.pressX, y-c.pressY)
		r := c.resizeRect(dx, dy)
		if r == c.origin[c.subject] {
			if !c.moved {
				c.click(additive)
			}
			return nil
		}
		if err := c.surface.Apply(map[string]grid.Rect{c.subject: r}); err != nil {
			c.log.Debug("resize rejected: %v", err)
			return err
		}
		c.surface.Promote(c.subject)
		return nil

	case StateSelecting:
		box := cellBox(c.boxAnchor, c.geom.CellAt(x, y))
		hits := make(map[string]struct{})
		for _, id := range c.surface.PanelIDs() {
			if r, ok := c.surface.RectOf(id); ok && r.Intersects(box) {
				hits[id] = struct{}{}
			}
		}
		if additive {
			for id := range hits {
				c.selection[id] = struct{}{}
			}
		} else {
			c.selection = hits
		}
		return nil
	}
	return nil
}

// Cancel aborts the gesture and drops the preview. The selection is
// kept; only the in-flight edit is discarded.
func (c *Controller) Cancel() {
	c.reset()
}

// DetachPanel removes a deleted panel from the selection and from any
// gesture it is part of. Deleting the gesture's subject cancels the
// whole gesture.
func (c *Controller) DetachPanel(id string) {
	delete(c.selection, id)
	if c.state == StateIdle {
		return
	}
	if c.subject == id {
		c.reset()
		return
	}
	delete(c.origin, id)
	delete(c.preview, id)
}

// click applies click-selection semantics to the gesture subject.
func (c *Controller) click(additive bool) {
	if c.subject == "" {
		return
	}
	if additive {
		if c.IsSelected(c.subject) {
			delete(c.selection, c.subject)
		} else {
			c.selection[c.subject] = struct{}{}
		}
		return
	}
	c.selection = map[string]struct{}{c.subject: {}}
}

// promoteAll raises every moved panel, subject last so it ends topmost.
func (c *Controller) promoteAll(moves map[string]grid.Rect) {
	ids := make([]string, 0, len(moves))
	for id := range moves {
		if id != c.subject {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		c.surface.Promote(id)
	}
	c.surface.Promote(c.subject)
}

// reset returns the controller to idle, dropping all gesture state.
func (c *Controller) reset() {
	c.state = StateIdle
	c.subject = ""
	c.handle = HandleNone
	c.moved = false
	c.origin = nil
	c.preview = nil
	c.valid = false
}

// handleAt maps a press position on a panel to a resize handle. The
// border characters are the handles: corners win over edges, and a
// press near the end of an edge counts as the corner to make small
// targets reachable.
func (c *Controller) handleAt(r grid.Rect, x, y int) Handle {
	sx, sy, sw, sh := c.geom.ScreenRect(r)
	left := x == sx
	right := x == sx+sw-1
	top := y == sy
	bottom := y == sy+sh-1
	if !left && !right && !top && !bottom {
		return HandleNone
	}

	nearL := x-sx < c.geom.CellW
	nearR := sx+sw-1-x < c.geom.CellW
	nearT := y-sy < c.geom.CellH
	nearB := sy+sh-1-y < c.geom.CellH

	switch {
	case top && nearL, left && nearT:
		return HandleNW
	case top && nearR, right && nearT:
		return HandleNE
	case bottom && nearL, left && nearB:
		return HandleSW
	case bottom && nearR, right && nearB:
		return HandleSE
	case top:
		return HandleN
	case bottom:
		return HandleS
	case left:
		return HandleW
	default:
		return HandleE
	}
}

// resizeRect applies a cell delta to the anchored edges of the origin
// rect. The opposite edge stays put, the size never drops below one
// cell, and the result is clamped to the grid bounds.
func (c *Controller) resizeRect(dx, dy int) grid.Rect {
	o := c.origin[c.subject]
	bounds := c.surface.Bounds()
	x, y := o.X, o.Y
	right, bottom := o.Right(), o.Bottom()

	switch c.handle {
	case HandleN, HandleNE, HandleNW:
		y = clamp(y+dy, 0, bottom-1)
	case HandleS, HandleSE, HandleSW:
		bottom = clamp(bottom+dy, y+1, bounds.Bottom())
	}
	switch c.handle {
	case HandleW, HandleNW, HandleSW:
		x = clamp(x+dx, 0, right-1)
	case HandleE, HandleNE, HandleSE:
		right = clamp(right+dx, x+1, bounds.Right())
	}

	return grid.Rect{X: x, Y: y, W: right - x, H: bottom - y}
}

// cellBox returns the inclusive rectangle spanned by two cells.
func cellBox(a, b grid.Cell) grid.Rect {
	x0, x1 := min(a.X, b.X), max(a.X, b.X)
	y0, y1 := min(a.Y, b.Y), max(a.Y, b.Y)
	return grid.Rect{X: x0, Y: y0, W: x1 - x0 + 1, H: y1 - y0 + 1}
}

func translated(rects map[string]grid.Rect, dx, dy int) map[string]grid.Rect {
	out := make(map[string]grid.Rect, len(rects))
	for id, r := range rects {
		out[id] = r.Translate(dx, dy)
	}
	return out
}

func copyRects(rects map[string]grid.Rect) map[string]grid.Rect {
	out := make(map[string]grid.Rect, len(rects))
	for id, r := range rects {
		out[id] = r
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
