// Package panel owns the lifecycle of dashboard panels: creation, updates,
// duplication, and deletion. The registry connects the plugin table (which
// types exist), the grid (where panels sit), and the scheduler (who polls
// them), and guarantees panel ids are unique for the life of the process.
package panel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gridsens/gridsens/internal/errors"
	"github.com/gridsens/gridsens/internal/grid"
	"github.com/gridsens/gridsens/internal/logger"
	"github.com/gridsens/gridsens/internal/plugin"
)

// Poller is the slice of the scheduler the registry drives. Register starts
// a poll task, Replace swaps a task's source or cadence, Remove cancels the
// task and discards anything undelivered.
type Poller interface {
	Register(id string, src plugin.Source, interval time.Duration)
	Replace(id string, src plugin.Source, interval time.Duration)
	Remove(id string)
}

// Spec describes a panel to create. A zero Rect means "auto-place at the
// first free spot" using DefaultW×DefaultH. ID and Z are normally left zero;
// layout restore sets them to preserve stored identity and stacking.
type Spec struct {
	ID            string
	SourceType    string
	DisplayerType string
	SourceOpts    map[string]any
	DisplayerOpts map[string]any
	Rect          grid.Rect
	Interval      time.Duration
	Style         plugin.Style
	Z             int
}

// Changes describes a panel update. Nil/zero fields are left unchanged.
type Changes struct {
	SourceOpts    map[string]any
	DisplayerType string
	DisplayerOpts map[string]any
	Interval      *time.Duration
	Style         *plugin.Style
}

// Registry tracks live panels. Not safe for concurrent use; the UI
// goroutine owns it.
type Registry struct {
	grid    *grid.Model
	plugins *plugin.Registry
	poller  Poller
	log     logger.Logger

	panels map[string]*Panel
	used   map[string]struct{}
	nextZ  int
}

// NewRegistry creates an empty panel registry on top of the given grid,
// plugin table, and poller.
func NewRegistry(g *grid.Model, plugins *plugin.Registry, poller Poller, log logger.Logger) *Registry {
	if log == nil {
		log = logger.Noop()
	}
	return &Registry{
		grid:    g,
		plugins: plugins,
		poller:  poller,
		log:     log,
		panels:  make(map[string]*Panel),
		used:    make(map[string]struct{}),
		nextZ:   1,
	}
}

// Grid returns the grid model the registry places panels on.
func (r *Registry) Grid() *grid.Model { return r.grid }

// AdoptGrid swaps the registry onto a fresh grid. Only legal while no panels
// are live; profile loads use it to honor the stored grid extents while
// keeping the used-id ledger intact.
func (r *Registry) AdoptGrid(g *grid.Model) error {
	if len(r.panels) > 0 {
		return errors.New(errors.ErrInternal,
			"Cannot swap the grid while panels are live", "")
	}
	r.grid = g
	return nil
}

// Create builds a panel from the spec: checks source/displayer compatibility,
// instantiates both, claims grid cells, and registers the poll task. Any
// failure rolls back fully.
func (r *Registry) Create(spec Spec) (*Panel, error) {
	srcInfo, ok := r.plugins.Source(spec.SourceType)
	if !ok {
		return nil, errors.New(errors.ErrUnknownType,
			fmt.Sprintf("No source registered as '%s'", spec.SourceType),
			"Run 'gridsens check' to list registered types")
	}
	dispInfo, ok := r.plugins.Displayer(spec.DisplayerType)
	if !ok {
		return nil, errors.New(errors.ErrUnknownType,
			fmt.Sprintf("No displayer registered as '%s'", spec.DisplayerType),
			"Run 'gridsens check' to list registered types")
	}
	if !dispInfo.CanRender(srcInfo.Shape) {
		return nil, errors.New(errors.ErrIncompatible,
			fmt.Sprintf("Displayer '%s' cannot render '%s' data from source '%s'",
				spec.DisplayerType, srcInfo.Shape, spec.SourceType),
			"Pick a displayer that accepts the source's data shape")
	}

	id := spec.ID
	if id == "" {
		id = r.newID()
	} else if _, taken := r.used[id]; taken {
		return nil, errors.New(errors.ErrInternal,
			fmt.Sprintf("Panel id %s was already used in this session", id), "")
	}

	rect := spec.Rect
	if rect.W == 0 && rect.H == 0 {
		w, h := DefaultW, DefaultH
		spot, found := r.grid.FreeSpot(w, h)
		if !found {
			return nil, errors.New(errors.ErrPlacement,
				fmt.Sprintf("No free %dx%d region left on the grid", w, h),
				"Remove or shrink a panel to make room")
		}
		rect = grid.NewRect(spot, w, h)
	}

	src, err := r.plugins.NewSource(spec.SourceType, spec.SourceOpts)
	if err != nil {
		return nil, err
	}
	disp, err := r.plugins.NewDisplayer(spec.DisplayerType, spec.DisplayerOpts)
	if err != nil {
		_ = src.Close()
		return nil, err
	}

	if err := r.grid.Place(id, rect); err != nil {
		_ = src.Close()
		_ = disp.Close()
		return nil, err
	}

	z := spec.Z
	if z == 0 {
		z = r.nextZ
	}
	if z >= r.nextZ {
		r.nextZ = z + 1
	}

	p := &Panel{
		ID:            id,
		SourceType:    spec.SourceType,
		DisplayerType: spec.DisplayerType,
		SourceOpts:    copyOpts(spec.SourceOpts),
		DisplayerOpts: copyOpts(spec.DisplayerOpts),
		Interval:      spec.Interval,
		Style:         spec.Style,
		Z:             z,
		source:        src,
		displayer:     disp,
	}
	r.panels[id] = p
	r.used[id] = struct{}{}
	r.poller.Register(id, src, spec.Interval)
	r.log.Debug("created panel %s (%s/%s) %s", id, spec.SourceType, spec.DisplayerType, rect)
	return p, nil
}

// Update applies changes to a live panel. New instances are built and
// validated before anything is swapped, so a failed update leaves the panel
// untouched. Replacing source options rebuilds the source, restarts its poll
// task, resets the displayer's accumulated state, and clears any latched
// error.
func (r *Registry) Update(id string, ch Changes) error {
	p, ok := r.panels[id]
	if !ok {
		return r.unknownPanel(id)
	}

	newDispType := p.DisplayerType
	if ch.DisplayerType != "" {
		newDispType = ch.DisplayerType
	}

	srcInfo, _ := r.plugins.Source(p.SourceType)
	dispInfo, ok := r.plugins.Displayer(newDispType)
	if !ok {
		return errors.New(errors.ErrUnknownType,
			fmt.Sprintf("No displayer registered as '%s'", newDispType),
			"Run 'gridsens check' to list registered types")
	}
	if !dispInfo.CanRender(srcInfo.Shape) {
		return errors.New(errors.ErrIncompatible,
			fmt.Sprintf("Displayer '%s' cannot render '%s' data from source '%s'",
				newDispType, srcInfo.Shape, p.SourceType),
			"Pick a displayer that accepts the source's data shape")
	}

	// Build replacements first; nothing is committed until all succeed.
	var newSrc plugin.Source
	if ch.SourceOpts != nil {
		s, err := r.plugins.NewSource(p.SourceType, ch.SourceOpts)
		if err != nil {
			return err
		}
		newSrc = s
	}

	var newDisp plugin.Displayer
	if ch.DisplayerType != "" || ch.DisplayerOpts != nil {
		opts := p.DisplayerOpts
		if ch.DisplayerOpts != nil {
			opts = ch.DisplayerOpts
		}
		d, err := r.plugins.NewDisplayer(newDispType, opts)
		if err != nil {
			if newSrc != nil {
				_ = newSrc.Close()
			}
			return err
		}
		newDisp = d
	}

	interval := p.Interval
	if ch.Interval != nil {
		interval = *ch.Interval
	}

	if newSrc != nil {
		r.poller.Replace(id, newSrc, interval)
		_ = p.source.Close()
		p.source = newSrc
		p.SourceOpts = copyOpts(ch.SourceOpts)
		p.lastErr = nil
		p.lastValue = plugin.Value{}
		if newDisp == nil {
			p.displayer.Reset()
		}
	} else if ch.Interval != nil {
		r.poller.Replace(id, p.source, interval)
	}
	p.Interval = interval

	if newDisp != nil {
		_ = p.displayer.Close()
		p.displayer = newDisp
		p.DisplayerType = newDispType
		if ch.DisplayerOpts != nil {
			p.DisplayerOpts = copyOpts(ch.DisplayerOpts)
		}
		if !p.lastValue.IsZero() {
			p.displayer.Push(p.lastValue)
		}
	}

	if ch.Style != nil {
		p.Style = *ch.Style
	}

	r.log.Debug("updated panel %s", id)
	return nil
}

// Delete removes a panel: its poll task is cancelled first so nothing can be
// delivered afterwards, then its cells are released and both instances
// closed. The id stays burned for the rest of the process.
func (r *Registry) Delete(id string) error {
	p, ok := r.panels[id]
	if !ok {
		return r.unknownPanel(id)
	}
	r.poller.Remove(id)
	r.grid.Release(id)
	_ = p.source.Close()
	_ = p.displayer.Close()
	delete(r.panels, id)
	r.log.Debug("deleted panel %s", id)
	return nil
}

// Clone duplicates a panel with the same configuration at the first free
// spot matching the original's size.
func (r *Registry) Clone(id string) (*Panel, error) {
	p, ok := r.panels[id]
	if !ok {
		return nil, r.unknownPanel(id)
	}
	rect, _ := r.grid.RectOf(id)
	spot, found := r.grid.FreeSpot(rect.W, rect.H)
	if !found {
		return nil, errors.New(errors.ErrPlacement,
			fmt.Sprintf("No free %dx%d region left on the grid", rect.W, rect.H),
			"Remove or shrink a panel to make room")
	}
	return r.Create(Spec{
		SourceType:    p.SourceType,
		DisplayerType: p.DisplayerType,
		SourceOpts:    copyOpts(p.SourceOpts),
		DisplayerOpts: copyOpts(p.DisplayerOpts),
		Rect:          grid.NewRect(spot, rect.W, rect.H),
		Interval:      p.Interval,
		Style:         p.Style,
	})
}

// Get returns a live panel by id.
func (r *Registry) Get(id string) (*Panel, bool) {
	p, ok := r.panels[id]
	return p, ok
}

// All returns live panels sorted by z-order, lowest first (render order).
func (r *Registry) All() []*Panel {
	out := make([]*Panel, 0, len(r.panels))
	for _, p := range r.panels {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Z != out[j].Z {
			return out[i].Z < out[j].Z
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of live panels.
func (r *Registry) Count() int { return len(r.panels) }

// PromoteZ raises a panel above all others, used when a drag commits.
func (r *Registry) PromoteZ(id string) {
	p, ok := r.panels[id]
	if !ok {
		return
	}
	p.Z = r.nextZ
	r.nextZ++
}

// RectOf returns the panel's current placement.
func (r *Registry) RectOf(id string) (grid.Rect, bool) {
	return r.grid.RectOf(id)
}

func (r *Registry) unknownPanel(id string) error {
	return errors.New(errors.ErrInternal,
		fmt.Sprintf("No panel with id %s", id), "")
}

// newID mints a fresh panel id. Ids are "panel_" plus 12 hex chars and are
// never reused within a process, so a deleted panel's id cannot resurrect.
func (r *Registry) newID() string {
	for {
		raw := strings.ReplaceAll(uuid.NewString(), "-", "")
		id := "panel_" + raw[:12]
		if _, taken := r.used[id]; !taken {
			return id
		}
	}
}

func copyOpts(opts map[string]any) map[string]any {
	if opts == nil {
		return nil
	}
	out := make(map[string]any, len(opts))
	for k, v := range opts {
		out[k] = v
	}
	return out
}
