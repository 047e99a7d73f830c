// Package workspace assembles a running dashboard: the grid, the panel
// registry, the scheduler, and the layout store, wired to one settings
// document. The TUI and the CLI commands both drive the dashboard through
// this layer instead of stitching the pieces together themselves.
package workspace

import (
	"github.com/gridsens/gridsens/internal/config"
	"github.com/gridsens/gridsens/internal/errors"
	"github.com/gridsens/gridsens/internal/grid"
	"github.com/gridsens/gridsens/internal/layout"
	"github.com/gridsens/gridsens/internal/logger"
	"github.com/gridsens/gridsens/internal/panel"
	"github.com/gridsens/gridsens/internal/plugin"
	"github.com/gridsens/gridsens/internal/sched"
)

// Workspace owns one dashboard session. All methods are UI-goroutine only;
// the scheduler does its own locking internally.
type Workspace struct {
	settings *config.Settings
	plugins  *plugin.Registry
	log      logger.Logger

	grid   *grid.Model
	panels *panel.Registry
	sched  *sched.Scheduler
	store  *layout.Store

	profile string

	// Unknown-key payloads captured at load time, written back on save.
	docExtra   map[string]any
	gridExtra  map[string]any
	panelExtra map[string]map[string]any
}

// New assembles a workspace from validated settings and a populated plugin
// registry.
func New(settings *config.Settings, plugins *plugin.Registry, log logger.Logger) *Workspace {
	if log == nil {
		log = logger.Noop()
	}

	g := grid.New(settings.Grid.Columns, settings.Grid.Rows)
	scheduler := sched.New(sched.Options{
		Interval:     settings.Poll.Interval,
		FetchTimeout: settings.Poll.Timeout,
		Logger:       log,
	})
	store := layout.NewStore(settings.Profiles.Dir, layout.StoreOptions{
		Debounce: settings.Autosave.Debounce,
		Logger:   log,
	})

	return &Workspace{
		settings:   settings,
		plugins:    plugins,
		log:        log,
		grid:       g,
		panels:     panel.NewRegistry(g, plugins, scheduler, log),
		sched:      scheduler,
		store:      store,
		panelExtra: make(map[string]map[string]any),
	}
}

// Settings returns the settings the workspace was built from.
func (w *Workspace) Settings() *config.Settings { return w.settings }

// Plugins returns the source/displayer type table.
func (w *Workspace) Plugins() *plugin.Registry { return w.plugins }

// Grid returns the live grid model.
func (w *Workspace) Grid() *grid.Model { return w.grid }

// Panels returns the live panel registry.
func (w *Workspace) Panels() *panel.Registry { return w.panels }

// Scheduler returns the poll scheduler.
func (w *Workspace) Scheduler() *sched.Scheduler { return w.sched }

// Store returns the profile store.
func (w *Workspace) Store() *layout.Store { return w.store }

// Profile returns the name of the profile this session saves to.
func (w *Workspace) Profile() string { return w.profile }

// BindProfile points the session at a profile without loading or saving
// anything. Used after a corrupt profile falls back to an empty layout, so
// the next save deliberately replaces the broken file.
func (w *Workspace) BindProfile(name string) { w.profile = name }

// OpenProfile makes name the session's profile: loading it when it exists on
// disk, starting it as a fresh empty layout otherwise.
func (w *Workspace) OpenProfile(name string) error {
	if !w.store.Exists(name) {
		w.profile = name
		return w.Restore(layout.NewDocument(w.settings.Grid.Columns, w.settings.Grid.Rows))
	}
	return w.LoadProfile(name)
}

// LoadProfile loads a stored profile and rebuilds the dashboard from it.
func (w *Workspace) LoadProfile(name string) error {
	doc, err := w.store.Load(name)
	if err != nil {
		return err
	}
	if err := w.Restore(doc); err != nil {
		return err
	}
	w.profile = name
	return nil
}

// SaveProfile writes the current dashboard under name immediately, bypassing
// the autosave debounce. An empty name saves to the session's profile.
func (w *Workspace) SaveProfile(name string) error {
	if name == "" {
		name = w.profile
	}
	if name == "" {
		return errors.New(errors.ErrSettings,
			"No profile name to save to", "Pass a profile name")
	}
	if err := w.store.Save(name, w.Snapshot()); err != nil {
		return err
	}
	w.profile = name
	return nil
}

// MarkDirty schedules a debounced autosave of the current profile. Call it
// after every committed layout or panel change; bursts collapse into one
// write.
func (w *Workspace) MarkDirty() {
	if !w.settings.Autosave.Enabled || w.profile == "" {
		return
	}
	w.store.Schedule(w.profile, w.Snapshot())
}

// Restore replaces the dashboard with the document's contents. Panels that
// no longer make sense - unknown types, bad options, boards too crowded to
// refit them - are skipped with a warning rather than failing the whole
// load. Stored placements that collide or fall off the grid are relocated to
// the first free spot.
func (w *Workspace) Restore(doc *layout.Document) error {
	for _, p := range w.panels.All() {
		if err := w.panels.Delete(p.ID); err != nil {
			return err
		}
	}

	cols, rows := doc.Grid.Columns, doc.Grid.Rows
	if cols < 1 || rows < 1 {
		cols, rows = w.settings.Grid.Columns, w.settings.Grid.Rows
	}
	g := grid.New(cols, rows)
	if err := w.panels.AdoptGrid(g); err != nil {
		return err
	}
	w.grid = g

	w.docExtra = doc.Extra
	w.gridExtra = doc.Grid.Extra
	w.panelExtra = make(map[string]map[string]any)

	ordered := &layout.Document{Panels: append([]layout.PanelDoc(nil), doc.Panels...)}
	ordered.SortPanels()
	for _, pd := range ordered.Panels {
		if err := w.restorePanel(pd); err != nil {
			w.log.Warn("skipping panel %s (%s/%s): %v", pd.ID, pd.Source, pd.Display, err)
		}
	}
	return nil
}

func (w *Workspace) restorePanel(pd layout.PanelDoc) error {
	interval, err := pd.PollInterval()
	if err != nil {
		return err
	}

	// YAML decodes whole numbers as int; normalizing through the declared
	// schemas gives a reloaded panel the same option types it was saved with.
	srcOpts := pd.SourceOptions
	if info, ok := w.plugins.Source(pd.Source); ok {
		srcOpts = info.Schema.Normalized(srcOpts)
	}
	dispOpts := pd.DisplayOptions
	if info, ok := w.plugins.Displayer(pd.Display); ok {
		dispOpts = info.Schema.Normalized(dispOpts)
	}

	spec := panel.Spec{
		ID:            pd.ID,
		SourceType:    pd.Source,
		DisplayerType: pd.Display,
		SourceOpts:    srcOpts,
		DisplayerOpts: dispOpts,
		Rect:          grid.Rect{X: pd.X, Y: pd.Y, W: pd.W, H: pd.H},
		Interval:      interval,
		Z:             pd.Z,
		Style: plugin.Style{
			Title:     pd.Title,
			ShowTitle: !pd.HideTitle,
			Accent:    pd.Accent,
			Border:    pd.Border,
		},
	}

	p, err := w.panels.Create(spec)
	if errors.IsCode(err, errors.ErrPlacement) && spec.Rect.W > 0 && spec.Rect.H > 0 {
		relocated := spec.Rect
		if relocated.W > w.grid.Columns() {
			relocated.W = w.grid.Columns()
		}
		if relocated.H > w.grid.Rows() {
			relocated.H = w.grid.Rows()
		}
		if spot, found := w.grid.FreeSpot(relocated.W, relocated.H); found {
			w.log.Warn("relocating panel %s: stored placement %s no longer fits", pd.ID, spec.Rect)
			spec.Rect = grid.NewRect(spot, relocated.W, relocated.H)
			p, err = w.panels.Create(spec)
		}
	}
	if err != nil {
		return err
	}

	if len(pd.Extra) > 0 {
		w.panelExtra[p.ID] = pd.Extra
	}
	return nil
}

// Snapshot captures the dashboard as a layout document, including any
// unknown keys carried over from the loaded file.
func (w *Workspace) Snapshot() *layout.Document {
	doc := layout.NewDocument(w.grid.Columns(), w.grid.Rows())
	doc.Extra = w.docExtra
	doc.Grid.Extra = w.gridExtra

	for _, p := range w.panels.All() {
		rect, ok := w.panels.RectOf(p.ID)
		if !ok {
			continue
		}
		pd := layout.PanelDoc{
			ID:             p.ID,
			Source:         p.SourceType,
			Display:        p.DisplayerType,
			X:              rect.X,
			Y:              rect.Y,
			W:              rect.W,
			H:              rect.H,
			Z:              p.Z,
			Title:          p.Style.Title,
			HideTitle:      !p.Style.ShowTitle,
			Accent:         p.Style.Accent,
			Border:         p.Style.Border,
			SourceOptions:  p.SourceOpts,
			DisplayOptions: p.DisplayerOpts,
			Extra:          w.panelExtra[p.ID],
		}
		if p.Interval > 0 {
			pd.Interval = p.Interval.String()
		}
		doc.Panels = append(doc.Panels, pd)
	}
	return doc
}

// CreatePanel adds a panel and schedules an autosave.
func (w *Workspace) CreatePanel(spec panel.Spec) (*panel.Panel, error) {
	p, err := w.panels.Create(spec)
	if err != nil {
		return nil, err
	}
	w.MarkDirty()
	return p, nil
}

// UpdatePanel applies panel changes and schedules an autosave.
func (w *Workspace) UpdatePanel(id string, ch panel.Changes) error {
	if err := w.panels.Update(id, ch); err != nil {
		return err
	}
	w.MarkDirty()
	return nil
}

// DeletePanel removes a panel, drops its carried unknown keys, and schedules
// an autosave.
func (w *Workspace) DeletePanel(id string) error {
	if err := w.panels.Delete(id); err != nil {
		return err
	}
	delete(w.panelExtra, id)
	w.MarkDirty()
	return nil
}

// ClonePanel duplicates a panel and schedules an autosave.
func (w *Workspace) ClonePanel(id string) (*panel.Panel, error) {
	p, err := w.panels.Clone(id)
	if err != nil {
		return nil, err
	}
	w.MarkDirty()
	return p, nil
}

// Updates exposes the scheduler's wakeup signal for the event loop.
func (w *Workspace) Updates() <-chan struct{} { return w.sched.Updates() }

// PumpUpdates drains delivered poll results into their panels and returns
// the number applied. Results for panels deleted meanwhile are dropped.
func (w *Workspace) PumpUpdates() int {
	n := 0
	for _, u := range w.sched.Drain() {
		p, ok := w.panels.Get(u.PanelID)
		if !ok {
			continue
		}
		p.SetResult(u.Value, u.Err, u.At)
		if u.Err != nil {
			w.log.Debug("panel %s fetch failed: %v", u.PanelID, u.Err)
		}
		n++
	}
	return n
}

// PauseAll suspends polling, used when the terminal loses focus.
func (w *Workspace) PauseAll() { w.sched.PauseAll() }

// ResumeAll resumes polling after a PauseAll.
func (w *Workspace) ResumeAll() { w.sched.ResumeAll() }

// Close stops polling, flushes any pending autosave, and releases every
// panel's source and displayer.
func (w *Workspace) Close() {
	w.sched.Stop()
	w.store.Close()
	for _, p := range w.panels.All() {
		_ = p.Source().Close()
		_ = p.Displayer().Close()
	}
}
