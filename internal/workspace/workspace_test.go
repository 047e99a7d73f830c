package workspace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsens/gridsens/internal/config"
	"github.com/gridsens/gridsens/internal/grid"
	"github.com/gridsens/gridsens/internal/layout"
	"github.com/gridsens/gridsens/internal/logger"
	"github.com/gridsens/gridsens/internal/panel"
	"github.com/gridsens/gridsens/internal/plugin"
)

type staticSource struct {
	value float64
}

func (s *staticSource) Fetch(ctx context.Context) (plugin.Value, error) {
	return plugin.ScalarValue(s.value, "%"), nil
}

func (s *staticSource) Shape() plugin.Shape { return plugin.ShapePercent }

func (s *staticSource) Close() error { return nil }

type nullDisplayer struct{}

func (d *nullDisplayer) Push(plugin.Value) {}

func (d *nullDisplayer) Render(plugin.Size, plugin.Value, plugin.Style) string { return "" }

func (d *nullDisplayer) Reset() {}

func (d *nullDisplayer) Close() error { return nil }

func testPlugins(t *testing.T) *plugin.Registry {
	t.Helper()
	reg := plugin.NewRegistry()
	require.NoError(t, reg.RegisterSource(plugin.SourceInfo{
		Type:  "val",
		Name:  "Static value",
		Shape: plugin.ShapePercent,
		Schema: plugin.Schema{
			{Key: "value", Label: "Value", Type: plugin.OptionFloat, Default: 42.0},
		},
		New: func(opts map[string]any) (plugin.Source, error) {
			return &staticSource{value: plugin.FloatOpt(opts, "value", 42)}, nil
		},
	}))
	require.NoError(t, reg.RegisterDisplayer(plugin.DisplayerInfo{
		Type:    "box",
		Name:    "Box",
		Accepts: plugin.AllShapes(),
		New: func(opts map[string]any) (plugin.Displayer, error) {
			return &nullDisplayer{}, nil
		},
	}))
	return reg
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	s.Grid.Columns = 32
	s.Grid.Rows = 16
	// Long default cadence keeps the scheduler quiet mid-test; the
	// immediate first fetch still happens
	s.Poll.Interval = time.Hour
	s.Autosave.Debounce = 20 * time.Millisecond
	s.Profiles.Dir = t.TempDir()
	return s
}

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	w := New(testSettings(t), testPlugins(t), logger.Noop())
	t.Cleanup(w.Close)
	return w
}

func spec(rect grid.Rect) panel.Spec {
	return panel.Spec{
		SourceType:    "val",
		DisplayerType: "box",
		Rect:          rect,
		Style:         plugin.Style{ShowTitle: true},
	}
}

func TestOpenProfile_FreshProfileStartsEmpty(t *testing.T) {
	w := newTestWorkspace(t)

	require.NoError(t, w.OpenProfile("default"))

	assert.Equal(t, "default", w.Profile())
	assert.Equal(t, 0, w.Panels().Count())
	assert.Equal(t, 32, w.Grid().Columns())
	assert.Equal(t, 16, w.Grid().Rows())
}

func TestCreatePanel_SchedulesAutosave(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.OpenProfile("default"))

	p, err := w.CreatePanel(spec(grid.Rect{X: 0, Y: 0, W: 4, H: 3}))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return w.Store().Exists("default")
	}, 2*time.Second, 10*time.Millisecond, "autosave should land on disk")

	doc, err := w.Store().Load("default")
	require.NoError(t, err)
	require.Len(t, doc.Panels, 1)
	assert.Equal(t, p.ID, doc.Panels[0].ID)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	settings := testSettings(t)
	plugins := testPlugins(t)

	w := New(settings, plugins, logger.Noop())
	require.NoError(t, w.OpenProfile("work"))

	first, err := w.CreatePanel(panel.Spec{
		SourceType:    "val",
		DisplayerType: "box",
		SourceOpts:    map[string]any{"value": 80.0},
		Rect:          grid.Rect{X: 0, Y: 0, W: 6, H: 4},
		Interval:      5 * time.Second,
		Style:         plugin.Style{Title: "load", ShowTitle: true, Accent: "#ff00aa"},
	})
	require.NoError(t, err)
	second, err := w.CreatePanel(spec(grid.Rect{X: 8, Y: 0, W: 4, H: 3}))
	require.NoError(t, err)

	require.NoError(t, w.SaveProfile(""))
	w.Close()

	// A fresh session over the same profile directory
	w2 := New(settings, plugins, logger.Noop())
	t.Cleanup(w2.Close)
	require.NoError(t, w2.LoadProfile("work"))

	require.Equal(t, 2, w2.Panels().Count())

	p1, ok := w2.Panels().Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, "val", p1.SourceType)
	assert.Equal(t, map[string]any{"value": 80.0}, p1.SourceOpts)
	assert.Equal(t, 5*time.Second, p1.Interval)
	assert.Equal(t, "load", p1.Style.Title)
	assert.True(t, p1.Style.ShowTitle)
	assert.Equal(t, "#ff00aa", p1.Style.Accent)

	r1, ok := w2.Panels().RectOf(first.ID)
	require.True(t, ok)
	assert.Equal(t, grid.Rect{X: 0, Y: 0, W: 6, H: 4}, r1)

	// Z-order survives: second was created later, so it stacks above
	p2, ok := w2.Panels().Get(second.ID)
	require.True(t, ok)
	assert.Greater(t, p2.Z, p1.Z)
}

func TestRestore_NormalizesOptionTypes(t *testing.T) {
	w := newTestWorkspace(t)

	// YAML decodes 80.0 back as the int 80; restore must hand the panel the
	// float the schema declares or a reloaded layout drifts from the saved one.
	doc := layout.NewDocument(32, 16)
	doc.Panels = []layout.PanelDoc{
		{
			ID: "panel_a", Source: "val", Display: "box",
			X: 0, Y: 0, W: 4, H: 3, Z: 1,
			SourceOptions: map[string]any{"value": 80, "custom": "kept"},
		},
	}

	require.NoError(t, w.Restore(doc))

	p, ok := w.Panels().Get("panel_a")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"value": 80.0, "custom": "kept"}, p.SourceOpts)
}

func TestRestore_SkipsUnknownTypesWithWarning(t *testing.T) {
	log := logger.NewBufferLogger()
	w := New(testSettings(t), testPlugins(t), log)
	t.Cleanup(w.Close)

	doc := layout.NewDocument(32, 16)
	doc.Panels = []layout.PanelDoc{
		{ID: "panel_keep", Source: "val", Display: "box", X: 0, Y: 0, W: 4, H: 3, Z: 1},
		{ID: "panel_gone", Source: "nope", Display: "box", X: 8, Y: 0, W: 4, H: 3, Z: 2},
		{ID: "panel_bad", Source: "val", Display: "box", X: 0, Y: 8, W: 4, H: 3, Z: 3, Interval: "soon"},
	}

	require.NoError(t, w.Restore(doc))

	assert.Equal(t, 1, w.Panels().Count())
	_, ok := w.Panels().Get("panel_keep")
	assert.True(t, ok)
	assert.True(t, log.HasLevel("warn"))
}

func TestRestore_RelocatesStalePlacements(t *testing.T) {
	w := newTestWorkspace(t)

	doc := layout.NewDocument(32, 16)
	doc.Panels = []layout.PanelDoc{
		{ID: "panel_a", Source: "val", Display: "box", X: 0, Y: 0, W: 4, H: 3, Z: 1},
		// Same cells as panel_a
		{ID: "panel_b", Source: "val", Display: "box", X: 0, Y: 0, W: 4, H: 3, Z: 2},
		// Off the grid entirely
		{ID: "panel_c", Source: "val", Display: "box", X: 100, Y: 0, W: 4, H: 3, Z: 3},
	}

	require.NoError(t, w.Restore(doc))
	require.Equal(t, 3, w.Panels().Count())

	ra, _ := w.Panels().RectOf("panel_a")
	rb, _ := w.Panels().RectOf("panel_b")
	rc, _ := w.Panels().RectOf("panel_c")

	assert.Equal(t, grid.Rect{X: 0, Y: 0, W: 4, H: 3}, ra)
	assert.False(t, ra.Intersects(rb))
	assert.True(t, w.Grid().Inside(rc))
	// Relocation keeps the stored size
	assert.Equal(t, 4, rb.W)
	assert.Equal(t, 3, rb.H)
}

func TestRestore_PreservesUnknownKeys(t *testing.T) {
	w := newTestWorkspace(t)

	doc := layout.NewDocument(32, 16)
	doc.Extra = map[string]any{"theme": map[string]any{"accent": "#ff0000"}}
	doc.Grid.Extra = map[string]any{"gutter": 2}
	doc.Panels = []layout.PanelDoc{
		{
			ID: "panel_a", Source: "val", Display: "box",
			X: 0, Y: 0, W: 4, H: 3, Z: 1,
			Extra: map[string]any{"note": "keep me"},
		},
	}

	require.NoError(t, w.Restore(doc))
	snap := w.Snapshot()

	assert.Equal(t, doc.Extra, snap.Extra)
	assert.Equal(t, doc.Grid.Extra, snap.Grid.Extra)
	require.Len(t, snap.Panels, 1)
	assert.Equal(t, map[string]any{"note": "keep me"}, snap.Panels[0].Extra)

	// Deleting the panel drops its carried keys
	require.NoError(t, w.DeletePanel("panel_a"))
	snap = w.Snapshot()
	assert.Empty(t, snap.Panels)
}

func TestRestore_HonorsStoredGridSize(t *testing.T) {
	w := newTestWorkspace(t)

	doc := layout.NewDocument(64, 24)
	require.NoError(t, w.Restore(doc))

	assert.Equal(t, 64, w.Grid().Columns())
	assert.Equal(t, 24, w.Grid().Rows())
	// The panel registry follows the new grid
	assert.Equal(t, w.Grid(), w.Panels().Grid())
}

func TestPumpUpdates_DeliversToPanels(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.OpenProfile("default"))

	p, err := w.CreatePanel(spec(grid.Rect{X: 0, Y: 0, W: 4, H: 3}))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		w.PumpUpdates()
		return !p.LastValue().IsZero()
	}, 2*time.Second, 5*time.Millisecond)

	assert.InDelta(t, 42.0, p.LastValue().Scalar, 0.001)
	assert.NoError(t, p.LastErr())
}

func TestSnapshot_OmitsDefaultInterval(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.OpenProfile("default"))

	_, err := w.CreatePanel(spec(grid.Rect{X: 0, Y: 0, W: 4, H: 3}))
	require.NoError(t, err)

	snap := w.Snapshot()
	require.Len(t, snap.Panels, 1)
	assert.Empty(t, snap.Panels[0].Interval)
}

func TestSurface_HitTestAndCommit(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.OpenProfile("default"))

	a, err := w.CreatePanel(spec(grid.Rect{X: 0, Y: 0, W: 4, H: 3}))
	require.NoError(t, err)
	b, err := w.CreatePanel(spec(grid.Rect{X: 8, Y: 0, W: 4, H: 3}))
	require.NoError(t, err)

	s := w.Surface()

	id, ok := s.PanelAt(grid.Cell{X: 1, Y: 1})
	require.True(t, ok)
	assert.Equal(t, a.ID, id)

	_, ok = s.PanelAt(grid.Cell{X: 20, Y: 10})
	assert.False(t, ok)

	assert.Equal(t, []string{a.ID, b.ID}, sortedIDs(s.PanelIDs(), a.ID, b.ID))

	// A probe never mutates
	blocked := map[string]grid.Rect{a.ID: {X: 8, Y: 0, W: 4, H: 3}}
	require.Error(t, s.Probe(blocked))
	ra, _ := s.RectOf(a.ID)
	assert.Equal(t, grid.Rect{X: 0, Y: 0, W: 4, H: 3}, ra)

	// A commit moves the panel and schedules an autosave
	require.NoError(t, s.Apply(map[string]grid.Rect{a.ID: {X: 0, Y: 8, W: 4, H: 3}}))
	ra, _ = s.RectOf(a.ID)
	assert.Equal(t, grid.Rect{X: 0, Y: 8, W: 4, H: 3}, ra)

	s.Promote(a.ID)
	pa, _ := w.Panels().Get(a.ID)
	pb, _ := w.Panels().Get(b.ID)
	assert.Greater(t, pa.Z, pb.Z)

	require.Eventually(t, func() bool {
		return w.Store().Exists("default")
	}, 2*time.Second, 10*time.Millisecond)
}

// sortedIDs pins the expected order without caring which uuid sorts first.
func sortedIDs(got []string, a, b string) []string {
	if len(got) != 2 {
		return got
	}
	if a <= b {
		return []string{a, b}
	}
	return []string{b, a}
}
