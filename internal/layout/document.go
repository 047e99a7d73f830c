// Package layout persists dashboard documents as YAML profiles.
//
// A Document is the on-disk form of a dashboard: grid extents plus one
// entry per panel. Keys the current version does not understand are
// captured in inline maps and written back verbatim on save, so a file
// edited by hand (or by a newer release) survives a load/save cycle.
package layout

import (
	"fmt"
	"sort"
	"time"

	"github.com/gridsens/gridsens/internal/errors"
)

// CurrentLayoutVersion is the schema version for layout files.
// Increment when making breaking changes to the document structure.
const CurrentLayoutVersion = 1

// Document is a complete dashboard layout.
type Document struct {
	Version int        `yaml:"version"`
	Grid    GridDoc    `yaml:"grid"`
	Panels  []PanelDoc `yaml:"panels"`

	// Extra holds top-level keys this version does not know about.
	Extra map[string]any `yaml:",inline"`
}

// GridDoc records the grid extents the layout was designed for.
type GridDoc struct {
	Columns int `yaml:"columns"`
	Rows    int `yaml:"rows"`

	Extra map[string]any `yaml:",inline"`
}

// PanelDoc is one panel entry in a layout file.
type PanelDoc struct {
	ID       string `yaml:"id"`
	Source   string `yaml:"source"`
	Display  string `yaml:"display"`
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	W        int    `yaml:"w"`
	H        int    `yaml:"h"`
	Z        int    `yaml:"z,omitempty"`
	Title    string `yaml:"title,omitempty"`
	Interval string `yaml:"interval,omitempty"`

	// Appearance overrides; absent keys mean the theme defaults.
	HideTitle bool   `yaml:"hide_title,omitempty"`
	Accent    string `yaml:"accent,omitempty"`
	Border    string `yaml:"border,omitempty"`

	SourceOptions  map[string]any `yaml:"options,omitempty"`
	DisplayOptions map[string]any `yaml:"display_options,omitempty"`

	// Extra holds panel keys this version does not know about.
	Extra map[string]any `yaml:",inline"`
}

// NewDocument returns an empty layout for the given grid extents.
func NewDocument(columns, rows int) *Document {
	return &Document{
		Version: CurrentLayoutVersion,
		Grid:    GridDoc{Columns: columns, Rows: rows},
	}
}

// PollInterval parses the panel's interval override.
// An empty interval means "use the scheduler default" and returns zero.
func (p PanelDoc) PollInterval() (time.Duration, error) {
	if p.Interval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Interval)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrCorruptLayout,
			fmt.Sprintf("Panel %s has an invalid interval %q", p.ID, p.Interval),
			"Use a Go duration like 2s or 500ms")
	}
	if d < 0 {
		return 0, errors.New(errors.ErrCorruptLayout,
			fmt.Sprintf("Panel %s has a negative interval %q", p.ID, p.Interval),
			"Use a positive duration like 2s or 500ms")
	}
	return d, nil
}

// SortPanels orders panel entries by z then id so saved files are stable
// across runs.
func (d *Document) SortPanels() {
	sort.SliceStable(d.Panels, func(i, j int) bool {
		if d.Panels[i].Z != d.Panels[j].Z {
			return d.Panels[i].Z < d.Panels[j].Z
		}
		return d.Panels[i].ID < d.Panels[j].ID
	})
}
