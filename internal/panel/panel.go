package panel

import (
	"time"

	"github.com/gridsens/gridsens/internal/plugin"
)

// Default extents for panels created without an explicit placement, in grid
// cells.
const (
	DefaultW = 16
	DefaultH = 6
)

// Panel binds one source instance to one displayer instance. Its placement
// lives in the grid model; everything else about the panel lives here. All
// access is from the owning UI goroutine.
type Panel struct {
	ID            string
	SourceType    string
	DisplayerType string

	// SourceOpts and DisplayerOpts hold the options as configured, not the
	// schema-merged form, so layouts persist only what the user set.
	SourceOpts    map[string]any
	DisplayerOpts map[string]any

	// Interval overrides the scheduler's default poll cadence when > 0.
	Interval time.Duration

	Style plugin.Style
	Z     int

	source    plugin.Source
	displayer plugin.Displayer

	lastValue plugin.Value
	lastErr   error
	updatedAt time.Time
}

// Source returns the live source instance.
func (p *Panel) Source() plugin.Source { return p.source }

// Displayer returns the live displayer instance.
func (p *Panel) Displayer() plugin.Displayer { return p.displayer }

// LastValue returns the most recently delivered value.
func (p *Panel) LastValue() plugin.Value { return p.lastValue }

// LastErr returns the panel's current error state, nil when healthy.
func (p *Panel) LastErr() error { return p.lastErr }

// UpdatedAt returns when the panel last received a value.
func (p *Panel) UpdatedAt() time.Time { return p.updatedAt }

// SetResult records a delivered poll result. A successful result stores the
// value, clears the error state, and feeds the displayer's input slot. A
// failed result keeps the previous value so the panel body stays useful
// behind the error badge.
func (p *Panel) SetResult(v plugin.Value, err error, at time.Time) {
	if err != nil {
		p.lastErr = err
		return
	}
	p.lastErr = nil
	p.lastValue = v
	p.updatedAt = at
	p.displayer.Push(v)
}

// Title returns the styled title, falling back to the panel's source type.
func (p *Panel) Title() string {
	if p.Style.Title != "" {
		return p.Style.Title
	}
	return p.SourceType
}
