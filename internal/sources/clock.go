package sources

import (
	"context"
	"time"

	"github.com/gridsens/gridsens/internal/plugin"
)

// clockLayouts maps the format option to Go time layouts.
var clockLayouts = map[string]string{
	"24h":  "15:04:05",
	"12h":  "3:04:05 PM",
	"full": "Mon Jan 2 15:04:05",
	"iso":  time.RFC3339,
}

// clockSource reports the current wall time as text. It never fails,
// which also makes it the go-to source in tests and demos.
type clockSource struct {
	layout string
	utc    bool
}

func newClockSource(opts map[string]any) *clockSource {
	layout, ok := clockLayouts[plugin.StringOpt(opts, "format", "24h")]
	if !ok {
		layout = clockLayouts["24h"]
	}
	return &clockSource{
		layout: layout,
		utc:    plugin.BoolOpt(opts, "utc", false),
	}
}

func (s *clockSource) Shape() plugin.Shape { return plugin.ShapeText }
func (s *clockSource) Close() error        { return nil }

func (s *clockSource) Fetch(ctx context.Context) (plugin.Value, error) {
	now := time.Now()
	if s.utc {
		now = now.UTC()
	}
	return plugin.TextValue(now.Format(s.layout)), nil
}
