package sources

import (
	"context"
	"math"
	"time"

	"github.com/gridsens/gridsens/internal/plugin"
)

// waveSource emits a sine wave between 0 and 100 percent. It exists so
// layouts, gauges, and graphs can be tried out on a machine with no
// readable sensors at all.
type waveSource struct {
	period time.Duration
	start  time.Time
}

func newWaveSource(opts map[string]any) *waveSource {
	secs := plugin.FloatOpt(opts, "period", 30)
	if secs <= 0 {
		secs = 30
	}
	return &waveSource{
		period: time.Duration(secs * float64(time.Second)),
		start:  time.Now(),
	}
}

func (s *waveSource) Shape() plugin.Shape { return plugin.ShapePercent }
func (s *waveSource) Close() error        { return nil }

func (s *waveSource) Fetch(ctx context.Context) (plugin.Value, error) {
	elapsed := time.Since(s.start)
	phase := 2 * math.Pi * float64(elapsed%s.period) / float64(s.period)
	return plugin.ScalarValue((math.Sin(phase)+1)/2*100, "%"), nil
}
