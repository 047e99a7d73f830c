package sources

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gridsens/gridsens/internal/errors"
	"github.com/gridsens/gridsens/internal/plugin"
)

// DefaultProcRoot is where the kernel exposes system statistics.
const DefaultProcRoot = "/proc"

// cpuSource reports CPU usage as a percentage. Usage is computed from
// the jiffies delta between consecutive fetches; the first fetch shows
// usage since boot. Each panel gets its own instance, so the delta
// state never crosses panels.
type cpuSource struct {
	root   string
	core   int
	prev   cpuTimes
	primed bool
}

func newCPUSource(root string, opts map[string]any) *cpuSource {
	return &cpuSource{root: root, core: plugin.IntOpt(opts, "core", -1)}
}

func (s *cpuSource) Shape() plugin.Shape { return plugin.ShapePercent }
func (s *cpuSource) Close() error        { return nil }

func (s *cpuSource) Fetch(ctx context.Context) (plugin.Value, error) {
	raw, err := readSystemFile(filepath.Join(s.root, "stat"), "CPU statistics")
	if err != nil {
		return plugin.Value{}, err
	}

	agg, cores, err := parseCPUTimes(raw)
	if err != nil {
		return plugin.Value{}, errors.WrapWithCode(err, errors.ErrFetchTransient,
			"Garbled CPU statistics", "")
	}

	cur := agg
	if s.core >= 0 {
		if s.core >= len(cores) {
			return plugin.Value{}, errors.New(errors.ErrFetchPermanent,
				fmt.Sprintf("CPU core %d does not exist (this system has %d)", s.core, len(cores)),
				fmt.Sprintf("Pick a core between 0 and %d, or -1 for all cores", len(cores)-1))
		}
		cur = cores[s.core]
	}

	prev := s.prev
	if !s.primed {
		prev = cpuTimes{}
	}
	s.prev = cur
	s.primed = true

	return plugin.ScalarValue(usagePercent(prev, cur), "%"), nil
}

// coresSource reports per-core CPU usage as a series, one point per
// core, for distribution-style displays.
type coresSource struct {
	root string
	prev []cpuTimes
}

func newCoresSource(root string) *coresSource {
	return &coresSource{root: root}
}

func (s *coresSource) Shape() plugin.Shape { return plugin.ShapeSeries }
func (s *coresSource) Close() error        { return nil }

func (s *coresSource) Fetch(ctx context.Context) (plugin.Value, error) {
	raw, err := readSystemFile(filepath.Join(s.root, "stat"), "CPU statistics")
	if err != nil {
		return plugin.Value{}, err
	}

	_, cores, err := parseCPUTimes(raw)
	if err != nil {
		return plugin.Value{}, errors.WrapWithCode(err, errors.ErrFetchTransient,
			"Garbled CPU statistics", "")
	}
	if len(cores) == 0 {
		return plugin.Value{}, errors.New(errors.ErrFetchPermanent,
			"No per-core CPU statistics on this system", "")
	}

	series := make([]float64, len(cores))
	for i, cur := range cores {
		var prev cpuTimes
		if i < len(s.prev) {
			prev = s.prev[i]
		}
		series[i] = usagePercent(prev, cur)
	}
	s.prev = cores

	return plugin.SeriesValue(series, "%"), nil
}

// memorySource reports used memory as a percentage of total.
type memorySource struct {
	root string
}

func newMemorySource(root string) *memorySource {
	return &memorySource{root: root}
}

func (s *memorySource) Shape() plugin.Shape { return plugin.ShapePercent }
func (s *memorySource) Close() error        { return nil }

func (s *memorySource) Fetch(ctx context.Context) (plugin.Value, error) {
	raw, err := readSystemFile(filepath.Join(s.root, "meminfo"), "Memory statistics")
	if err != nil {
		return plugin.Value{}, err
	}

	mem, err := parseMemInfo(raw)
	if err != nil {
		return plugin.Value{}, errors.WrapWithCode(err, errors.ErrFetchTransient,
			"Garbled memory statistics", "")
	}

	return plugin.ScalarValue(float64(mem.used)/float64(mem.total)*100, "%"), nil
}

// loadavgSource reports the three load averages as labeled fields.
type loadavgSource struct {
	root string
}

func newLoadavgSource(root string) *loadavgSource {
	return &loadavgSource{root: root}
}

func (s *loadavgSource) Shape() plugin.Shape { return plugin.ShapeFields }
func (s *loadavgSource) Close() error        { return nil }

func (s *loadavgSource) Fetch(ctx context.Context) (plugin.Value, error) {
	raw, err := readSystemFile(filepath.Join(s.root, "loadavg"), "Load averages")
	if err != nil {
		return plugin.Value{}, err
	}

	load, err := parseLoadAvg(raw)
	if err != nil {
		return plugin.Value{}, errors.WrapWithCode(err, errors.ErrFetchTransient,
			"Garbled load averages", "")
	}

	return plugin.FieldsValue([]plugin.Field{
		{Label: "1 min", Value: fmt.Sprintf("%.2f", load[0])},
		{Label: "5 min", Value: fmt.Sprintf("%.2f", load[1])},
		{Label: "15 min", Value: fmt.Sprintf("%.2f", load[2])},
	}), nil
}
