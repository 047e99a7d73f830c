package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gridsens/gridsens/internal/errors"
	"github.com/gridsens/gridsens/internal/plugin"
)

// DefaultSysRoot is where the kernel exposes device attributes.
const DefaultSysRoot = "/sys"

// cpufreqSource reports a core's current clock speed in GHz, read from
// the cpufreq scaling driver.
type cpufreqSource struct {
	root string
	core int
}

func newCPUFreqSource(root string, opts map[string]any) *cpufreqSource {
	return &cpufreqSource{root: root, core: plugin.IntOpt(opts, "core", 0)}
}

func (s *cpufreqSource) Shape() plugin.Shape { return plugin.ShapeFrequency }
func (s *cpufreqSource) Close() error        { return nil }

func (s *cpufreqSource) Fetch(ctx context.Context) (plugin.Value, error) {
	path := filepath.Join(s.root, "devices", "system", "cpu",
		fmt.Sprintf("cpu%d", s.core), "cpufreq", "scaling_cur_freq")
	raw, err := readSystemFile(path, fmt.Sprintf("Clock speed for core %d", s.core))
	if err != nil {
		return plugin.Value{}, err
	}

	// The driver reports kHz
	khz, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return plugin.Value{}, errors.WrapWithCode(err, errors.ErrFetchTransient,
			"Garbled clock speed reading", "")
	}

	return plugin.ScalarValue(float64(khz)/1e6, "GHz"), nil
}

// tempSource reports a thermal zone's temperature in degrees Celsius.
type tempSource struct {
	root string
	zone int
}

func newTempSource(root string, opts map[string]any) *tempSource {
	return &tempSource{root: root, zone: plugin.IntOpt(opts, "zone", 0)}
}

func (s *tempSource) Shape() plugin.Shape { return plugin.ShapeTemperature }
func (s *tempSource) Close() error        { return nil }

func (s *tempSource) Fetch(ctx context.Context) (plugin.Value, error) {
	path := filepath.Join(s.root, "class", "thermal",
		fmt.Sprintf("thermal_zone%d", s.zone), "temp")
	raw, err := readSystemFile(path, fmt.Sprintf("Temperature for zone %d", s.zone))
	if err != nil {
		return plugin.Value{}, err
	}

	// The kernel reports millidegrees
	milli, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return plugin.Value{}, errors.WrapWithCode(err, errors.ErrFetchTransient,
			"Garbled temperature reading", "")
	}

	return plugin.ScalarValue(float64(milli)/1000, "°C"), nil
}
