package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gridsens/gridsens/internal/errors"
	"github.com/gridsens/gridsens/internal/plugin"
)

// hostinfoSource reports static facts about the machine plus its
// uptime. Uptime comes from /proc and is simply omitted where that
// tree does not exist.
type hostinfoSource struct {
	root string
}

func newHostinfoSource(root string) *hostinfoSource {
	return &hostinfoSource{root: root}
}

func (s *hostinfoSource) Shape() plugin.Shape { return plugin.ShapeFields }
func (s *hostinfoSource) Close() error        { return nil }

func (s *hostinfoSource) Fetch(ctx context.Context) (plugin.Value, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return plugin.Value{}, errors.WrapWithCode(err, errors.ErrFetchTransient,
			"Cannot read the hostname", "")
	}

	fields := []plugin.Field{
		{Label: "Host", Value: hostname},
		{Label: "OS", Value: runtime.GOOS + "/" + runtime.GOARCH},
		{Label: "CPUs", Value: strconv.Itoa(runtime.NumCPU())},
	}

	if raw, err := os.ReadFile(filepath.Join(s.root, "uptime")); err == nil {
		if up := parseUptime(string(raw)); up > 0 {
			fields = append(fields, plugin.Field{Label: "Uptime", Value: formatUptime(up)})
		}
	}

	return plugin.FieldsValue(fields), nil
}

// parseUptime reads the first number of /proc/uptime (seconds).
func parseUptime(raw string) time.Duration {
	parts := strings.Fields(strings.TrimSpace(raw))
	if len(parts) == 0 {
		return 0
	}
	secs, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// formatUptime renders a duration the way uptime(1) does: largest two
// units only.
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// goruntimeSource reports the dashboard's own runtime stats. Mostly a
// self-diagnostic, but it also makes a dependable fields source on any
// platform.
type goruntimeSource struct{}

func newGoruntimeSource() *goruntimeSource {
	return &goruntimeSource{}
}

func (s *goruntimeSource) Shape() plugin.Shape { return plugin.ShapeFields }
func (s *goruntimeSource) Close() error        { return nil }

func (s *goruntimeSource) Fetch(ctx context.Context) (plugin.Value, error) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return plugin.FieldsValue([]plugin.Field{
		{Label: "Goroutines", Value: strconv.Itoa(runtime.NumGoroutine())},
		{Label: "Heap", Value: fmt.Sprintf("%.1f MB", float64(mem.HeapAlloc)/(1024*1024))},
		{Label: "GC cycles", Value: strconv.FormatUint(uint64(mem.NumGC), 10)},
		{Label: "GOMAXPROCS", Value: strconv.Itoa(runtime.GOMAXPROCS(0))},
	}), nil
}
