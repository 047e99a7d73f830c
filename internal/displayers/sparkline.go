package displayers

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gridsens/gridsens/internal/plugin"
	"github.com/gridsens/gridsens/internal/ui"
)

// ring is a fixed-capacity sample buffer, read back oldest first.
type ring struct {
	data  []float64
	head  int
	count int
}

func newRing(size int) *ring {
	if size < 1 {
		size = 1
	}
	return &ring{data: make([]float64, size)}
}

func (r *ring) push(v float64) {
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// values returns the stored samples in arrival order.
func (r *ring) values() []float64 {
	if r.count == 0 {
		return nil
	}
	out := make([]float64, r.count)
	start := (r.head - r.count + len(r.data)) % len(r.data)
	for i := 0; i < r.count; i++ {
		out[i] = r.data[(start+i)%len(r.data)]
	}
	return out
}

func (r *ring) reset() {
	r.head = 0
	r.count = 0
}

// sparkDisplayer accumulates scalar samples and draws them as a one-row
// strip of block characters. The strip fills left to right, then slides once
// the window is full, so the newest sample is always the rightmost cell.
type sparkDisplayer struct {
	hist      *ring
	showValue bool
}

func newSparkDisplayer(opts map[string]any) *sparkDisplayer {
	return &sparkDisplayer{
		hist:      newRing(plugin.IntOpt(opts, "history", 240)),
		showValue: plugin.BoolOpt(opts, "show_value", true),
	}
}

func (d *sparkDisplayer) Push(v plugin.Value) {
	if v.Kind != plugin.KindScalar {
		return
	}
	d.hist.push(v.Scalar)
}

func (d *sparkDisplayer) Render(area plugin.Size, v plugin.Value, st plugin.Style) string {
	if area.W <= 0 || area.H <= 0 {
		return ""
	}
	data := d.hist.values()
	if len(data) == 0 {
		return placeholder(area)
	}

	readout := ""
	if d.showValue && v.Kind == plugin.KindScalar {
		readout = " " + v.Display()
	}
	width := area.W - len([]rune(readout))
	if width < 3 {
		width = area.W
		readout = ""
	}

	if len(data) > width {
		data = data[len(data)-width:]
	}

	// Percent-like history colors by the newest sample's severity; other
	// units stay on the panel accent
	_, _, percentLike := ui.Span(data)
	color := accent(st)
	if percentLike {
		color = ui.SeverityColor(data[len(data)-1])
	}

	line := lipgloss.NewStyle().Foreground(color).Render(ui.Sparkline(data, len(data)))
	if readout != "" {
		line += lipgloss.NewStyle().Foreground(ui.ColorText).Render(readout)
	}
	return lipgloss.Place(area.W, area.H, lipgloss.Left, lipgloss.Center, line)
}

func (d *sparkDisplayer) Reset() {
	d.hist.reset()
}

func (d *sparkDisplayer) Close() error { return nil }
