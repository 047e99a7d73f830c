package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks are the eight vertical fill levels, lowest to highest.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Braille cells pack a 2x4 dot matrix into one character, doubling the
// horizontal and quadrupling the vertical resolution of block characters.
// Unicode braille starts at U+2800 and encodes each dot as one bit.
const brailleBase = '⠀'

// brailleDot maps (subRow, subCol) to the dot bit at that position, rows top
// to bottom.
var brailleDot = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// Span returns the plotting range for a data set. Data that fits entirely in
// 0-100 is treated as percentages and gets the fixed 0-100 range, so the
// scale holds steady across redraws instead of rescaling to every sample.
func Span(data []float64) (lo, hi float64, percentLike bool) {
	if len(data) == 0 {
		return 0, 100, true
	}
	lo, hi = data[0], data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo >= 0 && hi <= 100 {
		return 0, 100, true
	}
	return lo, hi, false
}

// normalize converts a value to the 0-1 range given span bounds.
func normalize(v, lo, hi float64) float64 {
	if hi > lo {
		return (v - lo) / (hi - lo)
	}
	return 0.5
}

func clampInt(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// Resample fits data to target points. Downsampling keeps the max of each
// bucket so short spikes survive compression; upsampling interpolates
// linearly.
func Resample(data []float64, target int) []float64 {
	if len(data) == 0 || target <= 0 {
		return nil
	}
	if len(data) == target {
		return data
	}

	out := make([]float64, target)

	if len(data) == 1 {
		for i := range out {
			out[i] = data[0]
		}
		return out
	}

	if len(data) > target {
		bucket := float64(len(data)) / float64(target)
		for i := 0; i < target; i++ {
			start := int(float64(i) * bucket)
			end := int(float64(i+1) * bucket)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			peak := data[start]
			for j := start + 1; j < end; j++ {
				if data[j] > peak {
					peak = data[j]
				}
			}
			out[i] = peak
		}
		return out
	}

	scale := float64(len(data)-1) / float64(target-1)
	for i := 0; i < target; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)
		if idx >= len(data)-1 {
			out[i] = data[len(data)-1]
			continue
		}
		out[i] = data[idx]*(1-frac) + data[idx+1]*frac
	}
	return out
}

// Sparkline renders data as a single row of block characters, width cells
// wide. The output is unstyled; callers pick the color.
func Sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	lo, hi, _ := Span(data)
	var sb strings.Builder
	sb.Grow(width * 3)
	for _, v := range Resample(data, width) {
		idx := clampInt(int(normalize(v, lo, hi)*float64(len(sparkBlocks)-1)), len(sparkBlocks)-1)
		sb.WriteRune(sparkBlocks[idx])
	}
	return sb.String()
}

// BrailleGraph plots data on a width x height grid of braille cells, two
// points per column and four dot levels per row, filled bottom-up. Data
// shorter than the grid is right-aligned so the newest sample always sits at
// the right edge. Percent-like data is colored per column by severity;
// anything else uses color.
func BrailleGraph(data []float64, width, height int, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	lo, hi, percentLike := Span(data)
	points := width * 2
	dots := height * 4

	if len(data) > points {
		data = Resample(data, points)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	colPeak := make([]float64, width)
	offset := points - len(data)

	for i, v := range data {
		col := (i + offset) / 2
		if col < 0 || col >= width {
			continue
		}
		if v > colPeak[col] {
			colPeak[col] = v
		}
		sub := (i + offset) % 2
		level := clampInt(int(normalize(v, lo, hi)*float64(dots)), dots)
		for dot := 0; dot < level; dot++ {
			row := height - 1 - dot/4
			if row < 0 {
				continue
			}
			grid[row][col] |= rune(1 << brailleDot[3-dot%4][sub])
		}
	}

	lines := make([]string, height)
	for r, row := range grid {
		var sb strings.Builder
		for c, cell := range row {
			cellColor := color
			if percentLike {
				cellColor = SeverityColor(colPeak[c])
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(cellColor).Render(string(cell)))
		}
		lines[r] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// columnShades grade a filled column from bright at the base to dim at the
// tip.
var columnShades = []rune{'█', '▓', '▒', '░'}

// ColumnGraph plots data as solid shaded columns, one point per cell column.
func ColumnGraph(data []float64, width, height int, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	lo, hi, _ := Span(data)
	rows := make([]strings.Builder, height)

	for _, v := range Resample(data, width) {
		filled := clampInt(int(normalize(v, lo, hi)*float64(height)), height)
		for row := 0; row < height; row++ {
			fromBottom := height - 1 - row
			if fromBottom < filled {
				shade := 0
				if filled > 1 {
					shade = clampInt(fromBottom*len(columnShades)/filled, len(columnShades)-1)
				}
				rows[row].WriteRune(columnShades[shade])
			} else {
				rows[row].WriteRune(' ')
			}
		}
	}

	style := lipgloss.NewStyle().Foreground(color)
	lines := make([]string, height)
	for i := range rows {
		lines[i] = style.Render(rows[i].String())
	}
	return strings.Join(lines, "\n")
}
