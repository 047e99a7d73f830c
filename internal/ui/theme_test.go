package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		want    string
	}{
		{name: "zero is good", percent: 0, want: string(ColorGood)},
		{name: "just under warning", percent: 69.9, want: string(ColorGood)},
		{name: "warning boundary", percent: 70, want: string(ColorWarn)},
		{name: "just under critical", percent: 89.9, want: string(ColorWarn)},
		{name: "critical boundary", percent: 90, want: string(ColorCrit)},
		{name: "over a hundred stays critical", percent: 130, want: string(ColorCrit)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(SeverityColor(tt.percent)))
		})
	}
}

func TestSeverityColorAt_CustomThresholds(t *testing.T) {
	assert.Equal(t, ColorGood, SeverityColorAt(40, 50, 80))
	assert.Equal(t, ColorWarn, SeverityColorAt(50, 50, 80))
	assert.Equal(t, ColorCrit, SeverityColorAt(85, 50, 80))
}

func TestFit(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "short string unchanged", in: "cpu", width: 10, want: "cpu"},
		{name: "exact width unchanged", in: "memory", width: 6, want: "memory"},
		{name: "long string gets ellipsis", in: "temperature", width: 6, want: "tempe…"},
		{name: "width one is bare ellipsis", in: "load", width: 1, want: "…"},
		{name: "zero width is empty", in: "load", width: 0, want: ""},
		{name: "multibyte runes counted as cells", in: "ábçdé", width: 4, want: "ábç…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fit(tt.in, tt.width))
		})
	}
}

func TestPad(t *testing.T) {
	assert.Equal(t, "cpu   ", Pad("cpu", 6))
	assert.Equal(t, "memo…", Pad("memory", 5))
	assert.Equal(t, "", Pad("x", 0))
}
