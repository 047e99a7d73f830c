package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsens/gridsens/internal/errors"
)

type stubSource struct {
	shape Shape
	opts  map[string]any
}

func (s *stubSource) Fetch(ctx context.Context) (Value, error) { return TextValue("ok"), nil }
func (s *stubSource) Shape() Shape                             { return s.shape }
func (s *stubSource) Close() error                             { return nil }

type stubDisplayer struct {
	opts map[string]any
}

func (d *stubDisplayer) Push(v Value)                               {}
func (d *stubDisplayer) Render(area Size, v Value, st Style) string { return "" }
func (d *stubDisplayer) Reset()                                     {}
func (d *stubDisplayer) Close() error                               { return nil }

func sourceInfo(typ string, shape Shape) SourceInfo {
	return SourceInfo{
		Type:  typ,
		Name:  typ,
		Shape: shape,
		New: func(opts map[string]any) (Source, error) {
			return &stubSource{shape: shape, opts: opts}, nil
		},
	}
}

func displayerInfo(typ string, accepts ...Shape) DisplayerInfo {
	return DisplayerInfo{
		Type:    typ,
		Name:    typ,
		Accepts: accepts,
		New: func(opts map[string]any) (Displayer, error) {
			return &stubDisplayer{opts: opts}, nil
		},
	}
}

func TestRegisterSource(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.RegisterSource(sourceInfo("cpu", ShapePercent)))

	info, ok := r.Source("cpu")
	require.True(t, ok)
	assert.Equal(t, ShapePercent, info.Shape)
}

func TestRegisterSource_Duplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterSource(sourceInfo("cpu", ShapePercent)))

	// Registering the same type key again is a startup-fatal duplicate
	err := r.RegisterSource(sourceInfo("cpu", ShapeText))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDuplicateType))

	// The first registration wins and is untouched
	info, _ := r.Source("cpu")
	assert.Equal(t, ShapePercent, info.Shape)
}

func TestRegisterDisplayer_Duplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterDisplayer(displayerInfo("text", ShapeText)))

	err := r.RegisterDisplayer(displayerInfo("text", ShapeText))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDuplicateType))
}

func TestRegister_InvalidInfo(t *testing.T) {
	r := NewRegistry()

	// Missing type key
	err := r.RegisterSource(SourceInfo{New: func(map[string]any) (Source, error) { return nil, nil }})
	assert.Error(t, err)

	// Missing factory
	err = r.RegisterSource(SourceInfo{Type: "x"})
	assert.Error(t, err)

	// Displayer accepting no shapes
	err = r.RegisterDisplayer(DisplayerInfo{
		Type: "d",
		New:  func(map[string]any) (Displayer, error) { return nil, nil },
	})
	assert.Error(t, err)
}

func TestSourcesAndDisplayers_Sorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterSource(sourceInfo("wave", ShapeSeries)))
	require.NoError(t, r.RegisterSource(sourceInfo("clock", ShapeText)))
	require.NoError(t, r.RegisterSource(sourceInfo("memory", ShapePercent)))

	var got []string
	for _, info := range r.Sources() {
		got = append(got, info.Type)
	}
	assert.Equal(t, []string{"clock", "memory", "wave"}, got)
}

func TestCompatibleDisplayers(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterSource(sourceInfo("cpu", ShapePercent)))
	require.NoError(t, r.RegisterSource(sourceInfo("wave", ShapeSeries)))
	require.NoError(t, r.RegisterDisplayer(displayerInfo("text", AllShapes()...)))
	require.NoError(t, r.RegisterDisplayer(displayerInfo("gauge", ShapePercent)))
	require.NoError(t, r.RegisterDisplayer(displayerInfo("graph", ShapeSeries)))

	// A percent source matches the catch-all text and the gauge, not the
	// series-only graph
	infos, err := r.CompatibleDisplayers("cpu")
	require.NoError(t, err)

	var got []string
	for _, info := range infos {
		got = append(got, info.Type)
	}
	assert.Equal(t, []string{"gauge", "text"}, got)

	// A series source matches graph and text
	infos, err = r.CompatibleDisplayers("wave")
	require.NoError(t, err)

	got = nil
	for _, info := range infos {
		got = append(got, info.Type)
	}
	assert.Equal(t, []string{"graph", "text"}, got)
}

func TestCompatibleDisplayers_UnknownSource(t *testing.T) {
	r := NewRegistry()

	_, err := r.CompatibleDisplayers("nope")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnknownType))
}

func TestNewSource(t *testing.T) {
	r := NewRegistry()
	info := sourceInfo("clock", ShapeText)
	info.Schema = Schema{
		{Key: "format", Label: "Format", Type: OptionString, Default: "15:04:05"},
	}
	require.NoError(t, r.RegisterSource(info))

	src, err := r.NewSource("clock", map[string]any{"format": "15:04"})
	require.NoError(t, err)

	// Factory receives defaults merged with the provided options
	stub := src.(*stubSource)
	assert.Equal(t, "15:04", stub.opts["format"])
}

func TestNewSource_UnknownType(t *testing.T) {
	r := NewRegistry()

	_, err := r.NewSource("nope", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnknownType))
}

func TestNewSource_InvalidOptions(t *testing.T) {
	r := NewRegistry()
	info := sourceInfo("wave", ShapeSeries)
	info.Schema = Schema{
		{Key: "period", Label: "Period", Type: OptionFloat, Default: 30.0, Min: 1, Max: 600},
	}
	require.NoError(t, r.RegisterSource(info))

	_, err := r.NewSource("wave", map[string]any{"period": 0.1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrOptionValue))
}

func TestNewDisplayer(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterDisplayer(displayerInfo("text", ShapeText)))

	d, err := r.NewDisplayer("text", nil)
	require.NoError(t, err)
	assert.NotNil(t, d)

	_, err = r.NewDisplayer("nope", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnknownType))
}

func TestNewSource_UnknownOptionKeysIgnored(t *testing.T) {
	r := NewRegistry()
	info := sourceInfo("clock", ShapeText)
	info.Schema = Schema{
		{Key: "format", Label: "Format", Type: OptionString, Default: "15:04:05"},
	}
	require.NoError(t, r.RegisterSource(info))

	// Keys from a newer build's schema must not fail instantiation
	src, err := r.NewSource("clock", map[string]any{
		"format":     "15:04",
		"fancy_zoom": true,
		"extra_knob": 42,
	})
	require.NoError(t, err)

	// And they are not passed through to the factory
	stub := src.(*stubSource)
	_, has := stub.opts["fancy_zoom"]
	assert.False(t, has)
}
