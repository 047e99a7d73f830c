package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect_Intersects(t *testing.T) {
	base := Rect{X: 2, Y: 2, W: 3, H: 3}

	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"identical", Rect{X: 2, Y: 2, W: 3, H: 3}, true},
		{"contained", Rect{X: 3, Y: 3, W: 1, H: 1}, true},
		{"partial corner", Rect{X: 4, Y: 4, W: 3, H: 3}, true},
		{"touching right edge", Rect{X: 5, Y: 2, W: 2, H: 2}, false},
		{"touching bottom edge", Rect{X: 2, Y: 5, W: 2, H: 2}, false},
		{"diagonal corner touch", Rect{X: 5, Y: 5, W: 2, H: 2}, false},
		{"disjoint", Rect{X: 8, Y: 8, W: 2, H: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Intersects(tt.other))
			// Intersection is symmetric
			assert.Equal(t, tt.want, tt.other.Intersects(base))
		})
	}
}

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 1, Y: 1, W: 2, H: 2}

	assert.True(t, r.Contains(Cell{X: 1, Y: 1}))
	assert.True(t, r.Contains(Cell{X: 2, Y: 2}))
	// Right/bottom edges are exclusive
	assert.False(t, r.Contains(Cell{X: 3, Y: 1}))
	assert.False(t, r.Contains(Cell{X: 1, Y: 3}))
	assert.False(t, r.Contains(Cell{X: 0, Y: 0}))
}

func TestRect_ContainsRect(t *testing.T) {
	outer := Rect{X: 0, Y: 0, W: 10, H: 10}

	assert.True(t, outer.ContainsRect(Rect{X: 0, Y: 0, W: 10, H: 10}))
	assert.True(t, outer.ContainsRect(Rect{X: 3, Y: 3, W: 2, H: 2}))
	assert.False(t, outer.ContainsRect(Rect{X: 9, Y: 9, W: 2, H: 2}))
	assert.False(t, outer.ContainsRect(Rect{X: -1, Y: 0, W: 2, H: 2}))
}

func TestRect_Union(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 2, H: 2}
	b := Rect{X: 4, Y: 3, W: 2, H: 2}

	u := a.Union(b)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 6, H: 5}, u)
}

func TestRect_AtAndTranslate(t *testing.T) {
	r := Rect{X: 2, Y: 3, W: 4, H: 5}

	moved := r.At(Cell{X: 7, Y: 1})
	assert.Equal(t, Rect{X: 7, Y: 1, W: 4, H: 5}, moved)

	shifted := r.Translate(-2, 1)
	assert.Equal(t, Rect{X: 0, Y: 4, W: 4, H: 5}, shifted)

	// The original is unchanged
	assert.Equal(t, Rect{X: 2, Y: 3, W: 4, H: 5}, r)
}

func TestRect_Valid(t *testing.T) {
	assert.True(t, Rect{W: 1, H: 1}.Valid())
	assert.False(t, Rect{W: 0, H: 1}.Valid())
	assert.False(t, Rect{W: 1, H: 0}.Valid())
	assert.False(t, Rect{W: -2, H: 3}.Valid())
}

func TestRect_String(t *testing.T) {
	r := Rect{X: 1, Y: 2, W: 3, H: 4}
	assert.Equal(t, "3x4 at (1,2)", r.String())
}
