package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundsBasics(t *testing.T) {
	b := MakeBounds([]float64{0, -1}, []float64{2, 1})
	assert.Equal(t, 2, b.Dim())
	assert.Equal(t, 2.0, b.Wd(0))
	assert.Equal(t, 4.0, b.Volume())

	center := make([]float64, 2)
	b.Center(center)
	assert.Equal(t, []float64{1, 0}, center)

	assert.True(t, b.Contains([]float64{1, 0}))
	assert.False(t, b.Contains([]float64{3, 0}))
	assert.True(t, b.Expanded(1.5).Contains([]float64{3, 0}))
}

func TestBoundsWrap(t *testing.T) {
	b := MakeBounds([]float64{0}, []float64{1})
	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"inside", 0.5, 0.5},
		{"past max", 1.2, 0.2},
		{"at max", 1.0, 0.0},
		{"below min", -0.3, 0.7},
		{"far past", 2.4, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, b.Wrap(tt.x, 0), 1e-12)
		})
	}
}

func TestMinimumImage(t *testing.T) {
	b := MakeBounds([]float64{0, 0}, []float64{1, 1})
	bcs := []BCFlag{Wrap, Open}

	dis := []float64{0.9, 0.9}
	MinimumImage(dis, b, bcs)
	assert.InDelta(t, -0.1, dis[0], 1e-12, "wrap axis folds")
	assert.InDelta(t, 0.9, dis[1], 1e-12, "open axis untouched")
}

func TestDisplacement(t *testing.T) {
	b := MakeBounds([]float64{0, 0}, []float64{1, 1})
	bcs := []BCFlag{Wrap, Wrap}
	dis := make([]float64, 2)
	Displacement([]float64{0.95, 0.5}, []float64{0.05, 0.5}, dis, b, bcs)
	assert.InDelta(t, -0.1, dis[0], 1e-12)
	assert.InDelta(t, 0.0, dis[1], 1e-12)
}

func TestDistSqrNoWrap(t *testing.T) {
	d := DistSqrNoWrap([]float64{0, 0}, []float64{3, 4})
	assert.Equal(t, 25.0, d)
	assert.Equal(t, 5.0, Norm([]float64{3, 4}))
}

func TestParseBC(t *testing.T) {
	for s, want := range map[string]BCFlag{
		"open": Open, "wrap": Wrap, "periodic": Wrap,
		"reflect": Reflect, "repulse": Repulse,
	} {
		got, ok := ParseBC(s)
		assert.True(t, ok, s)
		assert.Equal(t, want, got, s)
	}
	_, ok := ParseBC("bogus")
	assert.False(t, ok)
}

func TestBCFlagString(t *testing.T) {
	assert.Equal(t, "wrap", Wrap.String())
	assert.Equal(t, "repulse", Repulse.String())
	assert.Equal(t, "unknown", BCFlag(42).String())
}

func TestWrapLargeOffsets(t *testing.T) {
	b := MakeBounds([]float64{-1}, []float64{1})
	got := b.Wrap(5.5, 0)
	assert.True(t, got >= -1 && got < 1)
	assert.InDelta(t, -0.5, got, 1e-12)
}
