package curve

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func sampleCurves() map[string]Bezier {
	return map[string]Bezier{
		"straight": NewBezier(
			mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10.0 / 3, 0, 0},
			mgl64.Vec3{20.0 / 3, 0, 0}, mgl64.Vec3{10, 0, 0}),
		"hill": NewBezier(
			mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5, 8, 0},
			mgl64.Vec3{10, 8, 2}, mgl64.Vec3{15, 0, 4}),
		"hairpin": NewBezier(
			mgl64.Vec3{-3, 1, 7}, mgl64.Vec3{20, 1, 7},
			mgl64.Vec3{20, 1, -7}, mgl64.Vec3{-3, 1, -7}),
	}
}

func TestEvaluateBoundaries(t *testing.T) {
	for name, b := range sampleCurves() {
		t.Run(name, func(t *testing.T) {
			start, _ := b.Evaluate(0)
			end, _ := b.Evaluate(1)
			assert.True(t, start.ApproxEqual(b.StartAnchor), "start %v != %v", start, b.StartAnchor)
			assert.True(t, end.ApproxEqual(b.EndAnchor), "end %v != %v", end, b.EndAnchor)
		})
	}
}

func TestEvaluateClampsParameter(t *testing.T) {
	b := sampleCurves()["hill"]

	below, belowTan := b.Evaluate(-3)
	start, startTan := b.Evaluate(0)
	assert.Equal(t, start, below)
	assert.Equal(t, startTan, belowTan)

	above, _ := b.Evaluate(1.5)
	assert.Equal(t, b.Position(1), above)
}

func TestEvaluateTangentIsUnit(t *testing.T) {
	for name, b := range sampleCurves() {
		for i := 0; i <= 10; i++ {
			_, tan := b.Evaluate(float64(i) / 10)
			assert.InDelta(t, 1.0, tan.Len(), 1e-9, "%s at step %d", name, i)
		}
	}
}

func TestEvaluateStraightTangent(t *testing.T) {
	b := sampleCurves()["straight"]
	_, tan := b.Evaluate(0.37)
	assert.True(t, tan.ApproxEqual(mgl64.Vec3{1, 0, 0}), "got %v", tan)
}

func TestEvaluateDegenerateTangent(t *testing.T) {
	p := mgl64.Vec3{1, 2, 3}
	b := NewBezier(p, p, mgl64.Vec3{4, 2, 3}, mgl64.Vec3{5, 2, 3})

	pos, tan := b.Evaluate(0)
	assert.Equal(t, p, pos)
	assert.True(t, IsZero(tan), "expected zero tangent, got %v", tan)

	point := NewBezier(p, p, p, p)
	_, tan = point.Evaluate(0.5)
	assert.True(t, IsZero(tan))
}

func TestNormalizeOrZero(t *testing.T) {
	tests := []struct {
		name string
		in   mgl64.Vec3
		want mgl64.Vec3
	}{
		{name: "axis", in: mgl64.Vec3{0, 4, 0}, want: mgl64.Vec3{0, 1, 0}},
		{name: "zero", in: mgl64.Vec3{}, want: mgl64.Vec3{}},
		{name: "nan", in: mgl64.Vec3{math.NaN(), 0, 0}, want: mgl64.Vec3{}},
		{name: "inf", in: mgl64.Vec3{math.Inf(1), 0, 0}, want: mgl64.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeOrZero(tt.in))
		})
	}
}
