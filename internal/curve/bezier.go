// Package curve provides cubic Bézier evaluation and the arc-length tables
// that convert distance travelled along a track piece into a curve parameter.
//
// A Bézier parameter t does not advance at a constant spatial rate, so every
// consumer that moves by distance goes through an ArcLengthTable before it
// evaluates the curve.
package curve

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bezier is a cubic Bézier segment in world space (metres).
type Bezier struct {
	StartAnchor  mgl64.Vec3 `json:"start_anchor"`
	StartControl mgl64.Vec3 `json:"start_control"`
	EndControl   mgl64.Vec3 `json:"end_control"`
	EndAnchor    mgl64.Vec3 `json:"end_anchor"`
}

// NewBezier builds a segment from its four control points in curve order.
func NewBezier(p0, p1, p2, p3 mgl64.Vec3) Bezier {
	return Bezier{StartAnchor: p0, StartControl: p1, EndControl: p2, EndAnchor: p3}
}

// Points returns the control points in curve order.
func (b Bezier) Points() [4]mgl64.Vec3 {
	return [4]mgl64.Vec3{b.StartAnchor, b.StartControl, b.EndControl, b.EndAnchor}
}

// Evaluate returns the position and unit tangent at parameter t. Values of t
// outside [0, 1] are clamped. The tangent is the zero vector where the
// derivative vanishes.
func (b Bezier) Evaluate(t float64) (position, tangent mgl64.Vec3) {
	t = mgl64.Clamp(t, 0, 1)

	u := 1 - t
	uu := u * u
	tt := t * t

	position = b.StartAnchor.Mul(uu * u).
		Add(b.StartControl.Mul(3 * uu * t)).
		Add(b.EndControl.Mul(3 * u * tt)).
		Add(b.EndAnchor.Mul(tt * t))

	derivative := b.StartControl.Sub(b.StartAnchor).Mul(3 * uu).
		Add(b.EndControl.Sub(b.StartControl).Mul(6 * u * t)).
		Add(b.EndAnchor.Sub(b.EndControl).Mul(3 * tt))

	return position, NormalizeOrZero(derivative)
}

// Position is Evaluate without the tangent.
func (b Bezier) Position(t float64) mgl64.Vec3 {
	p, _ := b.Evaluate(t)
	return p
}

// NormalizeOrZero returns v scaled to unit length, or the zero vector when v
// has no usable length. mgl64's Normalize divides by zero in that case.
func NormalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// IsZero reports whether every component of v is exactly zero.
func IsZero(v mgl64.Vec3) bool {
	return v == mgl64.Vec3{}
}
