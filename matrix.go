package imrender

import (
	"image"
	"math"
)

// Matrix is the 2x3 affine transform applied to draw coordinates before
// they are written to the vertex buffer:
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the transform that leaves points in place.
func Identity() Matrix { return Matrix{A: 1, E: 1} }

// Translate returns a transform moving points by (x, y).
func Translate(x, y float64) Matrix { return Matrix{A: 1, C: x, E: 1, F: y} }

// Scale returns a transform scaling about the origin.
func Scale(x, y float64) Matrix { return Matrix{A: x, E: y} }

// Rotate returns a rotation about the origin, in radians. With y growing
// downward a positive angle turns clockwise on screen.
func Rotate(angle float64) Matrix {
	s, c := math.Sincos(angle)
	return Matrix{A: c, B: -s, D: s, E: c}
}

// Multiply returns m∘n: n is applied to a point first, then m.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.B*n.D,
		B: m.A*n.B + m.B*n.E,
		C: m.A*n.C + m.B*n.F + m.C,
		D: m.D*n.A + m.E*n.D,
		E: m.D*n.B + m.E*n.E,
		F: m.D*n.C + m.E*n.F + m.F,
	}
}

// TransformPoint maps p into device space.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{X: m.A*p.X + m.B*p.Y + m.C, Y: m.D*p.X + m.E*p.Y + m.F}
}

// IsIdentity reports whether m leaves every point in place.
func (m Matrix) IsIdentity() bool { return m == Identity() }

// ScaleFactor is the longest axis length of m. Curve segment counts and
// stroke padding scale with it.
func (m Matrix) ScaleFactor() float64 {
	return math.Max(math.Hypot(m.A, m.D), math.Hypot(m.B, m.E))
}

// DeviceBounds returns the pixel rectangle covering r after transforming
// its four corners. Culling and clipping use it.
func (m Matrix) DeviceBounds(r Rect) image.Rectangle {
	c := r.Corners()
	return boundsOf(m.TransformPoint(c[0]), m.TransformPoint(c[1]), m.TransformPoint(c[2]), m.TransformPoint(c[3]))
}
