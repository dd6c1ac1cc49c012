package geom

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// ErrSingular is returned when a matrix has no inverse.
var ErrSingular = errors.New("geom: singular matrix")

// Matrix is a 2x3 affine transform:
//
//	x' = A*x + B*y + TX
//	y' = C*x + D*y + TY
type Matrix struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

func Translate(tx, ty float64) Matrix {
	return Matrix{A: 1, D: 1, TX: tx, TY: ty}
}

func Scale(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// Rotate returns a rotation about the origin, in degrees, with the same
// orientation as Point.Rotate.
func Rotate(deg float64) Matrix {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return Matrix{A: cos, B: -sin, C: sin, D: cos}
}

// RotateAround rotates by deg about center.
func RotateAround(deg float64, center Point) Matrix {
	return Translate(center.X, center.Y).
		Append(Rotate(deg)).
		Append(Translate(-center.X, -center.Y))
}

// ScaleAround scales by (sx, sy) along axes rotated by deg, keeping anchor fixed.
// The steps are listed in the order they apply.
func ScaleAround(anchor Point, deg, sx, sy float64) Matrix {
	return Translate(-anchor.X, -anchor.Y).
		Prepend(Rotate(-deg)).
		Prepend(Scale(sx, sy)).
		Prepend(Rotate(deg)).
		Prepend(Translate(anchor.X, anchor.Y))
}

// Append returns the transform that applies n first and then m.
// m.Append(n).Append(n.Invert()) is m again.
func (m Matrix) Append(n Matrix) Matrix {
	return Matrix{
		A:  m.A*n.A + m.B*n.C,
		B:  m.A*n.B + m.B*n.D,
		TX: m.A*n.TX + m.B*n.TY + m.TX,
		C:  m.C*n.A + m.D*n.C,
		D:  m.C*n.B + m.D*n.D,
		TY: m.C*n.TX + m.D*n.TY + m.TY,
	}
}

// Prepend returns the transform that applies m first and then n.
func (m Matrix) Prepend(n Matrix) Matrix {
	return n.Append(m)
}

func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.TX,
		Y: m.C*p.X + m.D*p.Y + m.TY,
	}
}

func (m Matrix) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert returns the inverse transform.
func (m Matrix) Invert() (Matrix, error) {
	det := m.Determinant()
	if math.IsNaN(det) || scalar.EqualWithinAbs(det, 0, 1e-12) {
		return Matrix{}, ErrSingular
	}
	inv := 1 / det
	return Matrix{
		A:  m.D * inv,
		B:  -m.B * inv,
		TX: (m.B*m.TY - m.D*m.TX) * inv,
		C:  -m.C * inv,
		D:  m.A * inv,
		TY: (m.C*m.TX - m.A*m.TY) * inv,
	}, nil
}

// InverseTransform maps p from the transformed space back.
func (m Matrix) InverseTransform(p Point) (Point, error) {
	inv, err := m.Invert()
	if err != nil {
		return Point{}, err
	}
	return inv.Transform(p), nil
}

// Scaling returns the scale factors along the matrix's own axes: the length
// of the transformed X axis, and the determinant divided by it.
func (m Matrix) Scaling() Point {
	sx := math.Hypot(m.A, m.C)
	if sx == 0 {
		return Point{X: 0, Y: math.Hypot(m.B, m.D)}
	}
	return Point{X: sx, Y: m.Determinant() / sx}
}

// Linear drops the translation part.
func (m Matrix) Linear() Matrix {
	m.TX, m.TY = 0, 0
	return m
}

func (m Matrix) IsIdentity() bool {
	return m == Identity()
}
