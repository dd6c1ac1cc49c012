package geom

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrDegenerate is returned when a direction is requested from a zero-length vector.
var ErrDegenerate = errors.New("geom: degenerate vector")

// Point is a 2D point or vector in scene coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }
func fromVec(v r2.Vec) Point { return Point{X: v.X, Y: v.Y} }
func (p Point) Add(q Point) Point { return fromVec(r2.Add(p.vec(), q.vec())) }
func (p Point) Sub(q Point) Point { return fromVec(r2.Sub(p.vec(), q.vec())) }
func (p Point) Mul(f float64) Point {
	return fromVec(r2.Scale(f, p.vec()))
}

// Div divides both components by f. Division by zero yields the zero vector.
func (p Point) Div(f float64) Point {
	if f == 0 {
		return Point{}
	}
	return p.Mul(1 / f)
}

// Scale multiplies component-wise.
func (p Point) Scale(s Point) Point { return Point{X: p.X * s.X, Y: p.Y * s.Y} }

func (p Point) Dot(q Point) float64 { return r2.Dot(p.vec(), q.vec()) }
func (p Point) Length() float64 { return r2.Norm(p.vec()) }
func (p Point) IsZero() bool { return p.X == 0 && p.Y == 0 }

// Rotate rotates the vector about the origin. Positive angles turn +X toward +Y.
func (p Point) Rotate(deg float64) Point {
	if deg == 0 {
		return p
	}
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return Point{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
}

// RotateAround rotates p about center.
func (p Point) RotateAround(deg float64, center Point) Point {
	return p.Sub(center).Rotate(deg).Add(center)
}

// AngleDeg is the signed angle from the positive X axis, in (-180, 180].
func (p Point) AngleDeg() float64 {
	return math.Atan2(p.Y, p.X) * 180 / math.Pi
}

// Normalize returns the unit vector with the direction of p.
func (p Point) Normalize() (Point, error) {
	if p.IsZero() || math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return Point{}, ErrDegenerate
	}
	return fromVec(r2.Unit(p.vec())), nil
}

// Project returns the component of p parallel to onto.
// Projecting onto the zero vector gives the zero vector.
func (p Point) Project(onto Point) Point {
	if onto.IsZero() {
		return Point{}
	}
	return onto.Mul(p.Dot(onto) / onto.Dot(onto))
}

// Centroid computes the average position of a set of points.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sum Point
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Div(float64(len(points)))
}
