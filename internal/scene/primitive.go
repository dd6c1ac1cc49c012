// Package scene holds the drawable primitives that annotation geometries own,
// and dispatches interactive transforms to them.
package scene

import (
	"annomap/internal/geom"
)

// Op names an interactive edit.
type Op int

const (
	OpRotate Op = iota + 1
	OpScale
)

func (o Op) String() string {
	switch o {
	case OpRotate:
		return "rotate"
	case OpScale:
		return "scale"
	}
	return "unknown"
}

// TransformEvent describes one increment of a drag gesture.
//
// Matrix has already been appended to the primitive's matrix when the hook
// runs. Anchor is the fixed point of the gesture and Rotation the shape's own
// rotation in degrees, both in the primitive's parent space.
type TransformEvent struct {
	Op       Op
	Anchor   geom.Point
	Rotation float64
	Matrix   geom.Matrix
}

// TransformFunc is a per-kind hook that may correct the primitive after the
// host applied an increment.
type TransformFunc func(p *Primitive, ev TransformEvent) error

// Primitive is a path of points in local coordinates plus the matrix that
// maps them into the scene.
type Primitive struct {
	Points []geom.Point
	Closed bool
	Matrix geom.Matrix

	// Style is the presentation bag carried through from the feature record.
	Style map[string]any

	OnTransform TransformFunc
}

// NewPath creates a primitive with an identity matrix and an empty style.
func NewPath(points []geom.Point, closed bool) *Primitive {
	return &Primitive{
		Points: points,
		Closed: closed,
		Matrix: geom.Identity(),
		Style:  map[string]any{},
	}
}

// WorldPoints returns the points mapped through the matrix.
func (p *Primitive) WorldPoints() []geom.Point {
	out := make([]geom.Point, len(p.Points))
	for i, pt := range p.Points {
		out[i] = p.Matrix.Transform(pt)
	}
	return out
}

func (p *Primitive) Bounds() geom.BBox {
	return geom.BoundsOf(p.WorldPoints())
}

// Position is the centre of the bounds, or the mapped origin for an empty path.
func (p *Primitive) Position() geom.Point {
	if len(p.Points) == 0 {
		return p.Matrix.Transform(geom.Point{})
	}
	return p.Bounds().Center()
}

// ApplyMatrix bakes the matrix into the points and resets it to identity.
func (p *Primitive) ApplyMatrix() {
	if p.Matrix.IsIdentity() {
		return
	}
	p.Points = p.WorldPoints()
	p.Matrix = geom.Identity()
}

type snapshot struct {
	points []geom.Point
	matrix geom.Matrix
}

func (p *Primitive) save() snapshot {
	return snapshot{points: append([]geom.Point(nil), p.Points...), matrix: p.Matrix}
}

func (p *Primitive) restore(s snapshot) {
	p.Points = s.points
	p.Matrix = s.matrix
}
