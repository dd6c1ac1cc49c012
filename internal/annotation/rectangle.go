package annotation

import (
	"errors"
	"fmt"

	"annomap/internal/geom"
	"annomap/internal/scene"
)

// RectangleKind is the type and subtype of rectangle features.
var RectangleKind = Kind{Type: geom.TypePoint, Subtype: geom.SubtypeRectangle}

// Rectangle is a closed four-corner path that stays a rectangle, possibly
// rotated, through interactive edits.
//
// The corners are stored in the order top-left, top-right, bottom-right,
// bottom-left of the unrotated shape, so P0→P1 is the top edge and P0→P3 the
// left edge. Width, height and angle are derived from them on every read.
type Rectangle struct {
	item *scene.Primitive
}

// NewRectangle builds a rectangle from a Point feature with subtype
// "Rectangle". The coordinates give the centre; width, height and angle
// (degrees) come from the geometry properties and default to 0. Without a
// centre the rectangle has no corners until it is sized interactively.
func NewRectangle(f geom.Feature) (*Rectangle, error) {
	if err := checkFeature(RectangleKind, f); err != nil {
		return nil, err
	}
	item := scene.NewPath(nil, true)
	item.Style = styleOf(f)
	item.OnTransform = transformRectangle

	g := f.Geometry
	if len(g.Coordinates) >= 2 {
		c := geom.Pt(g.Coordinates[0], g.Coordinates[1])
		w, h := g.Number("width"), g.Number("height")
		deg := g.Number("angle")
		corners := []geom.Point{
			{X: c.X - w/2, Y: c.Y - h/2},
			{X: c.X + w/2, Y: c.Y - h/2},
			{X: c.X + w/2, Y: c.Y + h/2},
			{X: c.X - w/2, Y: c.Y + h/2},
		}
		for i := range corners {
			corners[i] = corners[i].RotateAround(deg, c)
		}
		item.Points = corners
	}
	return &Rectangle{item: item}, nil
}

func (r *Rectangle) Kind() Kind             { return RectangleKind }
func (r *Rectangle) Item() *scene.Primitive { return r.item }

// Coordinates returns the centre [x, y] of the primitive.
func (r *Rectangle) Coordinates() []float64 {
	p := r.item.Position()
	return []float64{p.X, p.Y}
}

// Properties returns width, height and angle measured on the live corners.
func (r *Rectangle) Properties() map[string]any {
	pts := r.item.WorldPoints()
	if len(pts) < 4 {
		return map[string]any{"width": 0.0, "height": 0.0, "angle": 0.0}
	}
	top := pts[1].Sub(pts[0])
	left := pts[0].Sub(pts[3])
	return map[string]any{
		"width":  top.Length(),
		"height": left.Length(),
		"angle":  top.AngleDeg(),
	}
}

// Corners returns the four corners in scene coordinates, or nil.
func (r *Rectangle) Corners() []geom.Point {
	if len(r.item.Points) < 4 {
		return nil
	}
	return r.item.WorldPoints()
}

type edge struct {
	from, to int
	mid      geom.Point
	normal   geom.Point
}

// rectangleEdges measures each edge in parent space: its midpoint and unit
// normal. A collapsed edge gets a zero normal.
func rectangleEdges(p *scene.Primitive) []edge {
	n := len(p.Points)
	out := make([]edge, 0, n)
	for i := range p.Points {
		j := (i + 1) % n
		c := p.Matrix.Transform(p.Points[i])
		c2 := p.Matrix.Transform(p.Points[j])
		half := c2.Sub(c).Div(2)
		normal, err := half.Rotate(-90).Normalize()
		if errors.Is(err, geom.ErrDegenerate) {
			normal = geom.Point{}
		}
		out = append(out, edge{from: i, to: j, mid: c.Add(half), normal: normal})
	}
	return out
}

// transformRectangle keeps the path rectangular under scaling. The host has
// already appended the increment to the matrix; it is taken back out and
// replaced by moving each edge along its own normal only, so edges can slide
// in or out but never shear.
//
// Rotation is rigid and needs no correction.
func transformRectangle(p *scene.Primitive, ev scene.TransformEvent) error {
	if ev.Op != scene.OpScale {
		return nil
	}
	inv, err := ev.Matrix.Invert()
	if err != nil {
		return fmt.Errorf("rectangle: %w", err)
	}
	p.Matrix = p.Matrix.Append(inv)
	if len(p.Points) != 4 {
		return nil
	}

	// scale factors of the increment in the rectangle's own frame
	s := geom.Rotate(-ev.Rotation).
		Append(ev.Matrix.Linear()).
		Append(geom.Rotate(ev.Rotation)).
		Scaling()

	moves := make([]geom.Point, len(p.Points))
	for _, e := range rectangleEdges(p) {
		a := e.mid.Sub(ev.Anchor)
		b := a.Rotate(-ev.Rotation).Scale(s).Rotate(ev.Rotation)
		proj := b.Sub(a).Project(e.normal)
		moves[e.from] = moves[e.from].Add(proj)
		moves[e.to] = moves[e.to].Add(proj)
	}
	for i, d := range moves {
		pt, err := p.Matrix.InverseTransform(p.Matrix.Transform(p.Points[i]).Add(d))
		if err != nil {
			return fmt.Errorf("rectangle: %w", err)
		}
		p.Points[i] = pt
	}
	return nil
}
