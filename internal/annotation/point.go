package annotation

import (
	"annomap/internal/geom"
	"annomap/internal/scene"
)

// PointKind is a plain Point feature with no subtype.
var PointKind = Kind{Type: geom.TypePoint}

// Point is a single marker. It has no shape properties and no transform hook:
// whatever the host applies moves it.
type Point struct {
	item *scene.Primitive
}

func NewPoint(f geom.Feature) (*Point, error) {
	if err := checkFeature(PointKind, f); err != nil {
		return nil, err
	}
	item := scene.NewPath(nil, false)
	item.Style = styleOf(f)
	if c := f.Geometry.Coordinates; len(c) >= 2 {
		item.Points = []geom.Point{{X: c[0], Y: c[1]}}
	}
	return &Point{item: item}, nil
}

func (p *Point) Kind() Kind             { return PointKind }
func (p *Point) Item() *scene.Primitive { return p.item }

func (p *Point) Coordinates() []float64 {
	if len(p.item.Points) == 0 {
		return []float64{}
	}
	c := p.item.Matrix.Transform(p.item.Points[0])
	return []float64{c.X, c.Y}
}

func (p *Point) Properties() map[string]any {
	return map[string]any{}
}
