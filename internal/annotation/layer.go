package annotation

import (
	"errors"
	"fmt"

	"annomap/internal/geom"
	"annomap/internal/scene"
)

// Layer binds geometries to the primitives of one scene. It is the host side
// of the annotation model: it ingests features, forwards interactive
// transforms and turns the live shapes back into features.
type Layer struct {
	scene   *scene.Scene
	factory *Factory
	byItem  map[*scene.Primitive]Geometry
}

// NewLayer creates an empty layer. A nil factory means NewFactory().
func NewLayer(f *Factory) *Layer {
	if f == nil {
		f = NewFactory()
	}
	return &Layer{
		scene:   scene.New(),
		factory: f,
		byItem:  map[*scene.Primitive]Geometry{},
	}
}

func (l *Layer) Scene() *scene.Scene { return l.scene }
func (l *Layer) Factory() *Factory   { return l.factory }
func (l *Layer) Len() int            { return l.scene.Len() }

// Add constructs the geometry for f and appends it to the scene. A feature
// without a geometry comes back as a placeholder, which is how Feature writes
// one out.
func (l *Layer) Add(f geom.Feature) (Geometry, error) {
	var g Geometry
	if f.Geometry == nil {
		g = NewPlaceholder(f)
	} else {
		var err error
		if g, err = l.factory.New(f); err != nil {
			return nil, err
		}
	}
	if err := l.AddGeometry(g); err != nil {
		return nil, err
	}
	return g, nil
}

// AddFeatures adds every feature it can and returns how many were added
// along with the joined errors of the rest.
func (l *Layer) AddFeatures(fs []geom.Feature) (int, error) {
	var errs []error
	n := 0
	for i, f := range fs {
		if _, err := l.Add(f); err != nil {
			errs = append(errs, fmt.Errorf("feature %d: %w", i, err))
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

func (l *Layer) AddGeometry(g Geometry) error {
	if err := l.scene.Add(g.Item()); err != nil {
		return err
	}
	l.byItem[g.Item()] = g
	return nil
}

func (l *Layer) Remove(g Geometry) error {
	if err := l.scene.Remove(g.Item()); err != nil {
		return err
	}
	delete(l.byItem, g.Item())
	return nil
}

// ReplaceGeometry swaps old for next in place, keeping the drawing order.
func (l *Layer) ReplaceGeometry(old, next Geometry) error {
	if next == nil {
		return errors.New("annotation: nil geometry")
	}
	if err := l.scene.Replace(old.Item(), next.Item()); err != nil {
		return err
	}
	delete(l.byItem, old.Item())
	l.byItem[next.Item()] = next
	return nil
}

// Lookup returns the geometry owning p.
func (l *Layer) Lookup(p *scene.Primitive) (Geometry, bool) {
	g, ok := l.byItem[p]
	return g, ok
}

// Geometries lists the geometries in drawing order.
func (l *Layer) Geometries() []Geometry {
	items := l.scene.Items()
	out := make([]Geometry, 0, len(items))
	for _, p := range items {
		if g, ok := l.byItem[p]; ok {
			out = append(out, g)
		}
	}
	return out
}

// Feature re-externalizes g.
func (l *Layer) Feature(g Geometry) geom.Feature { return ToFeature(g) }

// Features re-externalizes every geometry, in drawing order.
func (l *Layer) Features() []geom.Feature {
	gs := l.Geometries()
	out := make([]geom.Feature, len(gs))
	for i, g := range gs {
		out[i] = l.Feature(g)
	}
	return out
}

func (l *Layer) Bounds() geom.BBox { return l.scene.Bounds() }

// Rotate turns g by deg about its own position.
func (l *Layer) Rotate(g Geometry, deg float64) error {
	return l.scene.Rotate(g.Item(), deg, g.Item().Position())
}

// Scale stretches g by (sx, sy) in its own frame with anchor fixed. The frame
// is the shape's "angle" property when it has one.
func (l *Layer) Scale(g Geometry, anchor geom.Point, sx, sy float64) error {
	rot, _ := g.Properties()["angle"].(float64)
	return l.scene.Scale(g.Item(), anchor, rot, sx, sy)
}
