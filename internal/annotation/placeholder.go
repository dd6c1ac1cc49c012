package annotation

import (
	"fmt"

	"annomap/internal/geom"
	"annomap/internal/scene"
)

// PlaceholderKind matches no feature; placeholders are only ever created
// explicitly.
var PlaceholderKind = Kind{}

// Host swaps one geometry for another in the scene that displays them.
type Host interface {
	ReplaceGeometry(old, next Geometry) error
}

// Placeholder holds the style of an annotation whose shape kind is not known
// yet. It has no coordinates until it is materialized, after which it is
// spent and must be dropped.
type Placeholder struct {
	item  *scene.Primitive
	spent bool
}

// NewPlaceholder keeps only the feature's style bag; the geometry is ignored.
func NewPlaceholder(f geom.Feature) *Placeholder {
	item := scene.NewPath(nil, false)
	item.Style = styleOf(f)
	return &Placeholder{item: item}
}

func (p *Placeholder) Kind() Kind             { return PlaceholderKind }
func (p *Placeholder) Item() *scene.Primitive { return p.item }
func (p *Placeholder) Coordinates() []float64 { return []float64{} }

// Properties returns the style bag itself.
func (p *Placeholder) Properties() map[string]any { return p.item.Style }

// Spent reports whether Materialize has succeeded.
func (p *Placeholder) Spent() bool { return p.spent }

// Materialize builds a geometry of the given type and subtype carrying the
// placeholder's style, and has host put it in the placeholder's place.
//
// It succeeds at most once. If the factory or the host fails nothing has
// changed and the placeholder is still usable.
func (p *Placeholder) Materialize(host Host, f *Factory, typ, subtype string) (Geometry, error) {
	if p.spent {
		return nil, ErrMaterialized
	}
	feat := geom.NewFeature(typ, subtype, []float64{}, geom.CloneProps(p.item.Style))
	g, err := f.New(feat)
	if err != nil {
		return nil, fmt.Errorf("materialize %s: %w", Kind{Type: typ, Subtype: subtype}, err)
	}
	if err := host.ReplaceGeometry(p, g); err != nil {
		return nil, fmt.Errorf("materialize %s: %w", g.Kind(), err)
	}
	p.spent = true
	return g, nil
}
