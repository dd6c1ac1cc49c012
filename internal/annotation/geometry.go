// Package annotation implements annotation geometries: shapes built from
// feature records that keep their defining invariants while being edited
// interactively.
//
// Every kind implements [Geometry]. A [Factory] picks the kind for a feature
// from its geometry type and subtype. A [Placeholder] stands in for a shape
// whose kind is not known yet and is swapped for a concrete geometry by
// [Placeholder.Materialize].
package annotation

import (
	"errors"
	"fmt"

	"annomap/internal/geom"
	"annomap/internal/scene"
)

// AnySubtype in a Kind matches every subtype of its geometry type.
const AnySubtype = "*"

// Kind is the geometry type and subtype a kind of annotation is built from.
// A Kind with an empty Type is never selected automatically.
type Kind struct {
	Type    string
	Subtype string
}

func (k Kind) String() string {
	if k.Type == "" {
		return "<none>"
	}
	if k.Subtype == "" {
		return k.Type
	}
	return k.Type + "/" + k.Subtype
}

// Matches reports whether a feature of the given type and subtype belongs to k.
func (k Kind) Matches(typ, subtype string) bool {
	if k.Type == "" || k.Type != typ {
		return false
	}
	return k.Subtype == AnySubtype || k.Subtype == subtype
}

// Geometry is the read interface shared by all annotation kinds.
type Geometry interface {
	// Kind is the same for every value of a concrete type.
	Kind() Kind

	// Item is the primitive the geometry owns.
	Item() *scene.Primitive

	// Coordinates are computed from the live primitive. They are empty when
	// the shape has no position.
	Coordinates() []float64

	// Properties are the shape parameters, computed from the live primitive.
	Properties() map[string]any
}

var (
	ErrUnknownKind  = errors.New("annotation: no kind for feature")
	ErrMaterialized = errors.New("annotation: placeholder already materialized")
)

// InvalidFeatureError reports a feature whose type or subtype does not fit the
// kind that was asked to construct it.
type InvalidFeatureError struct {
	Want Kind
	Got  Kind
}

func (e *InvalidFeatureError) Error() string {
	return fmt.Sprintf("annotation: bad feature for %s: got type %q subtype %q", e.Want, e.Got.Type, e.Got.Subtype)
}

func checkFeature(want Kind, f geom.Feature) error {
	if !want.Matches(f.GeometryType(), f.Subtype()) {
		return &InvalidFeatureError{Want: want, Got: Kind{Type: f.GeometryType(), Subtype: f.Subtype()}}
	}
	return nil
}

func styleOf(f geom.Feature) map[string]any {
	if f.Properties == nil {
		return map[string]any{}
	}
	return geom.CloneProps(f.Properties)
}

// ToFeature re-externalizes g as a feature record. Geometries of a kind with
// no type, such as placeholders, have a nil geometry.
func ToFeature(g Geometry) geom.Feature {
	item := g.Item()
	style := geom.CloneProps(item.Style)
	if style == nil {
		style = map[string]any{}
	}
	k := g.Kind()
	if k.Type == "" {
		return geom.Feature{Type: "Feature", Properties: style}
	}
	props := geom.CloneProps(g.Properties())
	if props == nil {
		props = map[string]any{}
	}
	if k.Subtype != "" && k.Subtype != AnySubtype {
		props["subtype"] = k.Subtype
	}
	return geom.Feature{
		Type: "Feature",
		Geometry: &geom.Geometry{
			Type:        k.Type,
			Coordinates: g.Coordinates(),
			Properties:  props,
		},
		Properties: style,
	}
}
