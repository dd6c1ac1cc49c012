package annotation

import (
	"fmt"

	"annomap/internal/geom"
)

// Constructor builds a geometry from a feature record.
type Constructor func(geom.Feature) (Geometry, error)

type registration struct {
	kind Kind
	ctor Constructor
}

// Factory selects a registered kind for a feature and constructs it.
type Factory struct {
	kinds []registration
}

// NewFactory returns a factory with the Point and Rectangle kinds registered.
func NewFactory() *Factory {
	f := &Factory{}
	f.Register(PointKind, func(feat geom.Feature) (Geometry, error) {
		p, err := NewPoint(feat)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
	f.Register(RectangleKind, func(feat geom.Feature) (Geometry, error) {
		r, err := NewRectangle(feat)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	return f
}

// Register adds a kind. A later registration of the same kind replaces the
// earlier one. Kinds with an empty type are ignored.
func (f *Factory) Register(k Kind, c Constructor) {
	if k.Type == "" || c == nil {
		return
	}
	for i := range f.kinds {
		if f.kinds[i].kind == k {
			f.kinds[i].ctor = c
			return
		}
	}
	f.kinds = append(f.kinds, registration{kind: k, ctor: c})
}

// Lookup finds the constructor for a type and subtype. An exact subtype match
// wins over an AnySubtype registration.
func (f *Factory) Lookup(typ, subtype string) (Constructor, bool) {
	var wildcard Constructor
	for _, r := range f.kinds {
		if !r.kind.Matches(typ, subtype) {
			continue
		}
		if r.kind.Subtype != AnySubtype {
			return r.ctor, true
		}
		if wildcard == nil {
			wildcard = r.ctor
		}
	}
	return wildcard, wildcard != nil
}

// New constructs the geometry for feat.
func (f *Factory) New(feat geom.Feature) (Geometry, error) {
	c, ok := f.Lookup(feat.GeometryType(), feat.Subtype())
	if !ok {
		return nil, fmt.Errorf("%w: type %q subtype %q", ErrUnknownKind, feat.GeometryType(), feat.Subtype())
	}
	return c(feat)
}
