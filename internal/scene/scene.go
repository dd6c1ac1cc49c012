package scene

import (
	"errors"
	"fmt"
	"slices"

	"annomap/internal/geom"
)

var (
	ErrNotInScene = errors.New("scene: primitive not in scene")
	ErrInScene    = errors.New("scene: primitive already in scene")
	ErrMirror     = errors.New("scene: negative scale factor")
)

// Scene is an ordered list of primitives. It is owned by one event loop and
// does no locking.
type Scene struct {
	items []*Primitive
}

func New() *Scene {
	return &Scene{}
}

func (s *Scene) Add(p *Primitive) error {
	if p == nil {
		return errors.New("scene: nil primitive")
	}
	if s.Index(p) >= 0 {
		return ErrInScene
	}
	s.items = append(s.items, p)
	return nil
}

func (s *Scene) Remove(p *Primitive) error {
	i := s.Index(p)
	if i < 0 {
		return ErrNotInScene
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

// Replace puts next where old was. Either the swap happens completely or the
// scene is left unchanged.
func (s *Scene) Replace(old, next *Primitive) error {
	if next == nil {
		return errors.New("scene: nil primitive")
	}
	i := s.Index(old)
	if i < 0 {
		return ErrNotInScene
	}
	if old != next && s.Index(next) >= 0 {
		return ErrInScene
	}
	s.items[i] = next
	return nil
}

// Index returns the position of p, or -1.
func (s *Scene) Index(p *Primitive) int {
	return slices.Index(s.items, p)
}

func (s *Scene) Items() []*Primitive {
	return slices.Clone(s.items)
}

func (s *Scene) Len() int { return len(s.items) }

func (s *Scene) Bounds() geom.BBox {
	b := geom.EmptyBBox()
	for _, p := range s.items {
		b = b.Union(p.Bounds())
	}
	return b
}

// Rotate turns p by deg about center.
func (s *Scene) Rotate(p *Primitive, deg float64, center geom.Point) error {
	return s.apply(p, TransformEvent{
		Op:     OpRotate,
		Anchor: center,
		Matrix: geom.RotateAround(deg, center),
	})
}

// Scale stretches p by (sx, sy) along axes rotated by rotation degrees,
// keeping anchor fixed. Mirroring (a negative factor) is not supported.
func (s *Scene) Scale(p *Primitive, anchor geom.Point, rotation, sx, sy float64) error {
	m := geom.ScaleAround(anchor, rotation, sx, sy)
	if _, err := m.Invert(); err != nil {
		return fmt.Errorf("scale %gx%g: %w", sx, sy, err)
	}
	if sx < 0 || sy < 0 {
		return fmt.Errorf("scale %gx%g: %w", sx, sy, ErrMirror)
	}
	return s.apply(p, TransformEvent{
		Op:       OpScale,
		Anchor:   anchor,
		Rotation: rotation,
		Matrix:   m,
	})
}

// apply flattens the primitive so its local space is the scene space, appends
// the increment and hands it to the primitive's hook. A failing hook rolls
// the primitive back.
func (s *Scene) apply(p *Primitive, ev TransformEvent) error {
	if s.Index(p) < 0 {
		return ErrNotInScene
	}
	before := p.save()
	p.ApplyMatrix()
	p.Matrix = p.Matrix.Append(ev.Matrix)
	if p.OnTransform == nil {
		return nil
	}
	if err := p.OnTransform(p, ev); err != nil {
		p.restore(before)
		return fmt.Errorf("%s: %w", ev.Op, err)
	}
	return nil
}
