package scene

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"annomap/internal/geom"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func square() *Primitive {
	return NewPath([]geom.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}, true)
}

func TestPrimitivePosition(t *testing.T) {
	p := square()
	if got := p.Position(); got != geom.Pt(1, 1) {
		t.Errorf("position = %v, want (1, 1)", got)
	}
	p.Matrix = geom.Translate(5, -1)
	if got := p.Position(); got != geom.Pt(6, 0) {
		t.Errorf("translated position = %v, want (6, 0)", got)
	}

	empty := NewPath(nil, true)
	empty.Matrix = geom.Translate(3, 4)
	if got := empty.Position(); got != geom.Pt(3, 4) {
		t.Errorf("empty path position = %v, want the mapped origin", got)
	}
	if !empty.Bounds().IsEmpty() {
		t.Error("empty path has bounds")
	}
}

func TestApplyMatrix(t *testing.T) {
	p := square()
	p.Matrix = geom.Scale(2, 3)
	want := p.WorldPoints()
	p.ApplyMatrix()
	if !p.Matrix.IsIdentity() {
		t.Errorf("matrix not reset: %+v", p.Matrix)
	}
	if d := cmp.Diff(want, p.Points); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}

func TestSceneMembership(t *testing.T) {
	s := New()
	a, b, c := square(), square(), square()
	for _, p := range []*Primitive{a, b} {
		if err := s.Add(p); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Add(a); !errors.Is(err, ErrInScene) {
		t.Errorf("second Add: err = %v", err)
	}
	if err := s.Add(nil); err == nil {
		t.Error("nil primitive added")
	}

	if err := s.Replace(a, c); err != nil {
		t.Fatal(err)
	}
	if s.Index(c) != 0 || s.Index(a) != -1 {
		t.Errorf("replace did not keep the slot: %d %d", s.Index(c), s.Index(a))
	}

	// a failed swap leaves the scene alone
	before := s.Items()
	if err := s.Replace(a, square()); !errors.Is(err, ErrNotInScene) {
		t.Errorf("replace of missing primitive: err = %v", err)
	}
	if err := s.Replace(c, b); !errors.Is(err, ErrInScene) {
		t.Errorf("replace with member: err = %v", err)
	}
	same := cmp.Comparer(func(x, y *Primitive) bool { return x == y })
	if d := cmp.Diff(before, s.Items(), same); d != "" {
		t.Errorf("scene changed by failed replace: (-want +got)\n%s", d)
	}

	if err := s.Remove(b); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(b); !errors.Is(err, ErrNotInScene) {
		t.Errorf("second Remove: err = %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
}

func TestSceneBounds(t *testing.T) {
	s := New()
	if !s.Bounds().IsEmpty() {
		t.Error("empty scene has bounds")
	}
	a, b := square(), square()
	b.Matrix = geom.Translate(10, 10)
	s.Add(a)
	s.Add(b)
	s.Add(NewPath(nil, false))
	want := geom.BBox{MinX: 0, MinY: 0, MaxX: 12, MaxY: 12}
	if got := s.Bounds(); got != want {
		t.Errorf("bounds = %+v, want %+v", got, want)
	}
}

func TestSceneRotateWithoutHook(t *testing.T) {
	s := New()
	p := square()
	s.Add(p)
	if err := s.Rotate(p, 90, p.Position()); err != nil {
		t.Fatal(err)
	}
	want := []geom.Point{{X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}, {X: 0, Y: 0}}
	if d := cmp.Diff(want, p.WorldPoints(), approx); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}

func TestSceneScaleEvent(t *testing.T) {
	s := New()
	p := square()
	p.Matrix = geom.Translate(1, 0)
	var got []TransformEvent
	p.OnTransform = func(q *Primitive, ev TransformEvent) error {
		if q != p {
			t.Error("hook called with another primitive")
		}
		// the primitive is flattened before the increment is appended
		if d := cmp.Diff(ev.Matrix, q.Matrix, approx); d != "" {
			t.Errorf("matrix at hook time: (-want +got)\n%s", d)
		}
		got = append(got, ev)
		return nil
	}
	s.Add(p)
	anchor := geom.Pt(1, 0)
	if err := s.Scale(p, anchor, 30, 2, 1); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("hook called %d times", len(got))
	}
	ev := got[0]
	if ev.Op != OpScale || ev.Anchor != anchor || ev.Rotation != 30 {
		t.Errorf("event = %+v", ev)
	}
	if d := cmp.Diff(geom.Pt(1, 0), p.Points[0], approx); d != "" {
		t.Errorf("points not flattened: (-want +got)\n%s", d)
	}
	if ev.Op.String() != "scale" || OpRotate.String() != "rotate" || Op(0).String() != "unknown" {
		t.Error("Op names")
	}
}

func TestSceneScaleRollsBack(t *testing.T) {
	s := New()
	p := square()
	p.Matrix = geom.Rotate(10)
	before := p.WorldPoints()
	boom := errors.New("boom")
	p.OnTransform = func(q *Primitive, ev TransformEvent) error {
		q.Points[0] = geom.Pt(100, 100)
		return boom
	}
	s.Add(p)
	err := s.Scale(p, geom.Point{}, 0, 2, 2)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the hook's error", err)
	}
	if d := cmp.Diff(before, p.WorldPoints(), approx); d != "" {
		t.Errorf("primitive not restored: (-want +got)\n%s", d)
	}
	if p.Matrix != geom.Rotate(10) {
		t.Errorf("matrix not restored: %+v", p.Matrix)
	}
}

func TestSceneScaleRejects(t *testing.T) {
	s := New()
	p := square()
	called := false
	p.OnTransform = func(*Primitive, TransformEvent) error {
		called = true
		return nil
	}
	if err := s.Scale(p, geom.Point{}, 0, 2, 2); !errors.Is(err, ErrNotInScene) {
		t.Errorf("scale outside scene: err = %v", err)
	}
	s.Add(p)
	if err := s.Scale(p, geom.Point{}, 0, 0, 2); !errors.Is(err, geom.ErrSingular) {
		t.Errorf("zero factor: err = %v", err)
	}
	if err := s.Scale(p, geom.Pt(-5, 0), 0, -1, 1); !errors.Is(err, ErrMirror) {
		t.Errorf("mirror: err = %v", err)
	}
	if called {
		t.Error("hook ran for a rejected scale")
	}
	if d := cmp.Diff(square().Points, p.Points); d != "" {
		t.Errorf("rejected scale moved points: (-want +got)\n%s", d)
	}
}
