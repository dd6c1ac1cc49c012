package annotation

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/floats/scalar"

	"annomap/internal/geom"
	"annomap/internal/scene"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func rectFeature(cx, cy, w, h, angle float64) geom.Feature {
	f := geom.NewFeature(geom.TypePoint, geom.SubtypeRectangle, []float64{cx, cy}, map[string]any{"color": "red"})
	f.Geometry.Properties["width"] = w
	f.Geometry.Properties["height"] = h
	f.Geometry.Properties["angle"] = angle
	return f
}

func mustRect(t *testing.T, f geom.Feature) *Rectangle {
	t.Helper()
	r, err := NewRectangle(f)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// angleDiff is the distance between two angles in degrees, modulo 360.
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d < 0 {
		d += 360
	}
	return math.Min(d, 360-d)
}

func TestRectangleRoundTrip(t *testing.T) {
	cases := []struct{ cx, cy, w, h, angle float64 }{
		{0, 0, 10, 5, 0},
		{3, -4, 1, 1, 45},
		{-120.5, 33.25, 0.002, 0.001, 30},
		{7, 7, 20, 3, -135},
		{0, 0, 4, 0, 180},
		{1e3, -1e3, 250, 125, 359},
	}
	for _, c := range cases {
		r := mustRect(t, rectFeature(c.cx, c.cy, c.w, c.h, c.angle))
		if d := cmp.Diff([]float64{c.cx, c.cy}, r.Coordinates(), approx); d != "" {
			t.Errorf("%+v: coordinates (-want +got)\n%s", c, d)
		}
		p := r.Properties()
		if !scalar.EqualWithinAbs(p["width"].(float64), c.w, 1e-9) || !scalar.EqualWithinAbs(p["height"].(float64), c.h, 1e-9) {
			t.Errorf("%+v: size = %v x %v", c, p["width"], p["height"])
		}
		if d := angleDiff(p["angle"].(float64), c.angle); d > 1e-6 {
			t.Errorf("%+v: angle = %v", c, p["angle"])
		}
	}
}

func TestRectangleCornerOrder(t *testing.T) {
	r := mustRect(t, rectFeature(0, 0, 10, 5, 0))
	want := []geom.Point{{X: -5, Y: -2.5}, {X: 5, Y: -2.5}, {X: 5, Y: 2.5}, {X: -5, Y: 2.5}}
	if d := cmp.Diff(want, r.Corners()); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
	if !r.Item().Closed {
		t.Error("rectangle path is open")
	}
}

func TestRectangleDefaults(t *testing.T) {
	f := geom.NewFeature(geom.TypePoint, geom.SubtypeRectangle, []float64{2, 3}, nil)
	r := mustRect(t, f)
	want := map[string]any{"width": 0.0, "height": 0.0, "angle": 0.0}
	if d := cmp.Diff(want, r.Properties()); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
	if d := cmp.Diff([]float64{2, 3}, r.Coordinates()); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
}

func TestRectangleDegenerate(t *testing.T) {
	f := geom.NewFeature(geom.TypePoint, geom.SubtypeRectangle, []float64{}, nil)
	r := mustRect(t, f)
	if len(r.Item().Points) != 0 || r.Corners() != nil {
		t.Fatalf("corners = %v", r.Item().Points)
	}
	want := map[string]any{"width": 0.0, "height": 0.0, "angle": 0.0}
	if d := cmp.Diff(want, r.Properties()); d != "" {
		t.Errorf("(-want +got)\n%s", d)
	}
	if got := r.Coordinates(); len(got) != 2 {
		t.Errorf("coordinates = %v", got)
	}

	// scaling an empty rectangle is a no-op, not an error
	l := NewLayer(nil)
	if err := l.AddGeometry(r); err != nil {
		t.Fatal(err)
	}
	if err := l.Scale(r, geom.Point{}, 2, 2); err != nil {
		t.Errorf("scale of empty rectangle: %v", err)
	}
}

func TestRectangleRejectsOtherTypes(t *testing.T) {
	cases := []geom.Feature{
		geom.NewFeature("LineString", geom.SubtypeRectangle, []float64{0, 0, 1, 1}, nil),
		geom.NewFeature(geom.TypePoint, "", []float64{0, 0}, nil),
		geom.NewFeature(geom.TypePoint, "Ellipse", []float64{0, 0}, nil),
		{Type: "Feature"},
	}
	for _, f := range cases {
		_, err := NewRectangle(f)
		var ife *InvalidFeatureError
		if !errors.As(err, &ife) {
			t.Errorf("NewRectangle(%s/%s) err = %v, want InvalidFeatureError", f.GeometryType(), f.Subtype(), err)
			continue
		}
		if ife.Want != RectangleKind {
			t.Errorf("error wants %v", ife.Want)
		}
	}
}

func TestRectangleDoesNotRetainFeature(t *testing.T) {
	f := rectFeature(0, 0, 2, 2, 0)
	r := mustRect(t, f)
	f.Properties["color"] = "blue"
	f.Geometry.Coordinates[0] = 50
	if r.Item().Style["color"] != "red" {
		t.Error("style shared with the feature")
	}
	if c := r.Coordinates(); c[0] != 0 {
		t.Error("coordinates shared with the feature")
	}
}

func TestRectangleScaleAnchored(t *testing.T) {
	l := NewLayer(nil)
	g, err := l.Add(rectFeature(0, 0, 10, 5, 0))
	if err != nil {
		t.Fatal(err)
	}
	r := g.(*Rectangle)
	if err := l.Scale(r, geom.Pt(-5, 0), 2, 1); err != nil {
		t.Fatal(err)
	}
	// the anchor-side edge stays at x = -5; the opposite edge moves out
	want := []geom.Point{{X: -5, Y: -2.5}, {X: 15, Y: -2.5}, {X: 15, Y: 2.5}, {X: -5, Y: 2.5}}
	if d := cmp.Diff(want, r.Corners(), approx); d != "" {
		t.Errorf("corners (-want +got)\n%s", d)
	}
	p := r.Properties()
	if !scalar.EqualWithinAbs(p["width"].(float64), 20, 1e-9) || !scalar.EqualWithinAbs(p["height"].(float64), 5, 1e-9) {
		t.Errorf("size = %v x %v", p["width"], p["height"])
	}
	if d := cmp.Diff([]float64{5, 0}, r.Coordinates(), approx); d != "" {
		t.Errorf("center (-want +got)\n%s", d)
	}
}

func TestRectangleScaleRejectsMirror(t *testing.T) {
	l := NewLayer(nil)
	g, err := l.Add(rectFeature(0, 0, 10, 5, 0))
	if err != nil {
		t.Fatal(err)
	}
	r := g.(*Rectangle)
	before := r.Corners()
	if err := l.Scale(r, geom.Pt(-5, 0), -1, 1); !errors.Is(err, scene.ErrMirror) {
		t.Errorf("err = %v, want ErrMirror", err)
	}
	if d := cmp.Diff(before, r.Corners(), approx); d != "" {
		t.Errorf("corners moved (-want +got)\n%s", d)
	}
}

func TestRectangleScaleRotated(t *testing.T) {
	l := NewLayer(nil)
	g, _ := l.Add(rectFeature(1, 2, 8, 4, 30))
	r := g.(*Rectangle)
	c := r.Corners()
	anchor := c[0].Add(c[3]).Div(2) // left edge
	if err := l.Scale(r, anchor, 1.5, 1); err != nil {
		t.Fatal(err)
	}
	p := r.Properties()
	if !scalar.EqualWithinAbs(p["width"].(float64), 12, 1e-9) || !scalar.EqualWithinAbs(p["height"].(float64), 4, 1e-9) {
		t.Errorf("size = %v x %v", p["width"], p["height"])
	}
	if d := angleDiff(p["angle"].(float64), 30); d > 1e-6 {
		t.Errorf("angle = %v", p["angle"])
	}
	after := r.Corners()
	if d := cmp.Diff(c[0], after[0], approx); d != "" {
		t.Errorf("anchored corner moved (-want +got)\n%s", d)
	}
	if d := cmp.Diff(c[3], after[3], approx); d != "" {
		t.Errorf("anchored corner moved (-want +got)\n%s", d)
	}
}

func TestRectangleStaysRectangular(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		l := NewLayer(nil)
		angle := rng.Float64()*360 - 180
		g, _ := l.Add(rectFeature(rng.Float64()*100, rng.Float64()*100, 1+rng.Float64()*20, 1+rng.Float64()*20, angle))
		r := g.(*Rectangle)
		for step := 0; step < 25; step++ {
			anchor := geom.Pt(rng.Float64()*200-50, rng.Float64()*200-50)
			sx, sy := 0.5+rng.Float64()*1.5, 0.5+rng.Float64()*1.5
			// both the shape's own frame and an unrelated one
			rot := angle
			if step%2 == 1 {
				rot = rng.Float64() * 360
			}
			if err := l.scene.Scale(r.Item(), anchor, rot, sx, sy); err != nil {
				t.Fatalf("trial %d step %d: %v", trial, step, err)
			}
			pts := r.Corners()
			top := pts[1].Sub(pts[0])
			left := pts[0].Sub(pts[3])
			if dot := top.Dot(left) / (top.Length() * left.Length()); math.Abs(dot) > 1e-7 {
				t.Fatalf("trial %d step %d: cos(top, left) = %g", trial, step, dot)
			}
			if d := angleDiff(r.Properties()["angle"].(float64), angle); d > 1e-6 {
				t.Fatalf("trial %d step %d: angle drifted to %v from %v", trial, step, r.Properties()["angle"], angle)
			}
		}
	}
}

func TestRectangleRotate(t *testing.T) {
	l := NewLayer(nil)
	g, _ := l.Add(rectFeature(4, 4, 6, 2, 10))
	if err := l.Rotate(g, 35); err != nil {
		t.Fatal(err)
	}
	p := g.Properties()
	if d := angleDiff(p["angle"].(float64), 45); d > 1e-6 {
		t.Errorf("angle = %v, want 45", p["angle"])
	}
	if !scalar.EqualWithinAbs(p["width"].(float64), 6, 1e-9) || !scalar.EqualWithinAbs(p["height"].(float64), 2, 1e-9) {
		t.Errorf("size = %v x %v", p["width"], p["height"])
	}
	if d := cmp.Diff([]float64{4, 4}, g.Coordinates(), approx); d != "" {
		t.Errorf("center (-want +got)\n%s", d)
	}
}

func TestRectangleCollapsedEdge(t *testing.T) {
	l := NewLayer(nil)
	g, _ := l.Add(rectFeature(0, 0, 6, 0, 0))
	if err := l.Scale(g, geom.Pt(-3, 0), 2, 3); err != nil {
		t.Fatal(err)
	}
	for _, c := range g.Item().WorldPoints() {
		if math.IsNaN(c.X) || math.IsNaN(c.Y) {
			t.Fatalf("NaN corner: %v", g.Item().WorldPoints())
		}
	}
	// the left and right edges have no normal, so they stay where they are
	p := g.Properties()
	if !scalar.EqualWithinAbs(p["width"].(float64), 6, 1e-9) {
		t.Errorf("width = %v, want 6", p["width"])
	}
	if !scalar.EqualWithinAbs(p["height"].(float64), 0, 1e-9) {
		t.Errorf("collapsed height = %v, want 0", p["height"])
	}
}
