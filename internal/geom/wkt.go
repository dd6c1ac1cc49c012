package geom

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"
)

// Geometry type and subtype names understood by the annotation kinds.
const (
	TypePoint        = "Point"
	SubtypeRectangle = "Rectangle"
)

// ParseWKTFeatures converts a subset of WKT into annotation features.
// POINT and MULTIPOINT give one Point feature per vertex; a POLYGON whose
// outer ring is a rectangle gives a Rectangle feature.
func ParseWKTFeatures(wkt string) ([]Feature, error) {
	s := strings.TrimSpace(wkt)
	if s == "" {
		return nil, errors.New("empty wkt")
	}
	up := strings.ToUpper(s)
	parseTuples := func(block string) []Point {
		var out []Point
		for _, tup := range strings.Split(block, ",") {
			tup = strings.Trim(strings.TrimSpace(tup), "()")
			parts := strings.Fields(tup)
			if len(parts) < 2 {
				continue
			}
			x, e1 := strconv.ParseFloat(parts[0], 64)
			y, e2 := strconv.ParseFloat(parts[1], 64)
			if e1 != nil || e2 != nil {
				continue
			}
			out = append(out, Point{X: x, Y: y})
		}
		return out
	}
	points := func(kind string) ([]Feature, error) {
		i := strings.Index(s, "(")
		j := strings.LastIndex(s, ")")
		if i < 0 || j <= i {
			return nil, errors.New("wkt " + kind + ": invalid")
		}
		var out []Feature
		for _, p := range parseTuples(s[i+1 : j]) {
			out = append(out, NewFeature(TypePoint, "", []float64{p.X, p.Y}, nil))
		}
		if len(out) == 0 {
			return nil, errors.New("wkt: no coordinates parsed")
		}
		return out, nil
	}
	switch {
	case strings.HasPrefix(up, "POINT"):
		return points("point")
	case strings.HasPrefix(up, "MULTIPOINT"):
		return points("multipoint")
	case strings.HasPrefix(up, "POLYGON"):
		i := strings.Index(s, "((")
		j := strings.LastIndex(s, "))")
		if i < 0 || j <= i {
			return nil, errors.New("wkt polygon: invalid")
		}
		// outer ring only; holes cannot be part of a rectangle
		outer := s[i+2 : j]
		if k := strings.Index(outer, ")"); k >= 0 {
			outer = outer[:k]
		}
		f, ok := RectangleFeature(parseTuples(outer))
		if !ok {
			return nil, errors.New("wkt polygon: outer ring is not a rectangle")
		}
		return []Feature{f}, nil
	case strings.HasPrefix(up, "LINESTRING"):
		return nil, errors.New("wkt linestring: no annotation kind for lines")
	}
	return nil, errors.New("unsupported wkt type")
}

// RectangleFeature recognises a ring of four corners (optionally closed by a
// repeat of the first) that form a rectangle and describes it as a Rectangle
// feature with center, width, height and angle.
func RectangleFeature(ring []Point) (Feature, bool) {
	if len(ring) == 5 && ring[0] == ring[4] {
		ring = ring[:4]
	}
	if len(ring) != 4 {
		return Feature{}, false
	}
	top := ring[1].Sub(ring[0])
	left := ring[0].Sub(ring[3])
	w, h := top.Length(), left.Length()
	scale := math.Max(w, h)
	if scale == 0 {
		return Feature{}, false
	}
	tol := 1e-9 * scale
	// parallelogram with a right angle
	diag := ring[0].Add(ring[2]).Sub(ring[1].Add(ring[3]))
	if diag.Length() > tol || !scalar.EqualWithinAbs(top.Dot(left)/scale, 0, tol) {
		return Feature{}, false
	}
	c := Centroid(ring)
	angle := top.AngleDeg()
	if w == 0 {
		angle = left.AngleDeg() + 90
	}
	f := NewFeature(TypePoint, SubtypeRectangle, []float64{c.X, c.Y}, nil)
	f.Geometry.Properties["width"] = w
	f.Geometry.Properties["height"] = h
	f.Geometry.Properties["angle"] = angle
	return f, true
}
