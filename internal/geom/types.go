package geom

import "math"

type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// EmptyBBox returns a box that any Extend call replaces.
func EmptyBBox() BBox {
	return BBox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

func (b BBox) IsEmpty() bool { return b.MinX > b.MaxX || b.MinY > b.MaxY }

// Extend grows the box to include p.
func (b BBox) Extend(p Point) BBox {
	b.MinX = math.Min(b.MinX, p.X)
	b.MinY = math.Min(b.MinY, p.Y)
	b.MaxX = math.Max(b.MaxX, p.X)
	b.MaxY = math.Max(b.MaxY, p.Y)
	return b
}

func (b BBox) Union(o BBox) BBox {
	if o.IsEmpty() {
		return b
	}
	return b.Extend(Pt(o.MinX, o.MinY)).Extend(Pt(o.MaxX, o.MaxY))
}

func (b BBox) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Pad grows the box by frac of its size on every side. Boxes with no extent
// are padded by one unit so they can be displayed.
func (b BBox) Pad(frac float64) BBox {
	dx := (b.MaxX - b.MinX) * frac
	dy := (b.MaxY - b.MinY) * frac
	if dx == 0 {
		dx = 1
	}
	if dy == 0 {
		dy = 1
	}
	return BBox{MinX: b.MinX - dx, MinY: b.MinY - dy, MaxX: b.MaxX + dx, MaxY: b.MaxY + dy}
}

// BoundsOf returns the bounding box of points.
func BoundsOf(points []Point) BBox {
	b := EmptyBBox()
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}
