package tui

import (
	"sort"
	"strings"

	"annomap/internal/annotation"
	"annomap/internal/geom"
)

// viewBox widens the data extent so one braille dot spans the same scene
// distance horizontally and vertically.
func (m Model) viewBox(w, h int) (geom.BBox, bool) {
	b := m.bbox
	if !(b.MaxX > b.MinX && b.MaxY > b.MinY) || w <= 1 || h <= 1 {
		return geom.BBox{}, false
	}
	wMic, hMic := float64(w*2-1), float64(h*4-1)
	dx, dy := b.MaxX-b.MinX, b.MaxY-b.MinY
	c := b.Center()
	if dx/wMic > dy/hMic {
		dy = dx / wMic * hMic
	} else {
		dx = dy / hMic * wMic
	}
	return geom.BBox{MinX: c.X - dx/2, MinY: c.Y - dy/2, MaxX: c.X + dx/2, MaxY: c.Y + dy/2}, true
}

// cellToScene converts a map cell coordinate back to scene coordinates using
// the view box, zoom and pan.
func (m Model) cellToScene(cx, cy, w, h int) (geom.Point, bool) {
	b, ok := m.viewBox(w, h)
	if !ok {
		return geom.Point{}, false
	}
	zx := float64(cx-m.offsetX) / float64(w-1)
	zy := 1.0 - float64(cy-m.offsetY)/float64(h-1)
	nx := 0.5 + (zx-0.5)/m.zoom
	ny := 0.5 + (zy-0.5)/m.zoom
	return geom.Point{
		X: b.MinX + nx*(b.MaxX-b.MinX),
		Y: b.MinY + ny*(b.MaxY-b.MinY),
	}, true
}

// screenXYMicro maps a scene point into a 2x4 microgrid per cell for braille rendering.
func (m Model) screenXYMicro(p geom.Point, w, h int) (int, int, bool) {
	b, ok := m.viewBox(w, h)
	if !ok {
		return 0, 0, false
	}
	nx := (p.X - b.MinX) / (b.MaxX - b.MinX)
	ny := (p.Y - b.MinY) / (b.MaxY - b.MinY)
	zx := 0.5 + (nx-0.5)*m.zoom
	zy := 0.5 + (ny-0.5)*m.zoom
	wMic := w * 2
	hMic := h * 4
	sx := int(zx*float64(wMic-1)) + m.offsetX*2
	sy := int((1.0-zy)*float64(hMic-1)) + m.offsetY*4
	return sx, sy, true
}

func (m Model) visible(g annotation.Geometry) bool {
	switch g.(type) {
	case *annotation.Point:
		return m.showPoints
	case *annotation.Rectangle:
		return m.showRects
	}
	return false
}

func (m Model) renderCanvas(w, h int) string {
	lines := make([]string, h)
	for y := range lines {
		lines[y] = strings.Repeat(" ", w)
	}
	// High-resolution braille buffer for crisp lines/edges
	br := newBrailleBuf(w, h)

	sel, hasSel := m.current()
	for _, g := range m.layer.Geometries() {
		if !m.visible(g) {
			continue
		}
		var ring [][2]int
		for _, p := range g.Item().WorldPoints() {
			mx, my, ok := m.screenXYMicro(p, w, h)
			if !ok {
				continue
			}
			ring = append(ring, [2]int{mx, my})
		}
		switch {
		case len(ring) == 1:
			// small cross so a marker stays visible
			x, y := ring[0][0], ring[0][1]
			br.drawLineMicro(x-1, y, x+1, y)
			br.drawLineMicro(x, y-1, x, y+1)
		case len(ring) >= 3:
			if hasSel && g == sel {
				fillRing(br, ring, h*4)
			}
			for i := range ring {
				a := ring[i]
				b := ring[(i+1)%len(ring)]
				br.drawLineMicro(a[0], a[1], b[0], b[1])
			}
		}
	}

	// Composite braille overlay onto base lines
	braLines := br.toLines()
	for y := 0; y < h && y < len(braLines); y++ {
		base := []rune(lines[y])
		over := []rune(braLines[y])
		for x := 0; x < len(base) && x < len(over); x++ {
			if over[x] != ' ' {
				base[x] = over[x]
			}
		}
		lines[y] = string(base)
	}

	// Hover highlight: draw an orange circle at the hovered vertex cell
	if m.hovering {
		cx := m.hoverMicX / 2
		cy := m.hoverMicY / 4
		if cy >= 0 && cy < len(lines) {
			r := []rune(lines[cy])
			if cx >= 0 && cx < len(r) {
				circle := hoverStyle.Render("◯")
				lines[cy] = string(r[:cx]) + circle + string(r[cx+1:])
			}
		}
	}
	return strings.Join(lines, "\n")
}

// fillRing fills a closed ring on the microgrid with the even-odd rule.
func fillRing(br *brailleBuf, ring [][2]int, hMic int) {
	for yMic := 0; yMic < hMic; yMic++ {
		var xs []int
		for i := 0; i < len(ring); i++ {
			a := ring[i]
			b := ring[(i+1)%len(ring)]
			if a[1] == b[1] { // horizontal edge: skip
				continue
			}
			y0, y1 := a[1], b[1]
			x0, x1 := a[0], b[0]
			if (yMic >= y0 && yMic < y1) || (yMic >= y1 && yMic < y0) {
				t := float64(yMic-y0) / float64(y1-y0)
				xs = append(xs, int(float64(x0)+t*float64(x1-x0)))
			}
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for xMic := max(0, xs[i]); xMic <= xs[i+1]; xMic += 2 {
				br.setPixel(xMic, yMic)
			}
		}
	}
}

// nearest finds the visible vertex closest to the micro coordinate (hx, hy)
// and returns its micro position and the index of its geometry.
func (m Model) nearest(hx, hy, w, h int) (mx, my, idx int, ok bool) {
	best := 1<<31 - 1
	idx = -1
	for i, g := range m.layer.Geometries() {
		if !m.visible(g) {
			continue
		}
		pts := g.Item().WorldPoints()
		if len(pts) > 1 {
			pts = append(pts, g.Item().Position())
		}
		for _, p := range pts {
			x, y, okm := m.screenXYMicro(p, w, h)
			if !okm {
				continue
			}
			dx, dy := x-hx, y-hy
			if d := dx*dx + dy*dy; d < best {
				best = d
				mx, my, idx = x, y, i
			}
		}
	}
	return mx, my, idx, idx >= 0
}
