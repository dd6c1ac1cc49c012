package tui

// brailleDots maps a dot's column and row within a cell to its bit in the
// U+2800 block.
var brailleDots = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// brailleBuf is a canvas of 2x4 dots per terminal cell.
type brailleBuf struct {
	w, h  int
	cells []uint8
}

func newBrailleBuf(w, h int) *brailleBuf {
	return &brailleBuf{w: w, h: h, cells: make([]uint8, w*h)}
}

// setPixel sets the dot at micro coordinates; dots off the canvas are dropped.
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cx >= b.w || cy >= b.h {
		return
	}
	b.cells[cy*b.w+cx] |= brailleDots[mx%2][my%4]
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	row := make([]rune, b.w)
	for y := range out {
		for x, mask := range b.cells[y*b.w : (y+1)*b.w] {
			row[x] = ' '
			if mask != 0 {
				row[x] = rune(0x2800 + int(mask))
			}
		}
		out[y] = string(row)
	}
	return out
}
