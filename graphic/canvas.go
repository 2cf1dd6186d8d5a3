package graphic

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// BrailleBase is the blank braille pattern.
const BrailleBase rune = '⠀'

// braille dot bits by [row][col] inside a cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a dot raster backed by braille cells. Every terminal cell holds
// 2 by 4 dots and one colour.
type Canvas struct {
	cols, rows int

	dots  []uint8
	color []colorful.Color
}

// NewCanvas returns a canvas of cols by rows cells.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the cell size. Buffers are kept when they are big enough.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}

	c.cols, c.rows = cols, rows

	if n := cols * rows; cap(c.dots) < n {
		c.dots = make([]uint8, n)
		c.color = make([]colorful.Color, n)
	} else {
		c.dots = c.dots[:n]
		c.color = c.color[:n]
	}

	c.Clear()
}

// Clear removes every dot.
func (c *Canvas) Clear() {
	for i := range c.dots {
		c.dots[i] = 0
	}
}

// Width is the width in dots.
func (c *Canvas) Width() int {
	return c.cols * 2
}

// Height is the height in dots.
func (c *Canvas) Height() int {
	return c.rows * 4
}

// Dot sets the dot at x, y. Dots outside the canvas are ignored.
func (c *Canvas) Dot(x, y int, col colorful.Color) {
	if x < 0 || y < 0 || x >= c.Width() || y >= c.Height() {
		return
	}

	i := (y/4)*c.cols + x/2
	c.dots[i] |= brailleBits[y%4][x%2]
	c.color[i] = col
}

// Line draws a segment with a vertical thickness of thick dots.
func (c *Canvas) Line(a, b Point, thick int, col colorful.Color) {
	if thick < 1 {
		thick = 1
	}

	dx, dy := b.X-a.X, b.Y-a.Y
	n := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if n < 1 {
		n = 1
	}

	top := -(thick - 1) / 2

	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		x := int(math.Round(a.X + dx*t))
		y := int(math.Round(a.Y + dy*t))

		for k := 0; k < thick; k++ {
			c.Dot(x, y+top+k, col)
		}
	}
}

// Stroke draws a polyline.
func (c *Canvas) Stroke(pts []Point, thick int, col colorful.Color) {
	if len(pts) == 1 {
		c.Line(pts[0], pts[0], thick, col)
		return
	}

	for i := 1; i < len(pts); i++ {
		c.Line(pts[i-1], pts[i], thick, col)
	}
}

// Cell returns the braille rune and colour of cell col, row. ok is false
// for an empty cell.
func (c *Canvas) Cell(col, row int) (r rune, color colorful.Color, ok bool) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return BrailleBase, colorful.Color{}, false
	}

	i := row*c.cols + col
	if c.dots[i] == 0 {
		return BrailleBase, colorful.Color{}, false
	}

	return BrailleBase + rune(c.dots[i]), c.color[i], true
}
