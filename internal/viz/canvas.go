package viz

import (
	"math"
	"strings"

	"github.com/tmn-dev/ilqgame/internal/game"
)

// Braille patterns: 2x4 dots per character cell, unicode offset 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille-cell drawing surface with a world-coordinate
// transform, used to render player trajectories in the terminal.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	minX, maxX float64
	minY, maxY float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		minX:   -1, maxX: 1,
		minY: -1, maxY: 1,
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
	return c
}

// SetBounds fixes the world rectangle mapped onto the canvas.
func (c *Canvas) SetBounds(minX, maxX, minY, maxY float64) {
	if maxX > minX {
		c.minX, c.maxX = minX, maxX
	}
	if maxY > minY {
		c.minY, c.maxY = minY, maxY
	}
}

// FitTrajectories sets bounds to cover every (x, y) point of every player's
// path through the operating point, with a small margin.
func (c *Canvas) FitTrajectories(op *game.OperatingPoint, xIdxs, yIdxs []int) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, x := range op.Xs {
		for p := range xIdxs {
			px, py := x.AtVec(xIdxs[p]), x.AtVec(yIdxs[p])
			minX, maxX = math.Min(minX, px), math.Max(maxX, px)
			minY, maxY = math.Min(minY, py), math.Max(maxY, py)
		}
	}
	marginX := 0.1 * (maxX - minX)
	marginY := 0.1 * (maxY - minY)
	if marginX == 0 {
		marginX = 1
	}
	if marginY == 0 {
		marginY = 1
	}
	c.SetBounds(minX-marginX, maxX+marginX, minY-marginY, maxY+marginY)
}

func (c *Canvas) toPixel(wx, wy float64) (int, int) {
	px := (wx - c.minX) / (c.maxX - c.minX) * float64(c.Width*2-1)
	// Flip y so larger world y is higher on screen.
	py := (1 - (wy-c.minY)/(c.maxY-c.minY)) * float64(c.Height*4-1)
	return int(math.Round(px)), int(math.Round(py))
}

// Set lights the braille sub-pixel at pixel coordinates (x, y).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Clear resets the canvas.
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawWorldLine draws a world-coordinate segment with Bresenham stepping.
func (c *Canvas) DrawWorldLine(x0, y0, x1, y1 float64) {
	ax, ay := c.toPixel(x0, y0)
	bx, by := c.toPixel(x1, y1)
	c.drawLine(ax, ay, bx, by)
}

// DrawTrajectory draws one player's (x, y) path through an operating point.
func (c *Canvas) DrawTrajectory(op *game.OperatingPoint, xIdx, yIdx int) {
	for k := 0; k+1 < len(op.Xs); k++ {
		c.DrawWorldLine(
			op.Xs[k].AtVec(xIdx), op.Xs[k].AtVec(yIdx),
			op.Xs[k+1].AtVec(xIdx), op.Xs[k+1].AtVec(yIdx))
	}
}

// DrawCircle approximates a world-coordinate circle with line segments.
func (c *Canvas) DrawCircle(cx, cy, r float64) {
	const segments = 32
	for s := 0; s < segments; s++ {
		a0 := 2 * math.Pi * float64(s) / segments
		a1 := 2 * math.Pi * float64(s+1) / segments
		c.DrawWorldLine(cx+r*math.Cos(a0), cy+r*math.Sin(a0), cx+r*math.Cos(a1), cy+r*math.Sin(a1))
	}
}

func (c *Canvas) drawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
