package grid

import (
	"fmt"
	"math"
)

// Cell is an integer grid coordinate. Cells are compared by value and used
// directly as map keys.
type Cell struct {
	X int32
	Y int32
}

func (c Cell) Add(dx, dy int32) Cell { return Cell{X: c.X + dx, Y: c.Y + dy} }

// Step returns the neighbour of c in direction d; c itself for None.
func (c Cell) Step(d Direction) Cell {
	dx, dy := d.Delta()
	return c.Add(dx, dy)
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Manhattan returns |dx|+|dy| between two cells.
func Manhattan(a, b Cell) int {
	dx := int(a.X - b.X)
	dy := int(a.Y - b.Y)
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Vec is a world-space position on the build plane.
type Vec struct {
	X float64
	Y float64
}

// Vec3 is a world-space position with height, as returned by CellToWorld.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Size is a footprint in cells.
type Size struct {
	W int32 `yaml:"w"`
	H int32 `yaml:"h"`
}

// Cells lists every cell covered by a footprint anchored at its bottom-left
// cell. A zero size covers just the anchor.
func (s Size) Cells(anchor Cell) []Cell {
	w, h := s.W, s.H
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	out := make([]Cell, 0, w*h)
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			out = append(out, anchor.Add(x, y))
		}
	}
	return out
}

func floorDiv(v, size float64) int32 {
	return int32(math.Floor(v / size))
}
