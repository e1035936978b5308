package build

import (
	"fmt"

	"github.com/sugarsyndicate/beltline/internal/grid"
)

// SegmentKind is the shape of a belt segment.
type SegmentKind uint8

const (
	StraightBelt SegmentKind = iota
	CurvedBelt
)

func (k SegmentKind) String() string {
	if k == CurvedBelt {
		return "curved"
	}
	return "straight"
}

// Unit maps a segment shape to the grid unit kind it commits as.
func (k SegmentKind) Unit() grid.UnitKind {
	if k == CurvedBelt {
		return grid.UnitCurve
	}
	return grid.UnitBelt
}

// Orientation is where a segment sends items and, for curves, the side they
// enter from.
type Orientation struct {
	Facing grid.Direction
	Entry  grid.Direction
}

// Resolve decides the shape of the segment at a cell from the travel
// direction into it and out of it. A straight pass (or the first cell, with
// no incoming direction) faces outgoing; a turn becomes a curve entered from
// the side opposite the incoming travel direction.
func Resolve(incoming, outgoing grid.Direction) (SegmentKind, Orientation, error) {
	if !outgoing.Valid() {
		return StraightBelt, Orientation{}, fmt.Errorf("outgoing %s: %w", outgoing, ErrNoOrientation)
	}
	if incoming == grid.None || incoming == outgoing {
		return StraightBelt, Orientation{Facing: outgoing}, nil
	}
	if incoming == outgoing.Opposite() {
		return StraightBelt, Orientation{}, fmt.Errorf("reversal %s->%s: %w", incoming, outgoing, ErrNoOrientation)
	}
	return CurvedBelt, Orientation{Facing: outgoing, Entry: incoming.Opposite()}, nil
}
