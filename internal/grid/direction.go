package grid

import (
	"fmt"
	"strings"
)

// Direction is a cardinal transport direction. Up is +Y and Right is +X.
type Direction uint8

const (
	None Direction = iota
	Up
	Right
	Down
	Left
)

var (
	dirDX = [5]int32{0, 0, 1, 0, -1}
	dirDY = [5]int32{0, 1, 0, -1, 0}
)

// Delta returns the unit step for d.
func (d Direction) Delta() (int32, int32) {
	if d > Left {
		return 0, 0
	}
	return dirDX[d], dirDY[d]
}

// Opposite is total: None maps to itself.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return None
}

// Rotate turns d a quarter clockwise. None rotates to Up so a fresh cursor
// always gets a usable facing.
func (d Direction) Rotate() Direction {
	switch d {
	case Up:
		return Right
	case Right:
		return Down
	case Down:
		return Left
	}
	return Up
}

// Valid reports whether d can carry items.
func (d Direction) Valid() bool { return d >= Up && d <= Left }

// Horizontal reports whether d lies on the X axis.
func (d Direction) Horizontal() bool { return d == Left || d == Right }

// DirectionOf maps a unit step to its direction, or None for anything else.
func DirectionOf(dx, dy int32) Direction {
	switch {
	case dx == 0 && dy == 1:
		return Up
	case dx == 1 && dy == 0:
		return Right
	case dx == 0 && dy == -1:
		return Down
	case dx == -1 && dy == 0:
		return Left
	}
	return None
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	}
	return "none"
}

// ParseDirection accepts the names produced by String.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "north":
		return Up, nil
	case "right", "east":
		return Right, nil
	case "down", "south":
		return Down, nil
	case "left", "west":
		return Left, nil
	case "", "none":
		return None, nil
	}
	return None, fmt.Errorf("unknown direction %q", s)
}

// UnmarshalText lets config files name directions.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
