package build

import "github.com/sugarsyndicate/beltline/internal/grid"

// Mode selects what a drag session does to the cells it visits.
type Mode uint8

const (
	ModePlace Mode = iota
	ModeDelete
)

func (m Mode) String() string {
	if m == ModeDelete {
		return "delete"
	}
	return "place"
}

// MoveKind classifies one tracker advance.
type MoveKind uint8

const (
	MoveNone MoveKind = iota
	MoveStep
	MoveRetreat
	MoveBulkRetreat
)

// Move is the outcome of one Advance. For a step, From is the previous tail
// and To the new one. For retreats, To is the new tail and Removed lists the
// dropped cells newest first.
type Move struct {
	Kind    MoveKind
	From    grid.Cell
	To      grid.Cell
	Dir     grid.Direction
	Removed []grid.Cell
}

// Tracker turns a stream of pointer cells into a path of edge-adjacent
// cells with no duplicates. The start cell joins the path on the first real
// step, so a session that never moves is a tap.
type Tracker struct {
	mode    Mode
	active  bool
	moved   bool
	start   grid.Cell
	last    grid.Cell
	hasLast bool
	path    []grid.Cell
	index   map[grid.Cell]int
}

func NewTracker() *Tracker {
	return &Tracker{index: make(map[grid.Cell]int, 32)}
}

// Begin starts a session at c, dropping any previous state.
func (t *Tracker) Begin(c grid.Cell, mode Mode) {
	t.Reset()
	t.active = true
	t.mode = mode
	t.start = c
}

// Advance moves the tail one cell toward c along the dominant axis and
// reports what happened. Reaching c takes repeated calls when the pointer
// jumped more than one cell.
func (t *Tracker) Advance(c grid.Cell) Move {
	if !t.active {
		return Move{}
	}
	from := t.start
	if t.hasLast {
		from = t.last
	}
	if c == from {
		return Move{}
	}

	dir := dominantStep(from, c)
	next := from.Step(dir)
	t.moved = true
	if len(t.path) == 0 {
		t.push(t.start)
	}
	t.last = next
	t.hasLast = true

	n := len(t.path)
	if n >= 2 && next == t.path[n-2] {
		t.truncate(n - 2)
		return Move{Kind: MoveRetreat, From: from, To: next, Dir: dir, Removed: []grid.Cell{from}}
	}
	if i, ok := t.index[next]; ok {
		removed := t.truncate(i)
		return Move{Kind: MoveBulkRetreat, From: from, To: next, Dir: dir, Removed: removed}
	}
	t.push(next)
	return Move{Kind: MoveStep, From: from, To: next, Dir: dir}
}

// Reached reports whether the tail already sits on c.
func (t *Tracker) Reached(c grid.Cell) bool {
	if t.hasLast {
		return t.last == c
	}
	return t.start == c
}

// End closes the session. The path stays readable until the next Begin.
func (t *Tracker) End() { t.active = false }

// Reset clears all state.
func (t *Tracker) Reset() {
	t.active = false
	t.moved = false
	t.hasLast = false
	t.path = t.path[:0]
	clear(t.index)
}

func (t *Tracker) Active() bool     { return t.active }
func (t *Tracker) Moved() bool      { return t.moved }
func (t *Tracker) Mode() Mode       { return t.mode }
func (t *Tracker) Start() grid.Cell { return t.start }
func (t *Tracker) Len() int         { return len(t.path) }

// Last returns the last confirmed cell, if the session has moved.
func (t *Tracker) Last() (grid.Cell, bool) { return t.last, t.hasLast }

// Path returns a copy of the current path, start first.
func (t *Tracker) Path() []grid.Cell {
	out := make([]grid.Cell, len(t.path))
	copy(out, t.path)
	return out
}

func (t *Tracker) push(c grid.Cell) {
	t.index[c] = len(t.path)
	t.path = append(t.path, c)
}

// truncate keeps path[:i+1] and returns the dropped cells newest first.
func (t *Tracker) truncate(i int) []grid.Cell {
	removed := make([]grid.Cell, 0, len(t.path)-i-1)
	for j := len(t.path) - 1; j > i; j-- {
		removed = append(removed, t.path[j])
		delete(t.index, t.path[j])
	}
	t.path = t.path[:i+1]
	return removed
}

// dominantStep picks the unit step from a toward b on the axis with the
// larger displacement. Ties go horizontal.
func dominantStep(a, b grid.Cell) grid.Direction {
	dx := b.X - a.X
	dy := b.Y - a.Y
	adx, ady := dx, dy
	if adx < 0 {
		adx = -adx
	}
	if ady < 0 {
		ady = -ady
	}
	if adx >= ady {
		return grid.DirectionOf(sign(dx), 0)
	}
	return grid.DirectionOf(0, sign(dy))
}

func sign(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
