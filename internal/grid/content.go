package grid

import "github.com/sugarsyndicate/beltline/internal/core/ecs"

// Content describes what SetCellContent writes into a cell. Footprint units
// (junctions, machines) are written once at their anchor and occupy every
// footprint cell.
type Content struct {
	Kind      UnitKind
	Facing    Direction
	Entry     Direction // entry side of a curved belt
	Prefab    string
	Footprint Size
	Blueprint bool   // pending construction, not a finished unit
	JobID     uint64 // set for blueprints

	// Paid is what the builder charged for the unit. Priced is false for
	// units written by anything else, such as a loaded map.
	Paid   int
	Priced bool
}

// CellInfo is the read-only view of one cell.
type CellInfo struct {
	Occupied    UnitKind
	Blueprint   bool
	Broken      bool
	OutOfBounds bool
	Entity      ecs.EntityID
	Anchor      Cell
	JobID       uint64
	Items       int
	Paid        int
	Priced      bool
}

// Empty reports a free, in-bounds cell.
func (i CellInfo) Empty() bool { return i.Occupied == UnitNone && !i.OutOfBounds }

// Unit is the result of a typed lookup: the entity that owns a cell and every
// cell it covers.
type Unit struct {
	Entity ecs.EntityID
	Kind   UnitKind
	Anchor Cell
	Cells  []Cell
	Facing Direction
	Entry  Direction
	Prefab string
}

// Component types stored per entity.

type Belt struct {
	Cell   Cell
	Facing Direction
	Entry  Direction
	Curved bool
}

type Machine struct {
	Anchor Cell
	Size   Size
	Facing Direction
	Prefab string
}

type Pipe struct {
	Cell   Cell
	Facing Direction
}

type Junction struct {
	Anchor Cell
	Size   Size
	Prefab string
}

type Blueprint struct {
	Anchor Cell
	Kind   UnitKind
	Facing Direction
	Entry  Direction
	JobID  uint64
}
