package event

import (
	"github.com/sugarsyndicate/beltline/internal/grid"
)

// UnitsCommitted is emitted once per commit batch (a tap, a drag release or a
// stamp). Blueprint is true when the cells received construction jobs rather
// than finished units.
type UnitsCommitted struct {
	Kind      grid.UnitKind
	Cells     []grid.Cell
	Cost      int
	Blueprint bool
}

// UnitDeleted is emitted for every entity removed by the deletion engine.
type UnitDeleted struct {
	Kind   grid.UnitKind
	Cells  []grid.Cell
	Refund int
}

// GhostsDiscarded reports ghosts dropped at commit time (blocked or unpaid).
type GhostsDiscarded struct {
	Cells    []grid.Cell
	Refunded int
}

// SessionCancelled is emitted when a drag is torn down without committing.
type SessionCancelled struct {
	Tool   string
	Delete bool
}

type JobCompleted struct {
	JobID uint64
	Kind  grid.UnitKind
	Cells []grid.Cell
}

type JobCancelled struct {
	JobID    uint64
	Kind     grid.UnitKind
	Cells    []grid.Cell
	Refunded int
}

// BalanceChanged carries the wallet balance after a spend or refund.
type BalanceChanged struct {
	Balance int64
}
