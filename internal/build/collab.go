package build

import (
	"time"

	"github.com/sugarsyndicate/beltline/internal/core/ecs"
	"github.com/sugarsyndicate/beltline/internal/grid"
)

// Lookup finds the finished unit of one kind that owns a cell.
type Lookup interface {
	BeltAt(c grid.Cell) (grid.Unit, bool)
	MachineAt(c grid.Cell) (grid.Unit, bool)
	PipeAt(c grid.Cell) (grid.Unit, bool)
	JunctionAt(c grid.Cell) (grid.Unit, bool)
}

// Grid is the shared cell store. The builder never keeps a unit past the
// moment it hands it to SetCellContent.
type Grid interface {
	Lookup
	WorldToCell(p grid.Vec) grid.Cell
	CellToWorld(c grid.Cell, z float64) grid.Vec3
	CellInfo(c grid.Cell) grid.CellInfo
	SetCellContent(c grid.Cell, content *grid.Content) ecs.EntityID
	ClearCell(c grid.Cell)
	ClearItems(c grid.Cell)
	DestroyEntity(id ecs.EntityID)
}

type Economy interface {
	TrySpend(amount int) bool
	Refund(amount int)
}

type SimulationGateway interface {
	// RegisterCell is idempotent.
	RegisterCell(c grid.Cell)
	SuppressNextPulls()
	Reseed()
}

type ConnectivityGraph interface {
	MarkDirty()
}

// JobSpec is everything a construction job needs to finish a unit later.
type JobSpec struct {
	Anchor    grid.Cell
	Cells     []grid.Cell
	Kind      grid.UnitKind
	Facing    grid.Direction
	Entry     grid.Direction
	Footprint grid.Size
	Prefab    string
	Cost      int
	Duration  time.Duration
}

// Job is a pending blueprint owned by the job runner.
type Job struct {
	ID        uint64
	Spec      JobSpec
	Remaining time.Duration
}

type JobRunner interface {
	CreateJob(spec JobSpec) (*Job, error)
	// CancelJob cancels the job covering c and reports whether its cost was
	// refunded.
	CancelJob(c grid.Cell) bool
}

// UnitSpec is the static description of a buildable kind.
type UnitSpec struct {
	Prefab    string
	Footprint grid.Size
	BuildTime time.Duration
}

type Pricing interface {
	BuildCost(kind grid.UnitKind) int
	RefundFor(kind grid.UnitKind, paid int) int
	Spec(kind grid.UnitKind) UnitSpec
}

// Tool is a builder tool taking part in cooperative mutual exclusion.
type Tool interface {
	Name() string
	// Stop tears down any active session and disarms the tool.
	Stop()
}

type ToolArbiter interface {
	RequestExclusiveSession(t Tool) bool
	Release(t Tool)
	StopOtherTools(t Tool)
	ActiveOwner() Tool
}

// Deps are the collaborators injected by the composition root. Jobs and
// Arbiter may be nil.
type Deps struct {
	Grid    Grid
	Economy Economy
	Sim     SimulationGateway
	Graph   ConnectivityGraph
	Jobs    JobRunner
	Pricing Pricing
	Arbiter ToolArbiter
	Hooks   Hooks
}

// Hooks observe builder outcomes. Every field is optional.
type Hooks struct {
	OnCommitted func(CommitReport)
	OnDeleted   func(Removal)
	OnDiscarded func(cells []grid.Cell, refunded int)
	OnCancelled func(tool string, deleteMode bool)
}

// CommitReport summarises one commit batch.
type CommitReport struct {
	Tool      string
	Kind      grid.UnitKind
	Cells     []grid.Cell
	Cost      int
	Blueprint bool
}

func (h Hooks) committed(r CommitReport) {
	if h.OnCommitted != nil && len(r.Cells) > 0 {
		h.OnCommitted(r)
	}
}

func (h Hooks) deleted(r Removal) {
	if h.OnDeleted != nil {
		h.OnDeleted(r)
	}
}

func (h Hooks) discarded(cells []grid.Cell, refunded int) {
	if h.OnDiscarded != nil && len(cells) > 0 {
		h.OnDiscarded(cells, refunded)
	}
}

func (h Hooks) cancelled(tool string, deleteMode bool) {
	if h.OnCancelled != nil {
		h.OnCancelled(tool, deleteMode)
	}
}
