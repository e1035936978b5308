package build

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sugarsyndicate/beltline/internal/grid"
)

// Placement is one unit to make permanent.
type Placement struct {
	Anchor grid.Cell
	Kind   grid.UnitKind
	Facing grid.Direction
	Entry  grid.Direction
	// Reserved marks a placement whose cost was taken up front; Prepaid is
	// that amount. Commit never refunds a reservation, the caller does.
	Reserved bool
	Prepaid  int
	// Deferred queues registration until Flush.
	Deferred bool
	Owner    Tool
}

// Committed describes a successful commit.
type Committed struct {
	Cells     []grid.Cell
	Paid      int
	Blueprint bool
	JobID     uint64
}

// CommitProtocol turns placements into finished units or construction jobs
// and keeps the simulation informed. Registrations made during a drag are
// batched and flushed once.
type CommitProtocol struct {
	grid       Grid
	economy    Economy
	sim        SimulationGateway
	graph      ConnectivityGraph
	jobs       JobRunner
	pricing    Pricing
	arbiter    ToolArbiter
	blueprints bool
	log        *zap.Logger

	pending    []grid.Cell
	pendingSet map[grid.Cell]struct{}
}

func NewCommitProtocol(deps Deps, blueprints bool, log *zap.Logger) *CommitProtocol {
	return &CommitProtocol{
		grid:       deps.Grid,
		economy:    deps.Economy,
		sim:        deps.Sim,
		graph:      deps.Graph,
		jobs:       deps.Jobs,
		pricing:    deps.Pricing,
		arbiter:    deps.Arbiter,
		blueprints: blueprints && deps.Jobs != nil,
		log:        log,
		pendingSet: make(map[grid.Cell]struct{}),
	}
}

// Cells lists the cells a unit of kind anchored at c covers.
func (p *CommitProtocol) Cells(kind grid.UnitKind, c grid.Cell) []grid.Cell {
	if kind == grid.UnitMachine || kind == grid.UnitJunction {
		return p.pricing.Spec(kind).Footprint.Cells(c)
	}
	return []grid.Cell{c}
}

// Blocked re-validates every cell at commit time.
func (p *CommitProtocol) Blocked(cells []grid.Cell) bool {
	for _, c := range cells {
		if Blocked(p.grid.CellInfo(c)) {
			return true
		}
	}
	return false
}

// Commit makes pl permanent. On error nothing was written and any cost this
// call took has been returned.
func (p *CommitProtocol) Commit(pl Placement) (Committed, error) {
	cells := p.Cells(pl.Kind, pl.Anchor)
	if p.alreadyThere(pl) {
		return Committed{}, fmt.Errorf("commit %s at %s: %w", pl.Kind, pl.Anchor, ErrAlreadyCommitted)
	}
	if p.Blocked(cells) {
		return Committed{}, fmt.Errorf("commit %s at %s: %w", pl.Kind, pl.Anchor, ErrCellBlocked)
	}

	paid := pl.Prepaid
	if !pl.Reserved {
		paid = p.pricing.BuildCost(pl.Kind)
		if !p.economy.TrySpend(paid) {
			return Committed{}, fmt.Errorf("commit %s at %s, cost %d: %w", pl.Kind, pl.Anchor, paid, ErrInsufficientFunds)
		}
	}

	spec := p.pricing.Spec(pl.Kind)
	if p.blueprints {
		job, err := p.jobs.CreateJob(JobSpec{
			Anchor:    pl.Anchor,
			Cells:     cells,
			Kind:      pl.Kind,
			Facing:    pl.Facing,
			Entry:     pl.Entry,
			Footprint: spec.Footprint,
			Prefab:    spec.Prefab,
			Cost:      paid,
			Duration:  spec.BuildTime,
		})
		if err != nil {
			if !pl.Reserved {
				p.economy.Refund(paid)
			}
			return Committed{}, fmt.Errorf("create job for %s at %s: %w", pl.Kind, pl.Anchor, err)
		}
		// The runner registers cells when the job completes.
		return Committed{Cells: cells, Paid: paid, Blueprint: true, JobID: job.ID}, nil
	}

	p.grid.SetCellContent(pl.Anchor, &grid.Content{
		Kind:      pl.Kind,
		Facing:    pl.Facing,
		Entry:     pl.Entry,
		Prefab:    spec.Prefab,
		Footprint: spec.Footprint,
		Paid:      paid,
		Priced:    true,
	})
	p.register(cells, pl)
	return Committed{Cells: cells, Paid: paid}, nil
}

func (p *CommitProtocol) register(cells []grid.Cell, pl Placement) {
	deferred := pl.Deferred
	if !deferred && p.arbiter != nil {
		if owner := p.arbiter.ActiveOwner(); owner != nil && owner != pl.Owner {
			deferred = true
		}
	}
	if deferred {
		for _, c := range cells {
			if _, ok := p.pendingSet[c]; ok {
				continue
			}
			p.pendingSet[c] = struct{}{}
			p.pending = append(p.pending, c)
		}
		return
	}
	for _, c := range cells {
		p.sim.RegisterCell(c)
	}
	p.graph.MarkDirty()
}

// Pending returns the number of queued registrations.
func (p *CommitProtocol) Pending() int { return len(p.pending) }

// Flush registers every queued cell, marks connectivity dirty once and asks
// the simulation to skip its next pulls. It returns the number of cells
// registered.
func (p *CommitProtocol) Flush() int {
	n := len(p.pending)
	if n == 0 {
		return 0
	}
	for _, c := range p.pending {
		p.sim.RegisterCell(c)
	}
	p.graph.MarkDirty()
	p.sim.SuppressNextPulls()
	p.pending = p.pending[:0]
	clear(p.pendingSet)
	p.log.Debug("flushed registrations", zap.Int("cells", n))
	return n
}

// alreadyThere reports a finished unit identical to pl at its anchor.
func (p *CommitProtocol) alreadyThere(pl Placement) bool {
	var (
		u  grid.Unit
		ok bool
	)
	switch pl.Kind {
	case grid.UnitBelt, grid.UnitCurve:
		u, ok = p.grid.BeltAt(pl.Anchor)
	case grid.UnitMachine:
		u, ok = p.grid.MachineAt(pl.Anchor)
	case grid.UnitPipe:
		u, ok = p.grid.PipeAt(pl.Anchor)
	case grid.UnitJunction:
		u, ok = p.grid.JunctionAt(pl.Anchor)
	}
	if !ok || u.Kind != pl.Kind || u.Anchor != pl.Anchor {
		return false
	}
	switch pl.Kind {
	case grid.UnitJunction:
		return true
	case grid.UnitCurve:
		return u.Facing == pl.Facing && u.Entry == pl.Entry
	}
	return u.Facing == pl.Facing
}
