package build

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sugarsyndicate/beltline/internal/grid"
)

// Removal describes one unit taken off the grid.
type Removal struct {
	Kind    grid.UnitKind
	Anchor  grid.Cell
	Cells   []grid.Cell
	Refund  int
	Logical bool
}

type lookupStrategy struct {
	kind grid.UnitKind
	find func(g Grid, c grid.Cell) (grid.Unit, bool)
}

// deletePrecedence is the order deletion resolves a cell in. The first
// match wins, so a cell holding both a belt and a logical claim deletes the
// belt.
var deletePrecedence = []lookupStrategy{
	{grid.UnitBelt, func(g Grid, c grid.Cell) (grid.Unit, bool) { return g.BeltAt(c) }},
	{grid.UnitMachine, func(g Grid, c grid.Cell) (grid.Unit, bool) { return g.MachineAt(c) }},
	{grid.UnitPipe, func(g Grid, c grid.Cell) (grid.Unit, bool) { return g.PipeAt(c) }},
	{grid.UnitJunction, func(g Grid, c grid.Cell) (grid.Unit, bool) { return g.JunctionAt(c) }},
	{grid.UnitNone, logicalAt},
}

// logicalAt matches any non-blueprint occupant the typed lookups missed.
func logicalAt(g Grid, c grid.Cell) (grid.Unit, bool) {
	info := g.CellInfo(c)
	if info.Occupied == grid.UnitNone || info.Blueprint {
		return grid.Unit{}, false
	}
	return grid.Unit{Entity: info.Entity, Kind: info.Occupied, Anchor: c, Cells: []grid.Cell{c}}, true
}

// DeletionEngine marks cells during a delete drag and removes what they
// hold on commit.
type DeletionEngine struct {
	grid           Grid
	economy        Economy
	sim            SimulationGateway
	graph          ConnectivityGraph
	jobs           JobRunner
	pricing        Pricing
	hooks          Hooks
	refundOnDelete bool
	log            *zap.Logger

	marks  []grid.Cell
	marked map[grid.Cell]struct{}
}

func NewDeletionEngine(deps Deps, refundOnDelete bool, log *zap.Logger) *DeletionEngine {
	return &DeletionEngine{
		grid:           deps.Grid,
		economy:        deps.Economy,
		sim:            deps.Sim,
		graph:          deps.Graph,
		jobs:           deps.Jobs,
		pricing:        deps.Pricing,
		hooks:          deps.Hooks,
		refundOnDelete: refundOnDelete,
		log:            log,
		marked:         make(map[grid.Cell]struct{}),
	}
}

// Mark adds c to the pending set. A blueprint in c is cancelled on the spot
// and never marked; an empty cell is refused.
func (d *DeletionEngine) Mark(c grid.Cell) error {
	if _, ok := d.marked[c]; ok {
		return fmt.Errorf("mark %s: %w", c, ErrAlreadyMarked)
	}
	if d.cancelBlueprint(c) {
		return nil
	}
	if _, ok := d.resolve(c); !ok {
		return fmt.Errorf("mark %s: %w", c, ErrNothingToDelete)
	}
	d.marked[c] = struct{}{}
	d.marks = append(d.marks, c)
	return nil
}

// Unmark drops c from the pending set.
func (d *DeletionEngine) Unmark(c grid.Cell) bool {
	if _, ok := d.marked[c]; !ok {
		return false
	}
	delete(d.marked, c)
	for i, m := range d.marks {
		if m == c {
			d.marks = append(d.marks[:i], d.marks[i+1:]...)
			break
		}
	}
	return true
}

func (d *DeletionEngine) IsMarked(c grid.Cell) bool {
	_, ok := d.marked[c]
	return ok
}

// Marks returns the pending cells in marking order.
func (d *DeletionEngine) Marks() []grid.Cell {
	out := make([]grid.Cell, len(d.marks))
	copy(out, d.marks)
	return out
}

// Clear drops every mark without touching the grid.
func (d *DeletionEngine) Clear() {
	d.marks = d.marks[:0]
	clear(d.marked)
}

// Commit removes whatever each marked cell holds now, then clears the marks.
// Cells emptied since marking are skipped. Connectivity and the simulation
// are refreshed once for the batch.
func (d *DeletionEngine) Commit() []Removal {
	var removals []Removal
	for _, c := range d.marks {
		if r, ok := d.remove(c); ok {
			removals = append(removals, r)
		}
	}
	d.Clear()
	if len(removals) > 0 {
		d.graph.MarkDirty()
		d.sim.Reseed()
	}
	return removals
}

// DeleteImmediate handles a delete-mode tap.
func (d *DeletionEngine) DeleteImmediate(c grid.Cell) bool {
	if d.cancelBlueprint(c) {
		return true
	}
	if _, ok := d.remove(c); !ok {
		d.log.Debug("delete refused", zap.Stringer("cell", c), zap.Error(ErrNothingToDelete))
		return false
	}
	d.graph.MarkDirty()
	d.sim.Reseed()
	return true
}

func (d *DeletionEngine) cancelBlueprint(c grid.Cell) bool {
	if d.jobs == nil || !d.grid.CellInfo(c).Blueprint {
		return false
	}
	refunded := d.jobs.CancelJob(c)
	d.log.Debug("blueprint cancelled", zap.Stringer("cell", c), zap.Bool("refunded", refunded))
	return true
}

func (d *DeletionEngine) resolve(c grid.Cell) (Removal, bool) {
	for _, s := range deletePrecedence {
		u, ok := s.find(d.grid, c)
		if !ok {
			continue
		}
		return Removal{
			Kind:    u.Kind,
			Anchor:  u.Anchor,
			Cells:   u.Cells,
			Logical: s.kind == grid.UnitNone && u.Entity == 0,
		}, true
	}
	return Removal{}, false
}

func (d *DeletionEngine) remove(c grid.Cell) (Removal, bool) {
	r, ok := d.resolve(c)
	if !ok {
		return Removal{}, false
	}
	info := d.grid.CellInfo(c)
	if d.refundOnDelete && !r.Logical {
		// Refund against what was charged; units the builder never priced
		// fall back to the current build cost.
		paid := info.Paid
		if !info.Priced {
			paid = d.pricing.BuildCost(r.Kind)
		}
		r.Refund = d.pricing.RefundFor(r.Kind, paid)
		if r.Refund > 0 {
			d.economy.Refund(r.Refund)
		}
	}
	if info.Entity != 0 {
		d.grid.DestroyEntity(info.Entity)
	}
	for _, fc := range r.Cells {
		d.grid.ClearCell(fc)
		d.grid.ClearItems(fc)
		d.sim.RegisterCell(fc)
	}
	d.hooks.deleted(r)
	d.log.Debug("unit removed", zap.Stringer("kind", r.Kind), zap.Stringer("anchor", r.Anchor), zap.Int("refund", r.Refund))
	return r, true
}
