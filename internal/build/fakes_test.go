package build

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/sugarsyndicate/beltline/internal/grid"
)

const (
	beltCost    = 5
	curveCost   = 6
	machineCost = 50
)

type fakeEconomy struct {
	balance  int
	spent    int
	refunded int
}

func (e *fakeEconomy) TrySpend(amount int) bool {
	if amount > e.balance {
		return false
	}
	e.balance -= amount
	e.spent += amount
	return true
}

func (e *fakeEconomy) Refund(amount int) {
	e.balance += amount
	e.refunded += amount
}

type fakeSim struct {
	registered []grid.Cell
	suppressed int
	reseeded   int
}

func (s *fakeSim) RegisterCell(c grid.Cell) { s.registered = append(s.registered, c) }
func (s *fakeSim) SuppressNextPulls()       { s.suppressed++ }
func (s *fakeSim) Reseed()                  { s.reseeded++ }

type fakeGraph struct{ dirty int }

func (g *fakeGraph) MarkDirty() { g.dirty++ }

type fakePricing struct{}

func (fakePricing) BuildCost(kind grid.UnitKind) int {
	switch kind {
	case grid.UnitBelt:
		return beltCost
	case grid.UnitCurve:
		return curveCost
	case grid.UnitMachine:
		return machineCost
	case grid.UnitJunction:
		return 10
	case grid.UnitPipe:
		return 3
	}
	return 0
}

// RefundFor returns the full price.
func (fakePricing) RefundFor(_ grid.UnitKind, paid int) int { return paid }

func (fakePricing) Spec(kind grid.UnitKind) UnitSpec {
	if kind == grid.UnitMachine {
		return UnitSpec{Prefab: "smelter", Footprint: grid.Size{W: 2, H: 2}, BuildTime: 2 * time.Second}
	}
	return UnitSpec{Prefab: kind.String(), Footprint: grid.Size{W: 1, H: 1}, BuildTime: time.Second}
}

type fakeJobs struct {
	grid      *grid.Map
	eco       *fakeEconomy
	next      uint64
	byCell    map[grid.Cell]*Job
	created   int
	cancelled int
}

func (j *fakeJobs) CreateJob(spec JobSpec) (*Job, error) {
	j.next++
	job := &Job{ID: j.next, Spec: spec, Remaining: spec.Duration}
	j.grid.SetCellContent(spec.Anchor, &grid.Content{
		Kind:      spec.Kind,
		Facing:    spec.Facing,
		Entry:     spec.Entry,
		Footprint: spec.Footprint,
		Blueprint: true,
		JobID:     job.ID,
	})
	for _, c := range spec.Cells {
		j.byCell[c] = job
	}
	j.created++
	return job, nil
}

func (j *fakeJobs) CancelJob(c grid.Cell) bool {
	job, ok := j.byCell[c]
	if !ok {
		return false
	}
	j.grid.DestroyEntity(j.grid.CellInfo(job.Spec.Anchor).Entity)
	for _, fc := range job.Spec.Cells {
		delete(j.byCell, fc)
	}
	j.eco.Refund(job.Spec.Cost)
	j.cancelled++
	return true
}

type harness struct {
	grid    *grid.Map
	eco     *fakeEconomy
	sim     *fakeSim
	graph   *fakeGraph
	jobs    *fakeJobs
	arbiter *Arbiter
	placer  *Placer

	commits   []CommitReport
	deletions []Removal
	discarded []grid.Cell
	cancels   int
}

func newHarness(t *testing.T, balance int, opts Options, withJobs bool) *harness {
	t.Helper()
	log := zaptest.NewLogger(t)
	h := &harness{
		grid:    grid.NewMap(grid.Config{CellSize: 1}),
		eco:     &fakeEconomy{balance: balance},
		sim:     &fakeSim{},
		graph:   &fakeGraph{},
		arbiter: NewArbiter(log),
	}
	deps := h.deps()
	if withJobs {
		h.jobs = &fakeJobs{grid: h.grid, eco: h.eco, byCell: make(map[grid.Cell]*Job)}
		deps.Jobs = h.jobs
	}
	h.placer = NewPlacer(deps, opts, log)
	h.arbiter.Register(h.placer)
	return h
}

func (h *harness) deps() Deps {
	return Deps{
		Grid:    h.grid,
		Economy: h.eco,
		Sim:     h.sim,
		Graph:   h.graph,
		Pricing: fakePricing{},
		Arbiter: h.arbiter,
		Hooks: Hooks{
			OnCommitted: func(r CommitReport) { h.commits = append(h.commits, r) },
			OnDeleted:   func(r Removal) { h.deletions = append(h.deletions, r) },
			OnDiscarded: func(cells []grid.Cell, _ int) { h.discarded = append(h.discarded, cells...) },
			OnCancelled: func(string, bool) { h.cancels++ },
		},
	}
}

// drag presses at the first cell, moves through the rest and releases.
func (h *harness) drag(cells ...grid.Cell) bool {
	h.placer.OnPointerDown(at(cells[0]))
	for _, c := range cells[1:] {
		h.placer.OnPointerMove(at(c))
	}
	return h.placer.OnPointerUp()
}

func (h *harness) tap(c grid.Cell) bool {
	h.placer.OnPointerDown(at(c))
	return h.placer.OnPointerUp()
}

func at(c grid.Cell) grid.Vec {
	return grid.Vec{X: float64(c.X) + 0.5, Y: float64(c.Y) + 0.5}
}

func cell(x, y int32) grid.Cell { return grid.Cell{X: x, Y: y} }
