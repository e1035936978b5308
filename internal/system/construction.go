package system

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sugarsyndicate/beltline/internal/build"
	"github.com/sugarsyndicate/beltline/internal/core/event"
	coresys "github.com/sugarsyndicate/beltline/internal/core/system"
	"github.com/sugarsyndicate/beltline/internal/grid"
)

// ConstructionSystem owns pending blueprints. Each job holds its cells as a
// blueprint until its build time runs out, then becomes the finished unit.
// Phase 2 (Update).
type ConstructionSystem struct {
	grid    *grid.Map
	economy build.Economy
	sim     build.SimulationGateway
	graph   build.ConnectivityGraph
	bus     *event.Bus
	log     *zap.Logger

	nextID uint64
	jobs   map[uint64]*build.Job
	order  []uint64
	byCell map[grid.Cell]uint64
}

func NewConstructionSystem(g *grid.Map, economy build.Economy, sim build.SimulationGateway, graph build.ConnectivityGraph, bus *event.Bus, log *zap.Logger) *ConstructionSystem {
	return &ConstructionSystem{
		grid:    g,
		economy: economy,
		sim:     sim,
		graph:   graph,
		bus:     bus,
		log:     log,
		jobs:    make(map[uint64]*build.Job),
		byCell:  make(map[grid.Cell]uint64),
	}
}

func (s *ConstructionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

// CreateJob claims the job's cells with a blueprint.
func (s *ConstructionSystem) CreateJob(spec build.JobSpec) (*build.Job, error) {
	if len(spec.Cells) == 0 {
		return nil, fmt.Errorf("job for %s at %s: no cells", spec.Kind, spec.Anchor)
	}
	for _, c := range spec.Cells {
		if id, ok := s.byCell[c]; ok {
			return nil, fmt.Errorf("job for %s at %s: cell %s held by job %d: %w", spec.Kind, spec.Anchor, c, id, build.ErrCellBlocked)
		}
	}
	s.nextID++
	job := &build.Job{ID: s.nextID, Spec: spec, Remaining: spec.Duration}
	s.grid.SetCellContent(spec.Anchor, &grid.Content{
		Kind:      spec.Kind,
		Facing:    spec.Facing,
		Entry:     spec.Entry,
		Prefab:    spec.Prefab,
		Footprint: spec.Footprint,
		Blueprint: true,
		JobID:     job.ID,
	})
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	for _, c := range spec.Cells {
		s.byCell[c] = job.ID
	}
	s.log.Debug("job created", zap.Uint64("job", job.ID), zap.Stringer("kind", spec.Kind), zap.Stringer("anchor", spec.Anchor), zap.Duration("duration", spec.Duration))
	return job, nil
}

// CancelJob removes the job covering c and refunds what it cost.
func (s *ConstructionSystem) CancelJob(c grid.Cell) bool {
	id, ok := s.byCell[c]
	if !ok {
		return false
	}
	job := s.jobs[id]
	s.grid.DestroyEntity(s.grid.CellInfo(job.Spec.Anchor).Entity)
	s.forget(job)
	if job.Spec.Cost > 0 {
		s.economy.Refund(job.Spec.Cost)
	}
	event.Emit(s.bus, event.JobCancelled{JobID: job.ID, Kind: job.Spec.Kind, Cells: job.Spec.Cells, Refunded: job.Spec.Cost})
	s.log.Debug("job cancelled", zap.Uint64("job", job.ID), zap.Int("refund", job.Spec.Cost))
	return true
}

func (s *ConstructionSystem) Update(dt time.Duration) {
	var done []*build.Job
	for _, id := range s.order {
		job := s.jobs[id]
		job.Remaining -= dt
		if job.Remaining <= 0 {
			done = append(done, job)
		}
	}
	if len(done) == 0 {
		return
	}
	for _, job := range done {
		s.complete(job)
	}
	s.graph.MarkDirty()
}

// Jobs returns a snapshot of pending jobs in creation order.
func (s *ConstructionSystem) Jobs() []build.Job {
	out := make([]build.Job, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.jobs[id])
	}
	return out
}

func (s *ConstructionSystem) Pending() int { return len(s.jobs) }

func (s *ConstructionSystem) complete(job *build.Job) {
	spec := job.Spec
	s.forget(job)
	s.grid.SetCellContent(spec.Anchor, &grid.Content{
		Kind:      spec.Kind,
		Facing:    spec.Facing,
		Entry:     spec.Entry,
		Prefab:    spec.Prefab,
		Footprint: spec.Footprint,
		Paid:      spec.Cost,
		Priced:    true,
	})
	for _, c := range spec.Cells {
		s.sim.RegisterCell(c)
	}
	event.Emit(s.bus, event.JobCompleted{JobID: job.ID, Kind: spec.Kind, Cells: spec.Cells})
}

func (s *ConstructionSystem) forget(job *build.Job) {
	delete(s.jobs, job.ID)
	for _, c := range job.Spec.Cells {
		if s.byCell[c] == job.ID {
			delete(s.byCell, c)
		}
	}
	for i, id := range s.order {
		if id == job.ID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
