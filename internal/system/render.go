package system

import (
	"slices"
	"time"

	"github.com/sugarsyndicate/beltline/internal/build"
	coresys "github.com/sugarsyndicate/beltline/internal/core/system"
	"github.com/sugarsyndicate/beltline/internal/grid"
)

// FrameCell is one occupied cell as the renderer draws it.
type FrameCell struct {
	Cell      grid.Cell
	Kind      grid.UnitKind
	Facing    grid.Direction
	Blueprint bool
	Items     int
}

// Frame is everything a front-end needs for one redraw.
type Frame struct {
	Cells     []FrameCell
	Ghosts    []build.GhostView
	Marks     []grid.Cell
	Jobs      []build.Job
	Mode      build.Mode
	Rotation  grid.Direction
	Tool      string
	Active    bool
	Balance   int64
	Chains    int
	Delivered int
	Tick      uint64
}

// Renderer draws frames. Implementations must not block the game loop.
type Renderer interface {
	Render(f Frame)
}

// RenderSystem snapshots the build state for the front-end. Phase 4 (Output).
type RenderSystem struct {
	grid     *grid.Map
	placer   *build.Placer
	jobs     *ConstructionSystem
	sim      *SimulationSystem
	input    *InputSystem
	wallet   Balancer
	renderer Renderer
	tick     uint64
}

func NewRenderSystem(g *grid.Map, placer *build.Placer, jobs *ConstructionSystem, sim *SimulationSystem, input *InputSystem, wallet Balancer, renderer Renderer) *RenderSystem {
	return &RenderSystem{
		grid:     g,
		placer:   placer,
		jobs:     jobs,
		sim:      sim,
		input:    input,
		wallet:   wallet,
		renderer: renderer,
	}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *RenderSystem) Update(_ time.Duration) {
	s.tick++
	s.renderer.Render(s.Snapshot())
}

// Snapshot builds the current frame. Cells are sorted bottom row first.
func (s *RenderSystem) Snapshot() Frame {
	f := Frame{
		Ghosts:   s.placer.Ghosts(),
		Marks:    s.placer.Marks(),
		Mode:     s.placer.Mode(),
		Rotation: s.placer.Rotation(),
		Active:   s.placer.Active(),
		Tick:     s.tick,
	}
	s.grid.Each(func(c grid.Cell, info grid.CellInfo) {
		fc := FrameCell{Cell: c, Kind: info.Occupied, Blueprint: info.Blueprint, Items: info.Items}
		if u, ok := s.grid.BeltAt(c); ok {
			fc.Facing = u.Facing
		}
		f.Cells = append(f.Cells, fc)
	})
	slices.SortFunc(f.Cells, func(a, b FrameCell) int { return compareCells(a.Cell, b.Cell) })
	if s.jobs != nil {
		f.Jobs = s.jobs.Jobs()
	}
	if s.sim != nil {
		f.Chains = len(s.sim.Chains())
		f.Delivered = s.sim.Delivered()
	}
	if s.input != nil {
		f.Tool = s.input.ActiveTool()
	}
	if s.wallet != nil {
		f.Balance = s.wallet.Balance()
	}
	return f
}
