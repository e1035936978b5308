package system

import (
	"cmp"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/sugarsyndicate/beltline/internal/core/ecs"
	coresys "github.com/sugarsyndicate/beltline/internal/core/system"
	"github.com/sugarsyndicate/beltline/internal/grid"
)

// SimulationSystem is the item simulation behind the builder's gateway and
// connectivity contracts. Belts form chains; each tick every registered belt
// pulls one item from the cell feeding it. Chain heads fed by a machine or
// junction are sources that receive a fresh item every seedEvery ticks.
// Phase 3 (PostUpdate).
type SimulationSystem struct {
	grid          *grid.Map
	suppressTicks int
	seedEvery     int
	log           *zap.Logger

	registered map[grid.Cell]struct{}
	suppress   int
	dirty      bool
	reseed     bool
	tick       int

	chains    [][]grid.Cell
	sources   []grid.Cell
	delivered int
	rebuilds  int
}

func NewSimulationSystem(g *grid.Map, suppressTicks, seedEvery int, log *zap.Logger) *SimulationSystem {
	if seedEvery <= 0 {
		seedEvery = 1
	}
	return &SimulationSystem{
		grid:          g,
		suppressTicks: suppressTicks,
		seedEvery:     seedEvery,
		log:           log,
		registered:    make(map[grid.Cell]struct{}, 256),
	}
}

func (s *SimulationSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// RegisterCell tells the simulation c changed. Occupied cells join the
// simulated set, emptied ones leave it.
func (s *SimulationSystem) RegisterCell(c grid.Cell) {
	if s.grid.CellInfo(c).Occupied == grid.UnitNone {
		delete(s.registered, c)
		return
	}
	s.registered[c] = struct{}{}
}

func (s *SimulationSystem) SuppressNextPulls() {
	if s.suppressTicks > s.suppress {
		s.suppress = s.suppressTicks
	}
}

func (s *SimulationSystem) Reseed() { s.reseed = true }

func (s *SimulationSystem) MarkDirty() { s.dirty = true }

func (s *SimulationSystem) Update(_ time.Duration) {
	s.tick++
	if s.dirty || s.reseed {
		s.rebuild()
	}
	if s.suppress > 0 {
		s.suppress--
		return
	}
	s.pull()
	if s.tick%s.seedEvery == 0 {
		s.seed()
	}
}

func (s *SimulationSystem) Registered(c grid.Cell) bool {
	_, ok := s.registered[c]
	return ok
}

func (s *SimulationSystem) Chains() [][]grid.Cell { return s.chains }

func (s *SimulationSystem) Sources() []grid.Cell { return s.sources }

// Delivered counts items handed from a chain tail into a machine.
func (s *SimulationSystem) Delivered() int { return s.delivered }

func (s *SimulationSystem) Rebuilds() int { return s.rebuilds }

// Suppressed reports whether the next update skips pulls.
func (s *SimulationSystem) Suppressed() bool { return s.suppress > 0 }

// rebuild recomputes belt chains by following each belt's facing to the
// next belt that accepts items from that side.
func (s *SimulationSystem) rebuild() {
	s.dirty = false
	s.reseed = false
	s.rebuilds++

	belts := map[grid.Cell]grid.Belt{}
	s.grid.Belts().Each(func(id ecs.EntityID, b *grid.Belt) {
		// Destroyed belts keep their component until cleanup runs.
		if s.grid.CellInfo(b.Cell).Entity != id {
			return
		}
		belts[b.Cell] = *b
	})

	next := make(map[grid.Cell]grid.Cell, len(belts))
	hasPrev := make(map[grid.Cell]bool, len(belts))
	for c, b := range belts {
		n := c.Step(b.Facing)
		nb, ok := belts[n]
		if !ok || !accepts(nb, b.Facing) {
			continue
		}
		next[c] = n
		hasPrev[n] = true
	}

	cells := make([]grid.Cell, 0, len(belts))
	for c := range belts {
		cells = append(cells, c)
	}
	slices.SortFunc(cells, compareCells)

	s.chains = s.chains[:0]
	s.sources = s.sources[:0]
	visited := make(map[grid.Cell]bool, len(belts))
	walk := func(head grid.Cell) []grid.Cell {
		var chain []grid.Cell
		for c, ok := head, true; ok && !visited[c]; c, ok = next[c] {
			visited[c] = true
			chain = append(chain, c)
		}
		return chain
	}
	for _, c := range cells {
		if hasPrev[c] {
			continue
		}
		s.chains = append(s.chains, walk(c))
		if s.fedByProducer(c, belts[c]) {
			s.sources = append(s.sources, c)
		}
	}
	// Whatever is left sits on loops.
	for _, c := range cells {
		if !visited[c] {
			s.chains = append(s.chains, walk(c))
		}
	}
	s.log.Debug("connectivity rebuilt", zap.Int("belts", len(belts)), zap.Int("chains", len(s.chains)), zap.Int("sources", len(s.sources)))
}

// pull moves items one cell forward along every chain, tail first so an item
// advances at most one cell per tick.
func (s *SimulationSystem) pull() {
	for _, chain := range s.chains {
		last := chain[len(chain)-1]
		if s.grid.Items(last) > 0 && s.Registered(last) {
			b, _ := s.grid.BeltAt(last)
			if _, ok := s.grid.MachineAt(last.Step(b.Facing)); ok {
				s.grid.ClearItems(last)
				s.delivered++
			}
		}
		for i := len(chain) - 2; i >= 0; i-- {
			from, to := chain[i], chain[i+1]
			if s.grid.Items(from) == 0 || s.grid.Items(to) > 0 || !s.Registered(to) {
				continue
			}
			s.grid.ClearItems(from)
			s.grid.AddItems(to, 1)
		}
	}
}

func (s *SimulationSystem) seed() {
	for _, c := range s.sources {
		if s.Registered(c) && s.grid.Items(c) == 0 {
			s.grid.AddItems(c, 1)
		}
	}
}

func (s *SimulationSystem) fedByProducer(c grid.Cell, b grid.Belt) bool {
	from := b.Facing.Opposite()
	if b.Curved {
		from = b.Entry
	}
	info := s.grid.CellInfo(c.Step(from))
	return !info.Blueprint && (info.Occupied == grid.UnitMachine || info.Occupied == grid.UnitJunction)
}

// accepts reports whether belt b takes items travelling in direction d.
// Curves only take items from their entry side; straight belts take them
// from behind or from either flank.
func accepts(b grid.Belt, d grid.Direction) bool {
	if b.Curved {
		return b.Entry == d.Opposite()
	}
	return b.Facing != d.Opposite()
}

func compareCells(a, b grid.Cell) int {
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}
