package grid

import "github.com/sugarsyndicate/beltline/internal/core/ecs"

// Config describes the build plane. Width/Height of zero leave that axis
// unbounded.
type Config struct {
	CellSize float64
	Origin   Vec
	Width    int32
	Height   int32
}

type slot struct {
	kind      UnitKind
	entity    ecs.EntityID
	anchor    Cell
	blueprint bool
	broken    bool
	jobID     uint64
	paid      int
	priced    bool
}

// Map is the in-memory grid: logical cell contents plus one ECS entity per
// placed unit. Accessed only from the game loop goroutine, no locks.
type Map struct {
	cfg   Config
	world *ecs.World

	belts      *ecs.Store[Belt]
	machines   *ecs.Store[Machine]
	pipes      *ecs.Store[Pipe]
	junctions  *ecs.Store[Junction]
	blueprints *ecs.Store[Blueprint]

	cells      map[Cell]*slot
	footprints map[ecs.EntityID][]Cell
	items      map[Cell]int
}

func NewMap(cfg Config) *Map {
	if cfg.CellSize <= 0 {
		cfg.CellSize = 1
	}
	w := ecs.NewWorld()
	m := &Map{
		cfg:        cfg,
		world:      w,
		belts:      ecs.NewStore[Belt](),
		machines:   ecs.NewStore[Machine](),
		pipes:      ecs.NewStore[Pipe](),
		junctions:  ecs.NewStore[Junction](),
		blueprints: ecs.NewStore[Blueprint](),
		cells:      make(map[Cell]*slot, 256),
		footprints: make(map[ecs.EntityID][]Cell, 128),
		items:      make(map[Cell]int),
	}
	reg := w.Registry()
	reg.Register(m.belts)
	reg.Register(m.machines)
	reg.Register(m.pipes)
	reg.Register(m.junctions)
	reg.Register(m.blueprints)
	return m
}

func (m *Map) Config() Config { return m.cfg }

// World exposes the entity world for the cleanup system.
func (m *Map) World() *ecs.World { return m.world }

// Belts exposes belt components for connectivity rebuilds.
func (m *Map) Belts() *ecs.Store[Belt] { return m.belts }

// InBounds checks c against the configured plane size.
func (m *Map) InBounds(c Cell) bool {
	if m.cfg.Width > 0 && (c.X < 0 || c.X >= m.cfg.Width) {
		return false
	}
	if m.cfg.Height > 0 && (c.Y < 0 || c.Y >= m.cfg.Height) {
		return false
	}
	return true
}

// WorldToCell floors world coordinates so negative positions land in the
// correct cell.
func (m *Map) WorldToCell(p Vec) Cell {
	return Cell{
		X: floorDiv(p.X-m.cfg.Origin.X, m.cfg.CellSize),
		Y: floorDiv(p.Y-m.cfg.Origin.Y, m.cfg.CellSize),
	}
}

// CellToWorld returns the centre of c at height z.
func (m *Map) CellToWorld(c Cell, z float64) Vec3 {
	s := m.cfg.CellSize
	return Vec3{
		X: m.cfg.Origin.X + (float64(c.X)+0.5)*s,
		Y: m.cfg.Origin.Y + (float64(c.Y)+0.5)*s,
		Z: z,
	}
}

func (m *Map) CellInfo(c Cell) CellInfo {
	info := CellInfo{OutOfBounds: !m.InBounds(c), Items: m.items[c]}
	s := m.cells[c]
	if s == nil {
		return info
	}
	info.Occupied = s.kind
	info.Entity = s.entity
	info.Anchor = s.anchor
	info.Blueprint = s.blueprint
	info.Broken = s.broken
	info.JobID = s.jobID
	info.Paid = s.paid
	info.Priced = s.priced
	return info
}

// SetCellContent writes content anchored at c. Whatever occupied the target
// cells before is replaced. A nil content clears c.
func (m *Map) SetCellContent(c Cell, content *Content) ecs.EntityID {
	if content == nil || content.Kind == UnitNone {
		m.ClearCell(c)
		return 0
	}
	cells := []Cell{c}
	if content.Kind == UnitMachine || content.Kind == UnitJunction {
		cells = content.Footprint.Cells(c)
	}
	for _, fc := range cells {
		if s := m.cells[fc]; s != nil && s.entity != 0 {
			m.DestroyEntity(s.entity)
		}
	}

	id := m.world.CreateEntity()
	switch {
	case content.Blueprint:
		m.blueprints.Set(id, &Blueprint{Anchor: c, Kind: content.Kind, Facing: content.Facing, Entry: content.Entry, JobID: content.JobID})
	case content.Kind.IsBelt():
		m.belts.Set(id, &Belt{Cell: c, Facing: content.Facing, Entry: content.Entry, Curved: content.Kind == UnitCurve})
	case content.Kind == UnitMachine:
		m.machines.Set(id, &Machine{Anchor: c, Size: content.Footprint, Facing: content.Facing, Prefab: content.Prefab})
	case content.Kind == UnitJunction:
		m.junctions.Set(id, &Junction{Anchor: c, Size: content.Footprint, Prefab: content.Prefab})
	case content.Kind == UnitPipe:
		m.pipes.Set(id, &Pipe{Cell: c, Facing: content.Facing})
	}
	for _, fc := range cells {
		m.cells[fc] = &slot{
			kind:      content.Kind,
			entity:    id,
			anchor:    c,
			blueprint: content.Blueprint,
			jobID:     content.JobID,
			paid:      content.Paid,
			priced:    content.Priced,
		}
	}
	m.footprints[id] = cells
	return id
}

// SetLogical records a cell as occupied without a backing entity, the way a
// loaded save or another system can claim a cell.
func (m *Map) SetLogical(c Cell, kind UnitKind) {
	if kind == UnitNone {
		m.ClearCell(c)
		return
	}
	m.cells[c] = &slot{kind: kind, anchor: c}
}

// SetBroken flags the unit in c as broken. Broken units still occupy the cell.
func (m *Map) SetBroken(c Cell, broken bool) {
	if s := m.cells[c]; s != nil {
		s.broken = broken
	}
}

// ClearCell empties c. The owning entity, if any, is left alive; callers
// destroy it explicitly.
func (m *Map) ClearCell(c Cell) {
	s := m.cells[c]
	if s == nil {
		return
	}
	delete(m.cells, c)
	if s.entity == 0 {
		return
	}
	cells := m.footprints[s.entity]
	for i, fc := range cells {
		if fc == c {
			m.footprints[s.entity] = append(cells[:i:i], cells[i+1:]...)
			break
		}
	}
}

// DestroyEntity queues id for destruction and releases every cell it still
// occupies.
func (m *Map) DestroyEntity(id ecs.EntityID) {
	if id == 0 {
		return
	}
	for _, c := range m.footprints[id] {
		if s := m.cells[c]; s != nil && s.entity == id {
			delete(m.cells, c)
		}
	}
	delete(m.footprints, id)
	m.world.MarkForDestruction(id)
}

// Flush runs deferred entity destruction. Called by the cleanup system.
func (m *Map) Flush() int { return m.world.Flush() }

func (m *Map) AddItems(c Cell, n int) { m.items[c] += n }
func (m *Map) Items(c Cell) int       { return m.items[c] }
func (m *Map) ClearItems(c Cell)      { delete(m.items, c) }

// Each visits every occupied cell. Order is unspecified.
func (m *Map) Each(fn func(Cell, CellInfo)) {
	for c := range m.cells {
		fn(c, m.CellInfo(c))
	}
}

// Count returns the number of occupied cells.
func (m *Map) Count() int { return len(m.cells) }
