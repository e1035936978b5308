package grid

import "github.com/sugarsyndicate/beltline/internal/core/ecs"

// Typed lookups used by the deletion precedence chain. Each one only matches
// finished units of its own kind; blueprints never match.

func (m *Map) liveSlot(c Cell) (*slot, bool) {
	s := m.cells[c]
	if s == nil || s.blueprint || s.entity == 0 || !m.world.Alive(s.entity) {
		return nil, false
	}
	return s, true
}

func (m *Map) unitCells(id ecs.EntityID) []Cell {
	cells := m.footprints[id]
	out := make([]Cell, len(cells))
	copy(out, cells)
	return out
}

func (m *Map) BeltAt(c Cell) (Unit, bool) {
	s, ok := m.liveSlot(c)
	if !ok {
		return Unit{}, false
	}
	b, ok := m.belts.Get(s.entity)
	if !ok {
		return Unit{}, false
	}
	kind := UnitBelt
	if b.Curved {
		kind = UnitCurve
	}
	return Unit{Entity: s.entity, Kind: kind, Anchor: b.Cell, Cells: m.unitCells(s.entity), Facing: b.Facing, Entry: b.Entry}, true
}

func (m *Map) MachineAt(c Cell) (Unit, bool) {
	s, ok := m.liveSlot(c)
	if !ok {
		return Unit{}, false
	}
	mc, ok := m.machines.Get(s.entity)
	if !ok {
		return Unit{}, false
	}
	return Unit{Entity: s.entity, Kind: UnitMachine, Anchor: mc.Anchor, Cells: m.unitCells(s.entity), Facing: mc.Facing, Prefab: mc.Prefab}, true
}

func (m *Map) PipeAt(c Cell) (Unit, bool) {
	s, ok := m.liveSlot(c)
	if !ok {
		return Unit{}, false
	}
	p, ok := m.pipes.Get(s.entity)
	if !ok {
		return Unit{}, false
	}
	return Unit{Entity: s.entity, Kind: UnitPipe, Anchor: p.Cell, Cells: m.unitCells(s.entity), Facing: p.Facing}, true
}

func (m *Map) JunctionAt(c Cell) (Unit, bool) {
	s, ok := m.liveSlot(c)
	if !ok {
		return Unit{}, false
	}
	j, ok := m.junctions.Get(s.entity)
	if !ok {
		return Unit{}, false
	}
	return Unit{Entity: s.entity, Kind: UnitJunction, Anchor: j.Anchor, Cells: m.unitCells(s.entity), Prefab: j.Prefab}, true
}

// BlueprintAt reports the pending construction in c, if any.
func (m *Map) BlueprintAt(c Cell) (Blueprint, bool) {
	s := m.cells[c]
	if s == nil || !s.blueprint {
		return Blueprint{}, false
	}
	bp, ok := m.blueprints.Get(s.entity)
	if !ok {
		return Blueprint{}, false
	}
	return *bp, true
}
