package build

import (
	"slices"

	"github.com/sugarsyndicate/beltline/internal/grid"
)

// Ghost is a tentative segment shown during a drag. It has no effect on the
// grid until committed.
type Ghost struct {
	Cell grid.Cell
	Kind SegmentKind
	Orientation
}

// GhostRegistry holds at most one ghost per cell, in placement order. It
// does not track payment; callers refund whatever they reserved when a ghost
// is removed or discarded.
type GhostRegistry struct {
	grid   Grid
	ghosts map[grid.Cell]*Ghost
	order  []grid.Cell
}

func NewGhostRegistry(g Grid) *GhostRegistry {
	return &GhostRegistry{grid: g, ghosts: make(map[grid.Cell]*Ghost, 32)}
}

// Blocked reports whether a ghost may not sit on c: out of bounds, occupied
// by a finished unit or claimed by a blueprint.
func Blocked(info grid.CellInfo) bool {
	return info.OutOfBounds || info.Occupied != grid.UnitNone || info.Blueprint
}

// Place creates or re-orients the ghost at c. It returns false when c is
// blocked and no ghost exists there.
func (r *GhostRegistry) Place(c grid.Cell, kind SegmentKind, o Orientation) bool {
	if g, ok := r.ghosts[c]; ok {
		g.Kind = kind
		g.Orientation = o
		return true
	}
	if Blocked(r.grid.CellInfo(c)) {
		return false
	}
	r.ghosts[c] = &Ghost{Cell: c, Kind: kind, Orientation: o}
	r.order = append(r.order, c)
	return true
}

// Remove drops the ghost at c, if any.
func (r *GhostRegistry) Remove(c grid.Cell) (Ghost, bool) {
	g, ok := r.ghosts[c]
	if !ok {
		return Ghost{}, false
	}
	delete(r.ghosts, c)
	if i := slices.Index(r.order, c); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return *g, true
}

func (r *GhostRegistry) Get(c grid.Cell) (Ghost, bool) {
	g, ok := r.ghosts[c]
	if !ok {
		return Ghost{}, false
	}
	return *g, true
}

func (r *GhostRegistry) Has(c grid.Cell) bool {
	_, ok := r.ghosts[c]
	return ok
}

func (r *GhostRegistry) Len() int { return len(r.ghosts) }

// All returns every ghost in placement order.
func (r *GhostRegistry) All() []Ghost {
	out := make([]Ghost, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, *r.ghosts[c])
	}
	return out
}

// CommitAll hands every ghost that passes allow to commit and empties the
// registry. Ghosts that fail either step are returned as discarded; nothing
// is half-registered.
func (r *GhostRegistry) CommitAll(allow func(grid.Cell) bool, commit func(Ghost) error) (committed []grid.Cell, discarded []Ghost) {
	for _, c := range r.order {
		g := *r.ghosts[c]
		if !allow(c) {
			discarded = append(discarded, g)
			continue
		}
		if err := commit(g); err != nil {
			discarded = append(discarded, g)
			continue
		}
		committed = append(committed, c)
	}
	r.DiscardAll()
	return committed, discarded
}

// DiscardAll drops every ghost and returns them in placement order.
func (r *GhostRegistry) DiscardAll() []Ghost {
	out := r.All()
	clear(r.ghosts)
	r.order = r.order[:0]
	return out
}
