package build

import (
	"errors"

	"go.uber.org/zap"

	"github.com/sugarsyndicate/beltline/internal/grid"
)

// Options tune the belt tool.
type Options struct {
	// Blueprints routes commits through the job runner when one is wired.
	Blueprints      bool
	RefundOnDelete  bool
	DefaultRotation grid.Direction
	// MaxCatchUp caps tracker steps per pointer move; 0 means unbounded.
	MaxCatchUp int
}

// GhostView is a ghost as the renderer sees it. Unreserved ghosts could not
// be paid for when they appeared and are drawn as unaffordable.
type GhostView struct {
	Ghost
	Reserved bool
}

// Placer is the belt tool: it drives drag placement, drag deletion and taps
// from pointer input.
type Placer struct {
	deps     Deps
	opts     Options
	log      *zap.Logger
	tracker  *Tracker
	ghosts   *GhostRegistry
	commit   *CommitProtocol
	deletion *DeletionEngine

	armed      bool
	deleteMode bool
	rotation   grid.Direction

	// Travel direction into each path cell; None for the start cell.
	incoming map[grid.Cell]grid.Direction
	// Cost taken up front for each ghost that could be paid for.
	reserved map[grid.Cell]int
}

func NewPlacer(deps Deps, opts Options, log *zap.Logger) *Placer {
	if !opts.DefaultRotation.Valid() {
		opts.DefaultRotation = grid.Right
	}
	return &Placer{
		deps:     deps,
		opts:     opts,
		log:      log,
		tracker:  NewTracker(),
		ghosts:   NewGhostRegistry(deps.Grid),
		commit:   NewCommitProtocol(deps, opts.Blueprints, log),
		deletion: NewDeletionEngine(deps, opts.RefundOnDelete, log),
		rotation: opts.DefaultRotation,
		incoming: make(map[grid.Cell]grid.Direction, 32),
		reserved: make(map[grid.Cell]int, 32),
	}
}

func (p *Placer) Name() string { return "belt" }

// ---------------------------------------------------------------------------
// Tool state
// ---------------------------------------------------------------------------

// BeginPreview arms placement. Other builder tools are stopped.
func (p *Placer) BeginPreview() {
	p.stopOthers()
	p.Cancel()
	p.armed = true
	p.deleteMode = false
}

func (p *Placer) EndPreview() {
	p.Cancel()
	p.armed = false
}

// EnterDeleteMode switches the tool to deletion. Other builder tools are
// stopped.
func (p *Placer) EnterDeleteMode() {
	p.stopOthers()
	p.Cancel()
	p.deleteMode = true
}

func (p *Placer) ExitDeleteMode() {
	if p.tracker.Active() && p.tracker.Mode() == ModeDelete {
		p.Cancel()
	}
	p.deleteMode = false
}

// SetRotation selects the facing used by taps. None is ignored.
func (p *Placer) SetRotation(d grid.Direction) {
	if d.Valid() {
		p.rotation = d
	}
}

func (p *Placer) Rotate() { p.rotation = p.rotation.Rotate() }

// Stop tears down any session and disarms the tool. Called by the arbiter
// when another tool takes over.
func (p *Placer) Stop() {
	p.Cancel()
	p.armed = false
	p.deleteMode = false
}

// Cancel abandons the current session: ghosts are discarded with their
// reservations refunded, marks are dropped and the grid is left untouched.
func (p *Placer) Cancel() {
	if !p.tracker.Active() && p.ghosts.Len() == 0 && len(p.deletion.Marks()) == 0 {
		return
	}
	deleteMode := p.tracker.Active() && p.tracker.Mode() == ModeDelete
	cells, refunded := p.discardGhosts()
	p.deletion.Clear()
	p.endSession()
	p.deps.Hooks.discarded(cells, refunded)
	p.deps.Hooks.cancelled(p.Name(), deleteMode)
	p.log.Debug("session cancelled", zap.Int("ghosts", len(cells)), zap.Int("refunded", refunded))
}

// ---------------------------------------------------------------------------
// Pointer input
// ---------------------------------------------------------------------------

// OnPointerDown starts a session at the cell under pos. It reports whether
// the tool took the pointer.
func (p *Placer) OnPointerDown(pos grid.Vec) bool {
	if (!p.armed && !p.deleteMode) || p.tracker.Active() {
		return false
	}
	if p.deps.Arbiter != nil && !p.deps.Arbiter.RequestExclusiveSession(p) {
		return false
	}
	mode := ModePlace
	if p.deleteMode {
		mode = ModeDelete
	}
	p.tracker.Begin(p.deps.Grid.WorldToCell(pos), mode)
	return true
}

// OnPointerMove walks the path toward the cell under pos, one cell at a
// time, so a fast pointer never leaves gaps.
func (p *Placer) OnPointerMove(pos grid.Vec) {
	if !p.tracker.Active() {
		return
	}
	target := p.deps.Grid.WorldToCell(pos)
	limit := grid.Manhattan(p.tail(), target)
	if p.opts.MaxCatchUp > 0 && limit > p.opts.MaxCatchUp {
		limit = p.opts.MaxCatchUp
	}
	for i := 0; i < limit && !p.tracker.Reached(target); i++ {
		mv := p.tracker.Advance(target)
		if mv.Kind == MoveNone {
			break
		}
		if p.tracker.Mode() == ModeDelete {
			p.applyDelete(mv)
		} else {
			p.applyPlace(mv)
		}
	}
}

// OnPointerUp ends the session and commits it. It reports whether anything
// was placed or removed.
func (p *Placer) OnPointerUp() bool {
	if !p.tracker.Active() {
		return false
	}
	start, moved, mode := p.tracker.Start(), p.tracker.Moved(), p.tracker.Mode()
	p.tracker.End()

	var changed bool
	switch {
	case mode == ModeDelete && !moved:
		changed = p.deletion.DeleteImmediate(start)
	case mode == ModeDelete:
		changed = len(p.deletion.Commit()) > 0
	case !moved:
		changed = p.commitTap(start)
	default:
		changed = p.commitDrag()
	}
	p.endSession()
	p.commit.Flush()
	return changed
}

// ---------------------------------------------------------------------------
// Renderer views
// ---------------------------------------------------------------------------

func (p *Placer) Ghosts() []GhostView {
	all := p.ghosts.All()
	out := make([]GhostView, len(all))
	for i, g := range all {
		_, ok := p.reserved[g.Cell]
		out[i] = GhostView{Ghost: g, Reserved: ok}
	}
	return out
}

func (p *Placer) Marks() []grid.Cell { return p.deletion.Marks() }

// Path returns the cells visited by the active session.
func (p *Placer) Path() []grid.Cell { return p.tracker.Path() }

func (p *Placer) Mode() Mode {
	if p.deleteMode {
		return ModeDelete
	}
	return ModePlace
}

func (p *Placer) Rotation() grid.Direction { return p.rotation }

// Armed reports whether pointer-down would start a session.
func (p *Placer) Armed() bool { return p.armed || p.deleteMode }

func (p *Placer) Active() bool { return p.tracker.Active() }

// ---------------------------------------------------------------------------
// Session internals
// ---------------------------------------------------------------------------

func (p *Placer) tail() grid.Cell {
	if c, ok := p.tracker.Last(); ok {
		return c
	}
	return p.tracker.Start()
}

func (p *Placer) applyPlace(mv Move) {
	switch mv.Kind {
	case MoveStep:
		if in, ok := p.incoming[mv.From]; ok {
			p.placeGhost(mv.From, in, mv.Dir)
		} else {
			p.incoming[mv.From] = grid.None
			p.placeGhost(mv.From, grid.None, mv.Dir)
		}
		p.incoming[mv.To] = mv.Dir
		p.placeGhost(mv.To, mv.Dir, mv.Dir)

	case MoveRetreat, MoveBulkRetreat:
		for _, c := range mv.Removed {
			p.dropGhost(c)
			delete(p.incoming, c)
		}
		if p.tracker.Len() <= 1 {
			start := p.tracker.Start()
			p.dropGhost(start)
			delete(p.incoming, start)
			return
		}
		in := p.incoming[mv.To]
		p.placeGhost(mv.To, in, in)
	}
}

func (p *Placer) applyDelete(mv Move) {
	switch mv.Kind {
	case MoveStep:
		p.mark(mv.From)
		p.mark(mv.To)

	case MoveRetreat, MoveBulkRetreat:
		for _, c := range mv.Removed {
			p.deletion.Unmark(c)
		}
		if p.tracker.Len() <= 1 {
			p.deletion.Unmark(p.tracker.Start())
		}
	}
}

func (p *Placer) mark(c grid.Cell) {
	if err := p.deletion.Mark(c); err != nil && !Benign(err) {
		p.log.Debug("mark refused", zap.Stringer("cell", c), zap.Error(err))
	}
}

// placeGhost creates or re-orients the ghost at c. New ghosts reserve their
// cost; re-orientation never charges.
func (p *Placer) placeGhost(c grid.Cell, in, out grid.Direction) {
	kind, o, err := Resolve(in, out)
	if err != nil {
		p.logRefusal(c, err)
		return
	}
	existed := p.ghosts.Has(c)
	if !p.ghosts.Place(c, kind, o) {
		p.log.Debug("ghost refused", zap.Stringer("cell", c), zap.Error(ErrCellBlocked))
		return
	}
	if existed {
		return
	}
	cost := p.deps.Pricing.BuildCost(kind.Unit())
	if !p.deps.Economy.TrySpend(cost) {
		p.log.Debug("ghost unpaid", zap.Stringer("cell", c), zap.Int("cost", cost), zap.Error(ErrInsufficientFunds))
		return
	}
	p.reserved[c] = cost
}

func (p *Placer) dropGhost(c grid.Cell) {
	if _, ok := p.ghosts.Remove(c); ok {
		p.refund(c)
	}
}

// refund returns the reservation held for c, if any.
func (p *Placer) refund(c grid.Cell) int {
	paid, ok := p.reserved[c]
	if !ok {
		return 0
	}
	delete(p.reserved, c)
	if paid > 0 {
		p.deps.Economy.Refund(paid)
	}
	return paid
}

func (p *Placer) discardGhosts() ([]grid.Cell, int) {
	var (
		cells    []grid.Cell
		refunded int
	)
	for _, g := range p.ghosts.DiscardAll() {
		cells = append(cells, g.Cell)
		refunded += p.refund(g.Cell)
	}
	return cells, refunded
}

func (p *Placer) commitTap(c grid.Cell) bool {
	res, err := p.commit.Commit(Placement{Anchor: c, Kind: grid.UnitBelt, Facing: p.rotation, Owner: p})
	if err != nil {
		p.logRefusal(c, err)
		return false
	}
	p.deps.Hooks.committed(CommitReport{Tool: p.Name(), Kind: grid.UnitBelt, Cells: res.Cells, Cost: res.Paid, Blueprint: res.Blueprint})
	return true
}

func (p *Placer) commitDrag() bool {
	report := CommitReport{Tool: p.Name(), Kind: grid.UnitBelt}
	committed, discarded := p.ghosts.CommitAll(
		func(c grid.Cell) bool { return !Blocked(p.deps.Grid.CellInfo(c)) },
		func(g Ghost) error {
			paid, reserved := p.reserved[g.Cell]
			res, err := p.commit.Commit(Placement{
				Anchor:   g.Cell,
				Kind:     g.Kind.Unit(),
				Facing:   g.Facing,
				Entry:    g.Entry,
				Reserved: reserved,
				Prepaid:  paid,
				Deferred: true,
				Owner:    p,
			})
			if err != nil {
				p.logRefusal(g.Cell, err)
				return err
			}
			delete(p.reserved, g.Cell)
			report.Cost += res.Paid
			report.Blueprint = res.Blueprint
			return nil
		},
	)

	var (
		cells    []grid.Cell
		refunded int
	)
	for _, g := range discarded {
		cells = append(cells, g.Cell)
		refunded += p.refund(g.Cell)
	}
	report.Cells = committed
	p.deps.Hooks.committed(report)
	p.deps.Hooks.discarded(cells, refunded)
	p.log.Debug("drag committed",
		zap.Int("placed", len(committed)),
		zap.Int("discarded", len(discarded)),
		zap.Int("cost", report.Cost),
	)
	return len(committed) > 0
}

func (p *Placer) endSession() {
	p.tracker.Reset()
	clear(p.incoming)
	clear(p.reserved)
	if p.deps.Arbiter != nil {
		p.deps.Arbiter.Release(p)
	}
}

func (p *Placer) stopOthers() {
	if p.deps.Arbiter != nil {
		p.deps.Arbiter.StopOtherTools(p)
	}
}

func (p *Placer) logRefusal(c grid.Cell, err error) {
	switch {
	case errors.Is(err, ErrNoOrientation):
		p.log.Error("orientation unresolved", zap.Stringer("cell", c), zap.Error(err))
	case Benign(err):
	default:
		p.log.Debug("placement refused", zap.Stringer("cell", c), zap.Error(err))
	}
}
