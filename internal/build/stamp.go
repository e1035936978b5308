package build

import (
	"go.uber.org/zap"

	"github.com/sugarsyndicate/beltline/internal/grid"
)

// StampTool places one fixed-footprint unit (junction, machine, pipe) per
// click. It takes part in the same arbitration as the belt tool.
type StampTool struct {
	kind     grid.UnitKind
	deps     Deps
	log      *zap.Logger
	commit   *CommitProtocol
	armed    bool
	rotation grid.Direction
}

func NewStampTool(kind grid.UnitKind, deps Deps, blueprints bool, log *zap.Logger) *StampTool {
	return &StampTool{
		kind:     kind,
		deps:     deps,
		log:      log,
		commit:   NewCommitProtocol(deps, blueprints, log),
		rotation: grid.Right,
	}
}

func (s *StampTool) Name() string        { return s.kind.String() }
func (s *StampTool) Kind() grid.UnitKind { return s.kind }
func (s *StampTool) Armed() bool         { return s.armed }

// Arm readies the tool and stops every other builder tool.
func (s *StampTool) Arm() {
	if s.deps.Arbiter != nil {
		s.deps.Arbiter.StopOtherTools(s)
	}
	s.armed = true
}

func (s *StampTool) Stop() { s.armed = false }

func (s *StampTool) Rotate() { s.rotation = s.rotation.Rotate() }

// Footprint lists the cells a stamp at the cell under pos would cover.
func (s *StampTool) Footprint(pos grid.Vec) []grid.Cell {
	return s.commit.Cells(s.kind, s.deps.Grid.WorldToCell(pos))
}

// OnPointerDown commits one unit anchored at the cell under pos and reports
// whether it was placed.
func (s *StampTool) OnPointerDown(pos grid.Vec) bool {
	if !s.armed {
		return false
	}
	if s.deps.Arbiter != nil {
		if !s.deps.Arbiter.RequestExclusiveSession(s) {
			return false
		}
		defer s.deps.Arbiter.Release(s)
	}
	c := s.deps.Grid.WorldToCell(pos)
	res, err := s.commit.Commit(Placement{Anchor: c, Kind: s.kind, Facing: s.rotation, Owner: s})
	if err != nil {
		if !Benign(err) {
			s.log.Debug("stamp refused", zap.Stringer("kind", s.kind), zap.Stringer("cell", c), zap.Error(err))
		}
		return false
	}
	s.deps.Hooks.committed(CommitReport{Tool: s.Name(), Kind: s.kind, Cells: res.Cells, Cost: res.Paid, Blueprint: res.Blueprint})
	return true
}
