package system

import (
	"time"

	coresys "github.com/sugarsyndicate/beltline/internal/core/system"
	"github.com/sugarsyndicate/beltline/internal/grid"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	grid *grid.Map
}

func NewCleanupSystem(g *grid.Map) *CleanupSystem {
	return &CleanupSystem{grid: g}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.grid.Flush()
}
