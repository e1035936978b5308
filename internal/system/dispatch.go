package system

import (
	"time"

	"github.com/sugarsyndicate/beltline/internal/build"
	"github.com/sugarsyndicate/beltline/internal/core/event"
	coresys "github.com/sugarsyndicate/beltline/internal/core/system"
	"github.com/sugarsyndicate/beltline/internal/grid"
)

// EventDispatchSystem delivers the previous tick's events. Phase 1 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// Balancer reports the current budget.
type Balancer interface {
	Balance() int64
}

// EventHooks turns builder outcomes into bus events. A BalanceChanged event
// follows every outcome that moved money.
func EventHooks(bus *event.Bus, wallet Balancer) build.Hooks {
	balance := func() {
		if wallet != nil {
			event.Emit(bus, event.BalanceChanged{Balance: wallet.Balance()})
		}
	}
	return build.Hooks{
		OnCommitted: func(r build.CommitReport) {
			event.Emit(bus, event.UnitsCommitted{Kind: r.Kind, Cells: r.Cells, Cost: r.Cost, Blueprint: r.Blueprint})
			balance()
		},
		OnDeleted: func(r build.Removal) {
			event.Emit(bus, event.UnitDeleted{Kind: r.Kind, Cells: r.Cells, Refund: r.Refund})
			if r.Refund > 0 {
				balance()
			}
		},
		OnDiscarded: func(cells []grid.Cell, refunded int) {
			event.Emit(bus, event.GhostsDiscarded{Cells: cells, Refunded: refunded})
			if refunded > 0 {
				balance()
			}
		},
		OnCancelled: func(tool string, deleteMode bool) {
			event.Emit(bus, event.SessionCancelled{Tool: tool, Delete: deleteMode})
			balance()
		},
	}
}
