package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/sugarsyndicate/beltline/internal/build"
	coresys "github.com/sugarsyndicate/beltline/internal/core/system"
	"github.com/sugarsyndicate/beltline/internal/grid"
)

type InputKind uint8

const (
	PointerDown InputKind = iota + 1
	PointerMove
	PointerUp
	KeyAction
)

// Action is a keyboard command.
type Action uint8

const (
	ActionNone Action = iota
	ActionTogglePreview
	ActionToggleDelete
	ActionRotate
	ActionJunction
	ActionMachine
	ActionCancel
	ActionQuit
)

// InputEvent is one sample from the front-end. Pos is a world position.
type InputEvent struct {
	Kind   InputKind
	Pos    grid.Vec
	Action Action
}

// InputSystem drains front-end samples and routes them to the builder tools.
// Phase 0 (Input).
type InputSystem struct {
	events     <-chan InputEvent
	placer     *build.Placer
	stamps     map[Action]*build.StampTool
	maxPerTick int
	quit       func()
	log        *zap.Logger
}

func NewInputSystem(events <-chan InputEvent, placer *build.Placer, stamps map[Action]*build.StampTool, maxPerTick int, quit func(), log *zap.Logger) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 256
	}
	return &InputSystem{
		events:     events,
		placer:     placer,
		stamps:     stamps,
		maxPerTick: maxPerTick,
		quit:       quit,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return
			}
			s.Handle(ev)
		default:
			return
		}
	}
}

// Handle routes one event. Exposed for tests and replay.
func (s *InputSystem) Handle(ev InputEvent) {
	switch ev.Kind {
	case PointerDown:
		if st := s.armedStamp(); st != nil {
			st.OnPointerDown(ev.Pos)
			return
		}
		s.placer.OnPointerDown(ev.Pos)
	case PointerMove:
		s.placer.OnPointerMove(ev.Pos)
	case PointerUp:
		s.placer.OnPointerUp()
	case KeyAction:
		s.handleAction(ev.Action)
	}
}

// ActiveTool names the armed tool, or "" when none is.
func (s *InputSystem) ActiveTool() string {
	if st := s.armedStamp(); st != nil {
		return st.Name()
	}
	if s.placer.Armed() {
		if s.placer.Mode() == build.ModeDelete {
			return "delete"
		}
		return s.placer.Name()
	}
	return ""
}

func (s *InputSystem) handleAction(a Action) {
	switch a {
	case ActionTogglePreview:
		if s.placer.Armed() && s.placer.Mode() == build.ModePlace {
			s.placer.EndPreview()
		} else {
			s.placer.BeginPreview()
		}
	case ActionToggleDelete:
		if s.placer.Mode() == build.ModeDelete {
			s.placer.ExitDeleteMode()
		} else {
			s.placer.EnterDeleteMode()
		}
	case ActionRotate:
		s.placer.Rotate()
		for _, st := range s.stamps {
			st.Rotate()
		}
	case ActionJunction, ActionMachine:
		st, ok := s.stamps[a]
		if !ok {
			return
		}
		if st.Armed() {
			st.Stop()
		} else {
			st.Arm()
		}
	case ActionCancel:
		s.placer.Cancel()
	case ActionQuit:
		if s.quit != nil {
			s.quit()
		}
	default:
		s.log.Debug("unhandled action", zap.Uint8("action", uint8(a)))
	}
}

func (s *InputSystem) armedStamp() *build.StampTool {
	for _, st := range s.stamps {
		if st.Armed() {
			return st
		}
	}
	return nil
}
