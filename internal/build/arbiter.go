package build

import "go.uber.org/zap"

// Arbiter enforces that at most one builder tool runs a session. Starting a
// session stops every other registered tool first. Not safe for concurrent
// use; it lives on the game loop goroutine.
type Arbiter struct {
	tools    []Tool
	owner    Tool
	stopping bool
	log      *zap.Logger
}

func NewArbiter(log *zap.Logger) *Arbiter {
	return &Arbiter{log: log}
}

// Register adds t to the set of tools stopped by StopOtherTools.
func (a *Arbiter) Register(t Tool) {
	for _, have := range a.tools {
		if have == t {
			return
		}
	}
	a.tools = append(a.tools, t)
}

func (a *Arbiter) RequestExclusiveSession(t Tool) bool {
	if t == nil || a.stopping {
		return false
	}
	a.StopOtherTools(t)
	a.owner = t
	a.log.Debug("session granted", zap.String("tool", t.Name()))
	return true
}

func (a *Arbiter) Release(t Tool) {
	if a.owner == t {
		a.owner = nil
	}
}

// StopOtherTools stops every registered tool except t. A stopped tool that
// releases its session from inside Stop is fine; one that requests a new
// session is refused.
func (a *Arbiter) StopOtherTools(t Tool) {
	a.stopping = true
	defer func() { a.stopping = false }()
	for _, other := range a.tools {
		if other == t {
			continue
		}
		other.Stop()
		if a.owner == other {
			a.owner = nil
		}
	}
}

func (a *Arbiter) ActiveOwner() Tool { return a.owner }
