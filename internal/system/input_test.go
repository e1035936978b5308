package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sugarsyndicate/beltline/internal/build"
	"github.com/sugarsyndicate/beltline/internal/grid"
)

func newInput(t *testing.T, w *world) (*InputSystem, chan InputEvent, *bool) {
	t.Helper()
	junction := build.NewStampTool(grid.UnitJunction, w.deps, false, w.log)
	machine := build.NewStampTool(grid.UnitMachine, w.deps, false, w.log)
	w.arbiter.Register(junction)
	w.arbiter.Register(machine)
	events := make(chan InputEvent, 64)
	quit := false
	in := NewInputSystem(events, w.placer, map[Action]*build.StampTool{
		ActionJunction: junction,
		ActionMachine:  machine,
	}, 0, func() { quit = true }, w.log)
	return in, events, &quit
}

func key(a Action) InputEvent { return InputEvent{Kind: KeyAction, Action: a} }

func TestInput_DragThroughChannel(t *testing.T) {
	w := newWorld(t, 100, build.Options{})
	in, events, _ := newInput(t, w)

	events <- key(ActionTogglePreview)
	events <- InputEvent{Kind: PointerDown, Pos: at(0, 0)}
	events <- InputEvent{Kind: PointerMove, Pos: at(0, 2)}
	events <- InputEvent{Kind: PointerUp}
	in.Update(0)

	assert.Equal(t, 3, w.grid.Count())
	u, ok := w.grid.BeltAt(cell(0, 2))
	require.True(t, ok)
	assert.Equal(t, grid.Up, u.Facing)
	assert.Equal(t, "belt", in.ActiveTool())
}

func TestInput_ToolSwitching(t *testing.T) {
	w := newWorld(t, 500, build.Options{})
	in, _, quit := newInput(t, w)

	in.Handle(key(ActionTogglePreview))
	require.True(t, w.placer.Armed())

	in.Handle(key(ActionMachine))
	assert.False(t, w.placer.Armed(), "stamp stops the belt tool")
	assert.Equal(t, "machine", in.ActiveTool())

	in.Handle(InputEvent{Kind: PointerDown, Pos: at(3, 3)})
	_, ok := w.grid.MachineAt(cell(4, 4))
	assert.True(t, ok)

	in.Handle(key(ActionToggleDelete))
	assert.Equal(t, "delete", in.ActiveTool())
	in.Handle(InputEvent{Kind: PointerDown, Pos: at(4, 4)})
	in.Handle(InputEvent{Kind: PointerUp})
	assert.Zero(t, w.grid.Count())

	in.Handle(key(ActionToggleDelete))
	assert.Equal(t, "", in.ActiveTool())

	in.Handle(key(ActionQuit))
	assert.True(t, *quit)
}

func TestInput_EscapeCancelsDrag(t *testing.T) {
	w := newWorld(t, 100, build.Options{})
	in, _, _ := newInput(t, w)

	in.Handle(key(ActionTogglePreview))
	in.Handle(InputEvent{Kind: PointerDown, Pos: at(0, 0)})
	in.Handle(InputEvent{Kind: PointerMove, Pos: at(4, 0)})
	assert.Equal(t, int64(75), w.wallet.Balance())

	in.Handle(key(ActionCancel))
	in.Handle(InputEvent{Kind: PointerUp})
	assert.Equal(t, int64(100), w.wallet.Balance())
	assert.Zero(t, w.grid.Count())
}
