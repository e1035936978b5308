package term

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sugarsyndicate/beltline/internal/build"
	"github.com/sugarsyndicate/beltline/internal/grid"
	"github.com/sugarsyndicate/beltline/internal/system"
)

func newTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(20, 10)
	t.Cleanup(screen.Fini)
	return New(screen, grid.Config{CellSize: 2}, zaptest.NewLogger(t)), screen
}

func runeAt(screen tcell.SimulationScreen, x, y int) rune {
	cells, w, _ := screen.GetContents()
	rs := cells[y*w+x].Runes
	if len(rs) == 0 {
		return 0
	}
	return rs[0]
}

func TestRender_FlipsRows(t *testing.T) {
	term, screen := newTerminal(t)
	term.Render(system.Frame{
		Cells: []system.FrameCell{
			{Cell: grid.Cell{X: 0, Y: 0}, Kind: grid.UnitBelt, Facing: grid.Up},
			{Cell: grid.Cell{X: 3, Y: 2}, Kind: grid.UnitMachine},
		},
		Ghosts:  []build.GhostView{{Ghost: build.Ghost{Cell: grid.Cell{X: 1, Y: 0}, Orientation: build.Orientation{Facing: grid.Right}}, Reserved: true}},
		Marks:   []grid.Cell{{X: 5, Y: 5}},
		Tool:    "belt",
		Balance: 12500,
	})

	assert.Equal(t, '↑', runeAt(screen, 0, 8))
	assert.Equal(t, '→', runeAt(screen, 1, 8))
	assert.Equal(t, 'M', runeAt(screen, 3, 6))
	assert.Equal(t, 'x', runeAt(screen, 5, 3))

	var hud []rune
	for x := 0; x < 20; x++ {
		hud = append(hud, runeAt(screen, x, 9))
	}
	assert.Equal(t, " belt | place | rot ", string(hud))
}

func TestTranslate_MouseDrag(t *testing.T) {
	term, _ := newTerminal(t)

	ev, ok := term.Translate(tcell.NewEventMouse(2, 8, tcell.Button1, 0))
	require.True(t, ok)
	assert.Equal(t, system.PointerDown, ev.Kind)
	assert.Equal(t, grid.Vec{X: 5, Y: 1}, ev.Pos)

	ev, ok = term.Translate(tcell.NewEventMouse(2, 7, tcell.Button1, 0))
	require.True(t, ok)
	assert.Equal(t, system.PointerMove, ev.Kind)
	assert.Equal(t, grid.Vec{X: 5, Y: 3}, ev.Pos)

	ev, ok = term.Translate(tcell.NewEventMouse(2, 7, tcell.ButtonNone, 0))
	require.True(t, ok)
	assert.Equal(t, system.PointerUp, ev.Kind)

	_, ok = term.Translate(tcell.NewEventMouse(4, 4, tcell.ButtonNone, 0))
	assert.False(t, ok, "hover without a press")

	ev, ok = term.Translate(tcell.NewEventMouse(4, 4, tcell.Button2, 0))
	require.True(t, ok)
	assert.Equal(t, system.ActionCancel, ev.Action, "right click cancels")
	_, ok = term.Translate(tcell.NewEventMouse(5, 4, tcell.Button2, 0))
	assert.False(t, ok, "held right button cancels once")
}

func TestRemainingGlyph(t *testing.T) {
	assert.Equal(t, '2', remainingGlyph(1500*time.Millisecond))
	assert.Equal(t, '0', remainingGlyph(0))
	assert.Equal(t, '9', remainingGlyph(time.Minute))
}

func TestTranslate_Keys(t *testing.T) {
	term, _ := newTerminal(t)
	cases := map[rune]system.Action{
		'b': system.ActionTogglePreview,
		'x': system.ActionToggleDelete,
		'r': system.ActionRotate,
		'j': system.ActionJunction,
		'm': system.ActionMachine,
		'q': system.ActionQuit,
	}
	for r, want := range cases {
		ev, ok := term.Translate(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
		require.True(t, ok, string(r))
		assert.Equal(t, want, ev.Action, string(r))
	}
	ev, ok := term.Translate(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	require.True(t, ok)
	assert.Equal(t, system.ActionCancel, ev.Action)

	_, ok = term.Translate(tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone))
	assert.False(t, ok)
}
