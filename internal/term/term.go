// Package term is the terminal front-end: it draws frames with tcell and
// turns keys and mouse drags into input events.
package term

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sugarsyndicate/beltline/internal/build"
	"github.com/sugarsyndicate/beltline/internal/grid"
	"github.com/sugarsyndicate/beltline/internal/system"
)

var (
	styleBelt      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleCurve     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleLoaded    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleMachine   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleBlueprint = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGhost     = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	styleUnpaid    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleMark      = tcell.StyleDefault.Foreground(tcell.ColorRed).Reverse(true)
	styleHUD       = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

var arrows = map[grid.Direction]rune{
	grid.Up:    '↑',
	grid.Right: '→',
	grid.Down:  '↓',
	grid.Left:  '←',
}

// Terminal owns the screen. The bottom row is the HUD; grid row 0 is drawn
// just above it so Up on the grid is up on screen.
type Terminal struct {
	screen  tcell.Screen
	cfg     grid.Config
	printer *message.Printer
	log     *zap.Logger

	pressed    bool
	cancelHeld bool
}

func New(screen tcell.Screen, cfg grid.Config, log *zap.Logger) *Terminal {
	screen.EnableMouse(tcell.MouseDragEvents)
	screen.HideCursor()
	return &Terminal{
		screen:  screen,
		cfg:     cfg,
		printer: message.NewPrinter(language.English),
		log:     log,
	}
}

// cellAt maps a screen position to a grid cell.
func (t *Terminal) cellAt(x, y int) grid.Cell {
	_, h := t.screen.Size()
	return grid.Cell{X: int32(x), Y: int32(h - 2 - y)}
}

func (t *Terminal) screenPos(c grid.Cell) (int, int, bool) {
	w, h := t.screen.Size()
	x, y := int(c.X), h-2-int(c.Y)
	return x, y, x >= 0 && x < w && y >= 0 && y < h-1
}

// worldPos is the centre of c in world coordinates.
func (t *Terminal) worldPos(c grid.Cell) grid.Vec {
	size := t.cfg.CellSize
	if size <= 0 {
		size = 1
	}
	return grid.Vec{
		X: t.cfg.Origin.X + (float64(c.X)+0.5)*size,
		Y: t.cfg.Origin.Y + (float64(c.Y)+0.5)*size,
	}
}

func (t *Terminal) Render(f system.Frame) {
	t.screen.Clear()
	for _, c := range f.Cells {
		r, style := cellGlyph(c)
		t.put(c.Cell, r, style)
	}
	for _, j := range f.Jobs {
		t.put(j.Spec.Anchor, remainingGlyph(j.Remaining), styleBlueprint)
	}
	for _, g := range f.Ghosts {
		style := styleGhost
		if !g.Reserved {
			style = styleUnpaid
		}
		r := arrows[g.Facing]
		if g.Kind == build.CurvedBelt {
			r = '+'
		}
		t.put(g.Cell, r, style)
	}
	for _, c := range f.Marks {
		t.put(c, 'x', styleMark)
	}
	t.drawHUD(f)
	t.screen.Show()
}

func cellGlyph(c system.FrameCell) (rune, tcell.Style) {
	if c.Blueprint {
		return '░', styleBlueprint
	}
	switch c.Kind {
	case grid.UnitBelt, grid.UnitCurve:
		style := styleBelt
		if c.Kind == grid.UnitCurve {
			style = styleCurve
		}
		if c.Items > 0 {
			style = styleLoaded
		}
		return arrows[c.Facing], style
	case grid.UnitMachine:
		return 'M', styleMachine
	case grid.UnitJunction:
		return 'J', styleMachine
	case grid.UnitPipe:
		return '=', styleBelt
	}
	return '?', styleBelt
}

// remainingGlyph is the whole seconds left on a job, rounded up, as one digit.
func remainingGlyph(d time.Duration) rune {
	secs := int((d + time.Second - 1) / time.Second)
	switch {
	case secs < 0:
		secs = 0
	case secs > 9:
		secs = 9
	}
	return rune('0' + secs)
}

func (t *Terminal) put(c grid.Cell, r rune, style tcell.Style) {
	if x, y, ok := t.screenPos(c); ok {
		t.screen.SetContent(x, y, r, nil, style)
	}
}

func (t *Terminal) drawHUD(f system.Frame) {
	w, h := t.screen.Size()
	tool := f.Tool
	if tool == "" {
		tool = "-"
	}
	line := t.printer.Sprintf(" %s | %s | rot %s | balance %d | jobs %d | chains %d | delivered %d",
		tool, f.Mode, f.Rotation, f.Balance, len(f.Jobs), f.Chains, f.Delivered)
	x := 0
	for _, r := range line {
		if x >= w {
			break
		}
		t.screen.SetContent(x, h-1, r, nil, styleHUD)
		x++
	}
	for ; x < w; x++ {
		t.screen.SetContent(x, h-1, ' ', nil, styleHUD)
	}
}

// Translate converts a tcell event. The second result is false for events
// the builder ignores.
func (t *Terminal) Translate(ev tcell.Event) (system.InputEvent, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		a := keyAction(ev)
		if a == system.ActionNone {
			return system.InputEvent{}, false
		}
		return system.InputEvent{Kind: system.KeyAction, Action: a}, true
	case *tcell.EventMouse:
		x, y := ev.Position()
		pos := t.worldPos(t.cellAt(x, y))
		down := ev.Buttons()&tcell.Button1 != 0
		right := ev.Buttons()&tcell.Button2 != 0
		if right != t.cancelHeld {
			t.cancelHeld = right
			if right {
				return system.InputEvent{Kind: system.KeyAction, Action: system.ActionCancel}, true
			}
		}
		switch {
		case down && !t.pressed:
			t.pressed = true
			return system.InputEvent{Kind: system.PointerDown, Pos: pos}, true
		case down:
			return system.InputEvent{Kind: system.PointerMove, Pos: pos}, true
		case t.pressed:
			t.pressed = false
			return system.InputEvent{Kind: system.PointerUp, Pos: pos}, true
		}
	}
	return system.InputEvent{}, false
}

func keyAction(ev *tcell.EventKey) system.Action {
	switch ev.Key() {
	case tcell.KeyEscape:
		return system.ActionCancel
	case tcell.KeyCtrlC:
		return system.ActionQuit
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'b':
			return system.ActionTogglePreview
		case 'x':
			return system.ActionToggleDelete
		case 'r':
			return system.ActionRotate
		case 'j':
			return system.ActionJunction
		case 'm':
			return system.ActionMachine
		case 'q':
			return system.ActionQuit
		}
	}
	return system.ActionNone
}

// Pump polls the screen until it is finalized, forwarding translated events.
// Run it on its own goroutine.
func (t *Terminal) Pump(out chan<- system.InputEvent) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			close(out)
			return
		}
		if in, ok := t.Translate(ev); ok {
			select {
			case out <- in:
			default:
				t.log.Warn("input queue full, event dropped")
			}
		}
	}
}

func (t *Terminal) Close() { t.screen.Fini() }
