package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sugarsyndicate/beltline/internal/build"
	"github.com/sugarsyndicate/beltline/internal/grid"
)

type captureRenderer struct{ frames []Frame }

func (r *captureRenderer) Render(f Frame) { r.frames = append(r.frames, f) }

func TestRender_Snapshot(t *testing.T) {
	w := newWorld(t, 100, build.Options{})
	in, _, _ := newInput(t, w)
	rr := &captureRenderer{}
	rs := NewRenderSystem(w.grid, w.placer, w.jobs, w.sim, in, w.wallet, rr)

	w.grid.SetCellContent(cell(1, 1), &grid.Content{Kind: grid.UnitBelt, Facing: grid.Down})
	w.grid.SetCellContent(cell(0, 0), &grid.Content{Kind: grid.UnitPipe})
	in.Handle(key(ActionTogglePreview))
	in.Handle(InputEvent{Kind: PointerDown, Pos: at(3, 0)})
	in.Handle(InputEvent{Kind: PointerMove, Pos: at(4, 0)})

	rs.Update(0)
	require.Len(t, rr.frames, 1)
	f := rr.frames[0]
	require.Len(t, f.Cells, 2)
	assert.Equal(t, cell(0, 0), f.Cells[0].Cell)
	assert.Equal(t, grid.Down, f.Cells[1].Facing)
	assert.Len(t, f.Ghosts, 2)
	assert.True(t, f.Active)
	assert.Equal(t, "belt", f.Tool)
	assert.Equal(t, int64(90), f.Balance)
	assert.Equal(t, uint64(1), f.Tick)
}
