package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sugarsyndicate/beltline/internal/grid"
)

func placeBelt(h *harness, c grid.Cell) {
	h.grid.SetCellContent(c, &grid.Content{Kind: grid.UnitBelt, Facing: grid.Right})
}

func TestDelete_DragMarksOnlyOccupiedCells(t *testing.T) {
	h := newHarness(t, 0, Options{RefundOnDelete: true}, false)
	placeBelt(h, cell(0, 0))
	placeBelt(h, cell(2, 0))
	h.placer.EnterDeleteMode()

	h.placer.OnPointerDown(at(cell(0, 0)))
	h.placer.OnPointerMove(at(cell(3, 0)))
	assert.Equal(t, []grid.Cell{cell(0, 0), cell(2, 0)}, h.placer.Marks())

	require.True(t, h.placer.OnPointerUp())
	assert.Zero(t, h.grid.Count())
	assert.Equal(t, 2*beltCost, h.eco.balance)
	assert.Equal(t, 1, h.graph.dirty)
	assert.Equal(t, 1, h.sim.reseeded)
	assert.ElementsMatch(t, []grid.Cell{cell(0, 0), cell(2, 0)}, h.sim.registered)
	assert.Len(t, h.deletions, 2)
}

func TestDelete_RefundSymmetry(t *testing.T) {
	h := newHarness(t, 100, Options{RefundOnDelete: true}, false)
	h.placer.BeginPreview()
	require.True(t, h.tap(cell(5, 5)))
	assert.Equal(t, 100-beltCost, h.eco.balance)

	h.placer.EnterDeleteMode()
	require.True(t, h.tap(cell(5, 5)))
	assert.Equal(t, 100, h.eco.balance)
	assert.Zero(t, h.grid.Count())
}

func TestDelete_NoRefundWhenDisabled(t *testing.T) {
	h := newHarness(t, 0, Options{}, false)
	placeBelt(h, cell(0, 0))
	h.placer.EnterDeleteMode()

	require.True(t, h.tap(cell(0, 0)))
	assert.Zero(t, h.eco.balance)
	require.Len(t, h.deletions, 1)
	assert.Zero(t, h.deletions[0].Refund)
}

func TestDelete_TapOnEmptyCellDoesNothing(t *testing.T) {
	h := newHarness(t, 0, Options{}, false)
	h.placer.EnterDeleteMode()

	assert.False(t, h.tap(cell(0, 0)))
	assert.Zero(t, h.sim.reseeded)
}

func TestDelete_RetreatUnmarks(t *testing.T) {
	h := newHarness(t, 0, Options{}, false)
	for x := int32(0); x < 3; x++ {
		placeBelt(h, cell(x, 0))
	}
	h.placer.EnterDeleteMode()

	h.placer.OnPointerDown(at(cell(0, 0)))
	h.placer.OnPointerMove(at(cell(2, 0)))
	h.placer.OnPointerMove(at(cell(1, 0)))
	assert.Equal(t, []grid.Cell{cell(0, 0), cell(1, 0)}, h.placer.Marks())

	h.placer.OnPointerMove(at(cell(0, 0)))
	assert.Empty(t, h.placer.Marks())

	assert.False(t, h.placer.OnPointerUp())
	assert.Equal(t, 3, h.grid.Count())
}

func TestDelete_FootprintRemovedOnce(t *testing.T) {
	h := newHarness(t, 0, Options{RefundOnDelete: true}, false)
	h.grid.SetCellContent(cell(0, 0), &grid.Content{Kind: grid.UnitMachine, Footprint: grid.Size{W: 2, H: 2}})
	h.grid.AddItems(cell(1, 1), 4)
	h.placer.EnterDeleteMode()

	require.True(t, h.drag(cell(0, 0), cell(1, 0)))
	assert.Zero(t, h.grid.Count())
	assert.Zero(t, h.grid.Items(cell(1, 1)))
	assert.Equal(t, machineCost, h.eco.balance)
	assert.Len(t, h.deletions, 1)
	assert.Len(t, h.sim.registered, 4)
}

func TestDelete_CancelsBlueprintImmediately(t *testing.T) {
	h := newHarness(t, 100, Options{Blueprints: true}, true)
	h.placer.BeginPreview()
	require.True(t, h.tap(cell(0, 0)))
	require.True(t, h.grid.CellInfo(cell(0, 0)).Blueprint)

	h.placer.EnterDeleteMode()
	h.placer.OnPointerDown(at(cell(0, 0)))
	h.placer.OnPointerMove(at(cell(1, 0)))
	assert.Empty(t, h.placer.Marks(), "blueprints are cancelled, not marked")
	assert.Equal(t, 1, h.jobs.cancelled)
	assert.Equal(t, 100, h.eco.balance)
	h.placer.Cancel()
	assert.Zero(t, h.grid.Count())
}

func TestDeletionEngine_Precedence(t *testing.T) {
	h := newHarness(t, 0, Options{RefundOnDelete: true}, false)
	d := NewDeletionEngine(h.deps(), true, zaptest.NewLogger(t))

	h.grid.SetLogical(cell(0, 0), grid.UnitPipe)
	placeBelt(h, cell(1, 0))

	require.NoError(t, d.Mark(cell(0, 0)))
	require.NoError(t, d.Mark(cell(1, 0)))
	assert.ErrorIs(t, d.Mark(cell(1, 0)), ErrAlreadyMarked)
	assert.ErrorIs(t, d.Mark(cell(9, 9)), ErrNothingToDelete)

	removals := d.Commit()
	require.Len(t, removals, 2)
	assert.True(t, removals[0].Logical)
	assert.Zero(t, removals[0].Refund, "logical cells carry no construction cost")
	assert.Equal(t, grid.UnitBelt, removals[1].Kind)
	assert.Equal(t, beltCost, removals[1].Refund)
	assert.Empty(t, d.Marks())
}

func TestDeletionEngine_SkipsCellsEmptiedSinceMarking(t *testing.T) {
	h := newHarness(t, 0, Options{}, false)
	d := NewDeletionEngine(h.deps(), false, zaptest.NewLogger(t))
	placeBelt(h, cell(0, 0))

	require.NoError(t, d.Mark(cell(0, 0)))
	h.grid.ClearCell(cell(0, 0))

	assert.Empty(t, d.Commit())
	assert.Zero(t, h.sim.reseeded)
}
