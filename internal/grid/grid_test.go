package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirection_OppositeAndRotate(t *testing.T) {
	cases := []struct {
		d        Direction
		opposite Direction
		rotated  Direction
	}{
		{Up, Down, Right},
		{Right, Left, Down},
		{Down, Up, Left},
		{Left, Right, Up},
		{None, None, Up},
	}
	for _, tc := range cases {
		t.Run(tc.d.String(), func(t *testing.T) {
			assert.Equal(t, tc.opposite, tc.d.Opposite())
			assert.Equal(t, tc.rotated, tc.d.Rotate())
			dx, dy := tc.d.Delta()
			if tc.d.Valid() {
				assert.Equal(t, tc.d, DirectionOf(dx, dy))
			} else {
				assert.Equal(t, None, DirectionOf(dx, dy))
			}
		})
	}
	assert.Equal(t, None, DirectionOf(1, 1), "diagonals have no direction")
}

func TestParse(t *testing.T) {
	d, err := ParseDirection("East")
	require.NoError(t, err)
	assert.Equal(t, Right, d)
	_, err = ParseDirection("sideways")
	assert.Error(t, err)

	k, err := ParseUnitKind("machine")
	require.NoError(t, err)
	assert.Equal(t, UnitMachine, k)
	_, err = ParseUnitKind("none")
	assert.Error(t, err)
}

func TestMap_WorldToCellFloorsNegatives(t *testing.T) {
	m := NewMap(Config{CellSize: 2, Origin: Vec{X: 10, Y: 0}})
	assert.Equal(t, Cell{X: 0, Y: 0}, m.WorldToCell(Vec{X: 11.9, Y: 1.9}))
	assert.Equal(t, Cell{X: -1, Y: -1}, m.WorldToCell(Vec{X: 9.5, Y: -0.1}))

	centre := m.CellToWorld(Cell{X: 1, Y: 2}, 0.5)
	assert.Equal(t, Vec3{X: 13, Y: 5, Z: 0.5}, centre)
	assert.Equal(t, Cell{X: 1, Y: 2}, m.WorldToCell(Vec{X: centre.X, Y: centre.Y}))
}

func TestMap_BoundsReportedInCellInfo(t *testing.T) {
	m := NewMap(Config{CellSize: 1, Width: 4, Height: 4})
	assert.True(t, m.CellInfo(Cell{X: 3, Y: 3}).Empty())
	assert.True(t, m.CellInfo(Cell{X: 4, Y: 0}).OutOfBounds)
	assert.False(t, m.CellInfo(Cell{X: -1, Y: 0}).Empty())
}

func TestMap_FootprintOccupiesEveryCell(t *testing.T) {
	m := NewMap(Config{CellSize: 1})
	anchor := Cell{X: 2, Y: 2}
	id := m.SetCellContent(anchor, &Content{Kind: UnitMachine, Footprint: Size{W: 2, H: 2}, Prefab: "press"})
	require.False(t, id.IsZero())

	for _, c := range []Cell{{2, 2}, {3, 2}, {2, 3}, {3, 3}} {
		info := m.CellInfo(c)
		assert.Equal(t, UnitMachine, info.Occupied, c.String())
		assert.Equal(t, anchor, info.Anchor)
	}
	u, ok := m.MachineAt(Cell{X: 3, Y: 3})
	require.True(t, ok)
	assert.Equal(t, anchor, u.Anchor)
	assert.Len(t, u.Cells, 4)
	assert.Equal(t, "press", u.Prefab)

	_, ok = m.BeltAt(Cell{X: 3, Y: 3})
	assert.False(t, ok)

	m.DestroyEntity(id)
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 1, m.Flush())
	_, ok = m.MachineAt(anchor)
	assert.False(t, ok)
}

func TestMap_ReplaceDestroysPreviousOccupant(t *testing.T) {
	m := NewMap(Config{CellSize: 1})
	c := Cell{X: 1, Y: 1}
	old := m.SetCellContent(c, &Content{Kind: UnitBelt, Facing: Right, Blueprint: true, JobID: 9})
	bp, ok := m.BlueprintAt(c)
	require.True(t, ok)
	assert.Equal(t, uint64(9), bp.JobID)
	_, ok = m.BeltAt(c)
	assert.False(t, ok, "blueprints are not finished belts")

	m.SetCellContent(c, &Content{Kind: UnitCurve, Facing: Up, Entry: Left})
	m.Flush()
	assert.False(t, m.World().Alive(old))

	u, ok := m.BeltAt(c)
	require.True(t, ok)
	assert.Equal(t, UnitCurve, u.Kind)
	assert.Equal(t, Up, u.Facing)
	assert.Equal(t, Left, u.Entry)
	assert.False(t, m.CellInfo(c).Blueprint)
}

func TestMap_LogicalCellHasNoEntity(t *testing.T) {
	m := NewMap(Config{CellSize: 1})
	c := Cell{X: 5, Y: 5}
	m.SetLogical(c, UnitBelt)
	info := m.CellInfo(c)
	assert.Equal(t, UnitBelt, info.Occupied)
	assert.True(t, info.Entity.IsZero())
	_, ok := m.BeltAt(c)
	assert.False(t, ok)

	m.AddItems(c, 3)
	assert.Equal(t, 3, m.CellInfo(c).Items)
	m.ClearItems(c)
	m.ClearCell(c)
	assert.True(t, m.CellInfo(c).Empty())
	assert.Equal(t, 0, m.Items(c))
}

func TestSize_Cells(t *testing.T) {
	assert.Equal(t, []Cell{{1, 1}}, Size{}.Cells(Cell{X: 1, Y: 1}))
	assert.Equal(t, []Cell{{0, 0}, {1, 0}, {2, 0}}, Size{W: 3, H: 1}.Cells(Cell{}))
}
