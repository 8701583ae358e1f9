package board

import (
	"strings"
	"testing"

	"github.com/annel0/battleship3d/internal/geometry"
	"github.com/annel0/battleship3d/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestore(t *testing.T) {
	owner := NewOwner("captain", 3)
	b, err := NewBoard(owner, vec.Vec3{X: 4, Y: 4, Z: 4})
	require.NoError(t, err)

	_, err = b.Place(owner.ID, vec.Vec3{X: 0, Y: 1, Z: 1}, 3, geometry.Horizontal)
	require.NoError(t, err)
	_, err = b.Place(owner.ID, vec.Vec3{X: 3, Y: 3, Z: 0}, 2, geometry.Vertical)
	require.NoError(t, err)
	_, err = b.ResolveShot("XZ", 1, 0, true)
	require.NoError(t, err)

	snap := b.Snapshot()
	assert.Equal(t, b.ID(), snap.BoardID)
	assert.Len(t, snap.Ships, 2)
	assert.Equal(t, 2, snap.Ships[0].Health)

	restored, err := Restore(snap)
	require.NoError(t, err)

	assert.Equal(t, b.ID(), restored.ID())
	assert.Equal(t, b.Owner(), restored.Owner())
	assert.Equal(t, b.grids, restored.grids)
	assert.Equal(t, b.Ships(), restored.Ships())
	assert.Equal(t, snap, restored.Snapshot())

	// Лимит флота восстановлен
	_, err = restored.Place(owner.ID, vec.Vec3{X: 0, Y: 0, Z: 3}, 1, geometry.Horizontal)
	require.NoError(t, err)
	_, err = restored.Place(owner.ID, vec.Vec3{X: 1, Y: 0, Z: 3}, 1, geometry.Horizontal)
	assert.ErrorIs(t, err, ErrFleetFull)
}

func TestRestore_RejectsCorruptSnapshot(t *testing.T) {
	owner := NewOwner("captain", 0)
	b, err := NewBoard(owner, vec.Vec3{X: 3, Y: 3, Z: 3})
	require.NoError(t, err)
	_, err = b.Place(owner.ID, vec.Vec3{}, 2, geometry.Horizontal)
	require.NoError(t, err)

	snap := b.Snapshot()
	snap.Ships[0].Health = 5
	_, err = Restore(snap)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	snap = b.Snapshot()
	snap.Hits.Top = []vec.Vec2{{X: 2, Y: 2}}
	_, err = Restore(snap)
	assert.ErrorIs(t, err, ErrInvalidArgument, "попадание в пустую ячейку")

	snap = b.Snapshot()
	snap.Ships = append(snap.Ships, ShipRecord{ID: 1, Origin: vec.Vec3{X: 1}, Size: 1, Health: 1})
	_, err = Restore(snap)
	assert.ErrorIs(t, err, ErrOverlap)
}

func TestRestore_RejectsHealthInconsistentWithHits(t *testing.T) {
	owner := NewOwner("captain", 0)
	b, err := NewBoard(owner, vec.Vec3{X: 3, Y: 3, Z: 3})
	require.NoError(t, err)
	_, err = b.Place(owner.ID, vec.Vec3{}, 2, geometry.Horizontal)
	require.NoError(t, err)

	snap := b.Snapshot()
	snap.Ships[0].Health = 0
	_, err = Restore(snap)
	assert.ErrorIs(t, err, ErrInvalidArgument, "урон без отмеченных ячеек")

	_, err = b.ResolveShot("XY", 0, 0, false)
	require.NoError(t, err)
	snap = b.Snapshot()
	require.Equal(t, 1, snap.Ships[0].Health)
	_, err = Restore(snap)
	require.NoError(t, err)

	snap.Ships[0].Health = 2
	_, err = Restore(snap)
	assert.ErrorIs(t, err, ErrInvalidArgument, "отмеченные ячейки при полном здоровье")
}

func TestRender(t *testing.T) {
	b, owner := newTestBoard(t, 3, 2, 2)
	_, err := b.Place(owner.ID, vec.Vec3{X: 0, Y: 0, Z: 1}, 2, geometry.Horizontal)
	require.NoError(t, err)
	_, err = b.ResolveShot("XZ", 0, 0, true)
	require.NoError(t, err)

	top := b.Render(geometry.Top)
	lines := strings.Split(strings.TrimRight(top, "\n"), "\n")
	require.Len(t, lines, 3, "заголовок и две строки Z")
	assert.Contains(t, lines[0], "Z\\X")
	assert.Equal(t, []string{"0", "~", "~", "~"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"1", "X", "S", "~"}, strings.Fields(lines[2]))

	assert.Contains(t, b.String(), "SIDE:")
	assert.Empty(t, b.Render(geometry.ProjectionCount))
}
