package world

import (
	"errors"
	"testing"
	"time"

	"github.com/grokyworld/server/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	s := NewState(Options{RestrictedTerrain: []string{"stone", "darkstone"}, MaxHealth: 100})
	for id := 1; id <= 2; id++ {
		_, err := s.AddLevel(LevelInit{ID: id, Name: "L", Grid: data.FillGrid(6, 8, "grass")})
		require.NoError(t, err)
	}
	return s
}

func TestSetGridRecomputesRestricted(t *testing.T) {
	s := newTestState(t)
	grid := data.FillGrid(6, 8, "grass")
	grid[2][3] = "stone"
	grid[0][0] = "darkstone"

	require.NoError(t, s.SetGrid(1, grid))
	l, _ := s.Level(1)

	assert.True(t, l.IsRestricted(P(3, 2)))
	assert.True(t, l.IsRestricted(P(0, 0)))
	assert.False(t, l.IsRestricted(P(2, 3)))
	assert.Equal(t, 2, l.RestrictedCount())

	grid[2][3] = "grass"
	assert.True(t, l.IsRestricted(P(3, 2)), "level keeps its own copy of the grid")

	assert.ErrorIs(t, s.SetGrid(9, grid), ErrUnknownLevel)
}

func TestChangeLevelRemovesStrayMarkers(t *testing.T) {
	s := newTestState(t)
	require.NoError(t, s.ChangeLevel(1, P(1, 1)))
	// a marker leaked onto level 2 by some earlier bug
	require.True(t, s.SetDecor(2, P(5, 5), "player"))

	require.NoError(t, s.ChangeLevel(2, P(2, 2)))

	assert.Equal(t, 2, s.CurrentID())
	l1, _ := s.Level(1)
	l2, _ := s.Level(2)
	assert.True(t, l1.IsEmpty(P(1, 1)))
	_, placed := l1.PlayerPos()
	assert.False(t, placed)
	assert.True(t, l2.IsEmpty(P(5, 5)))
	r, _ := l2.At(P(2, 2))
	assert.True(t, r.IsDecor("player"))
	pp, _ := s.PlayerPos()
	assert.Equal(t, P(2, 2), pp)
}

func TestChangeLevelUnknownTargetIsNoop(t *testing.T) {
	s := newTestState(t)
	require.NoError(t, s.ChangeLevel(1, P(1, 1)))

	err := s.ChangeLevel(42, P(1, 1))
	assert.ErrorIs(t, err, ErrUnknownLevel)
	assert.Equal(t, 1, s.CurrentID())
	pp, _ := s.PlayerPos()
	assert.Equal(t, P(1, 1), pp)
}

func TestChangeLevelRejectsRestrictedSpawn(t *testing.T) {
	s := newTestState(t)
	grid := data.FillGrid(6, 8, "darkstone")
	require.NoError(t, s.SetGrid(2, grid))
	require.NoError(t, s.ChangeLevel(1, P(1, 1)))

	assert.ErrorIs(t, s.ChangeLevel(2, P(1, 1)), ErrRestricted)
	assert.Equal(t, 1, s.CurrentID())
}

func TestPlayerMarkerSkipsDecorations(t *testing.T) {
	s := newTestState(t)
	require.True(t, s.SetDecor(1, P(2, 1), "bridge"))
	require.NoError(t, s.ChangeLevel(1, P(1, 1)))

	require.NoError(t, s.SetPlayerPos(1, P(2, 1)))
	l, _ := s.Level(1)
	r, _ := l.At(P(2, 1))
	assert.True(t, r.IsDecor("bridge"))
	assert.True(t, l.IsEmpty(P(1, 1)), "old marker removed")

	require.NoError(t, s.SetPlayerPos(1, P(3, 1)))
	r, _ = l.At(P(2, 1))
	assert.True(t, r.IsDecor("bridge"), "leaving does not disturb the decoration")
}

func TestSpawnAndKillKeepRegistryInStep(t *testing.T) {
	s := newTestState(t)
	id, err := s.SpawnEntity(1, P(4, 4), EntityInfo{Type: "spider", Origin: P(4, 4)}, 100)
	require.NoError(t, err)

	reg := s.Registry()
	assert.True(t, reg.IsAlive(id))
	assert.Equal(t, "spider", reg.TypeOf(id))
	hp, _ := reg.HealthOf(id)
	assert.Equal(t, 100, hp)
	assert.Equal(t, "spider", s.TypeAt(1, P(4, 4)))

	_, err = s.SpawnEntity(1, P(4, 4), EntityInfo{Type: "skeleton"}, 100)
	assert.ErrorIs(t, err, ErrOccupied)

	info, at, ok := s.KillEntity(id, "gold")
	require.True(t, ok)
	assert.Equal(t, "spider", info.Type)
	assert.Equal(t, P(4, 4), at)
	assert.False(t, reg.IsAlive(id))
	assert.Equal(t, "", reg.TypeOf(id))
	_, ok = reg.HealthOf(id)
	assert.False(t, ok)
	assert.Equal(t, "gold", s.TypeAt(1, P(4, 4)))

	_, _, ok = s.KillEntity(id, "")
	assert.False(t, ok, "double kill is a no-op")
}

func TestObjectsEditorLeavesEntitiesAlone(t *testing.T) {
	s := newTestState(t)
	id, err := s.SpawnEntity(1, P(1, 1), EntityInfo{Type: "spider"}, 100)
	require.NoError(t, err)

	require.NoError(t, s.SetObjects(1, func(e ObjectsEditor) {
		assert.False(t, e.Set(P(1, 1), "treeobject"))
		assert.False(t, e.Clear(P(1, 1)))
		assert.True(t, e.Set(P(2, 1), "treeobject"))
		assert.False(t, e.Set(P(99, 1), "treeobject"))
	}))
	got, ok := s.EntityAt(1, P(1, 1))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestMoveEntitiesVetoesSharedTargets(t *testing.T) {
	s := newTestState(t)
	a, _ := s.SpawnEntity(1, P(1, 2), EntityInfo{Type: "spider"}, 100)
	b, _ := s.SpawnEntity(1, P(3, 2), EntityInfo{Type: "spider"}, 100)
	c, _ := s.SpawnEntity(1, P(5, 5), EntityInfo{Type: "spider"}, 100)

	applied, rejected := s.MoveEntities(1, []Move{
		{ID: a, From: P(1, 2), To: P(2, 2)},
		{ID: b, From: P(3, 2), To: P(2, 2)},
		{ID: c, From: P(5, 5), To: P(5, 4)},
	})

	assert.Len(t, applied, 1)
	assert.Len(t, rejected, 2)
	_, pa, _ := s.EntityPos(a)
	_, pb, _ := s.EntityPos(b)
	_, pc, _ := s.EntityPos(c)
	assert.Equal(t, P(1, 2), pa)
	assert.Equal(t, P(3, 2), pb)
	assert.Equal(t, P(5, 4), pc)
}

func TestReconcileHealsDivergence(t *testing.T) {
	s := newTestState(t)
	require.NoError(t, s.ChangeLevel(1, P(0, 0)))
	keep, _ := s.SpawnEntity(1, P(1, 1), EntityInfo{Type: "spider"}, 100)
	orphan, _ := s.SpawnEntity(1, P(2, 2), EntityInfo{Type: "spider"}, 100)

	l1, _ := s.Level(1)
	l2, _ := s.Level(2)
	delete(l1.objects, P(2, 2))             // orphan: registered, no tile
	l1.objects[P(3, 3)] = EntityRef(keep)    // duplicate tile
	l1.objects[P(4, 4)] = EntityRef(12345)   // dangling id
	l2.objects[P(5, 5)] = DecorRef("player") // stray marker

	repairs := s.Reconcile()

	kinds := map[RepairKind]int{}
	for _, r := range repairs {
		kinds[r.Kind]++
	}
	assert.Equal(t, map[RepairKind]int{
		RepairOrphanEntity:  1,
		RepairDuplicateTile: 1,
		RepairDanglingTile:  1,
		RepairStrayMarker:   1,
	}, kinds)
	assert.False(t, s.Registry().IsAlive(orphan))
	assert.True(t, s.Registry().IsAlive(keep))
	_, p, ok := s.EntityPos(keep)
	require.True(t, ok)
	assert.Equal(t, P(1, 1), p)
	assert.True(t, l1.IsEmpty(P(3, 3)))
	assert.True(t, l1.IsEmpty(P(4, 4)))

	assert.Empty(t, s.Reconcile(), "a healed world needs no repairs")
}

func TestRingSearchOrder(t *testing.T) {
	s := newTestState(t)
	l, _ := s.Level(1)
	center := P(3, 3)
	var visited []Pos
	_, found := l.RingSearch(center, 1, func(p Pos) bool {
		visited = append(visited, p)
		return false
	})
	assert.False(t, found)
	assert.Equal(t, []Pos{
		P(2, 2), P(2, 3), P(2, 4), P(3, 2), P(3, 4), P(4, 2), P(4, 3), P(4, 4),
	}, visited)

	p, found := l.RingSearch(center, 3, func(p Pos) bool { return p.Manhattan(center) == 4 })
	require.True(t, found)
	assert.Equal(t, P(1, 1), p)
}

func TestInventoryDebitIsAtomic(t *testing.T) {
	inv := Inventory{"woodobject": 2, "rockobject": 5}
	cost := data.Bundle{{Item: "rockobject", Count: 1}, {Item: "woodobject", Count: 3}}

	assert.False(t, inv.Debit(cost))
	assert.Equal(t, Inventory{"woodobject": 2, "rockobject": 5}, inv)

	inv.Add("woodobject", 1)
	assert.True(t, inv.Debit(cost))
	assert.Equal(t, Inventory{"rockobject": 4}, inv)
}

func TestSnapshotIsDetached(t *testing.T) {
	s := newTestState(t)
	require.NoError(t, s.ChangeLevel(1, P(1, 1)))
	s.Player().Inventory.Add("woodobject", 1)
	_, err := s.SpawnEntity(1, P(4, 4), EntityInfo{Type: "spider"}, 100)
	require.NoError(t, err)

	snap := s.Snapshot(time.Unix(10, 0))
	snap.Player.Inventory["woodobject"] = 99
	snap.Terrain[0][0] = "lava"
	snap.Objects["4,4"] = "nothing"

	assert.Equal(t, 1, s.Player().Inventory.Count("woodobject"))
	l, _ := s.Level(1)
	assert.Equal(t, "grass", l.Terrain(P(0, 0)))
	assert.Equal(t, "spider", s.TypeAt(1, P(4, 4)))
	require.Len(t, snap.Entities, 1)
	assert.Equal(t, 100, snap.Entities[0].HP)
	assert.True(t, snap.Player.Placed)
}

func TestErrorsAreSentinels(t *testing.T) {
	s := newTestState(t)
	err := s.SetPlayerPos(1, P(-1, 0))
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}
