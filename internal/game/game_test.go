package game

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/grokyworld/server/internal/config"
	"github.com/grokyworld/server/internal/data"
	"github.com/grokyworld/server/internal/handler"
	"github.com/grokyworld/server/internal/system"
	"github.com/grokyworld/server/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// The default catalog starts the player on level 1 at (2,14) of a 24x16 grid.
var start = world.P(2, 14)

func pt(x, y int) data.Point { return data.Point{X: x, Y: y} }

func grassSeed(id int, objects map[data.Point]string) data.LevelSeed {
	if objects == nil {
		objects = map[data.Point]string{}
	}
	return data.LevelSeed{
		ID:      id,
		Name:    fmt.Sprintf("Level %d", id),
		Grid:    data.FillGrid(16, 24, "grass"),
		Objects: objects,
	}
}

func newTestGame(t *testing.T, seeds ...data.LevelSeed) *Game {
	t.Helper()
	cat, err := data.DefaultCatalog()
	require.NoError(t, err)
	g, err := New(Options{
		Config:  config.Default(),
		Catalog: cat,
		Seeds:   seeds,
		Log:     zaptest.NewLogger(t, zaptest.Level(zapcore.WarnLevel)),
		Start:   epoch,
	})
	require.NoError(t, err)
	t.Cleanup(g.Close)
	return g
}

func send(t *testing.T, g *Game, in handler.Intent) {
	t.Helper()
	require.True(t, g.Submit(in))
	g.Tick()
}

func move(dir string) handler.Intent {
	return handler.Intent{Type: handler.IntentMove, Dir: dir}
}

func interact(p world.Pos) handler.Intent {
	return handler.Intent{Type: handler.IntentInteract, X: p.X, Y: p.Y}
}

func choose(slot int) handler.Intent {
	return handler.Intent{Type: handler.IntentChoose, Slot: slot}
}

func playerPos(t *testing.T, g *Game) world.Pos {
	t.Helper()
	p, ok := g.World.PlayerPos()
	require.True(t, ok, "player must be placed")
	return p
}

func TestNewBuildsLevelsFromSeeds(t *testing.T) {
	g := newTestGame(t,
		grassSeed(1, map[data.Point]string{pt(10, 3): "spider", pt(5, 5): "treeobject"}),
		grassSeed(2, nil),
	)

	assert.Equal(t, 1, g.World.CurrentID())
	assert.Equal(t, start, playerPos(t, g))

	id, ok := g.World.EntityAt(1, world.P(10, 3))
	require.True(t, ok, "hostiles become live entities")
	info, _ := g.World.Registry().Info(id)
	assert.Equal(t, "spider", info.Type)
	assert.Equal(t, world.P(10, 3), info.Origin)
	assert.Equal(t, "treeobject", g.World.TypeAt(1, world.P(5, 5)))
	assert.Equal(t, 1, g.World.Registry().Len())

	assert.Nil(t, g.Snapshot(), "nothing published before the first tick")
	g.Tick()
	snap := g.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 1, snap.LevelID)
	assert.Equal(t, start.X, snap.Player.X)
	assert.Equal(t, "spider", snap.Objects["10,3"])
}

func TestShippedMapsLoad(t *testing.T) {
	cat, err := data.DefaultCatalog()
	require.NoError(t, err)
	seeds, report := data.ResolveLevels(context.Background(), cat, data.DirSource{Dir: "../../data/maps", Catalog: cat})
	require.Empty(t, report.Errors)
	assert.Empty(t, report.Fallback)
	require.Len(t, seeds, 5)

	g := newTestGame(t, seeds...)
	assert.Equal(t, "Town", g.World.Current().Name)
	assert.Equal(t, start, playerPos(t, g))

	id, ok := g.World.EntityAt(2, world.P(12, 5))
	require.True(t, ok)
	assert.Equal(t, "spider", g.World.Registry().TypeOf(id))
}

func TestNewFailsWhenStartIsUnusable(t *testing.T) {
	cat, err := data.DefaultCatalog()
	require.NoError(t, err)
	seed := grassSeed(1, nil)
	seed.Grid = data.FillGrid(16, 24, "darkstone")

	_, err = New(Options{Config: config.Default(), Catalog: cat, Seeds: []data.LevelSeed{seed}, Start: epoch})
	assert.Error(t, err)
}

func TestMoveRejectsRestrictedAndOutOfBounds(t *testing.T) {
	seed := grassSeed(1, map[data.Point]string{pt(2, 13): "boulder"})
	seed.Grid[14][3] = "stone"
	g := newTestGame(t, seed)

	send(t, g, move("right"))
	assert.Equal(t, start, playerPos(t, g), "stone is restricted")

	send(t, g, move("up"))
	assert.Equal(t, start, playerPos(t, g), "decorations without behavior block")

	send(t, g, move("down"))
	assert.Equal(t, world.P(2, 15), playerPos(t, g))

	send(t, g, move("down"))
	assert.Equal(t, world.P(2, 15), playerPos(t, g), "bottom edge")

	l := g.World.Current()
	r, _ := l.At(world.P(2, 15))
	assert.True(t, r.IsDecor("player"))
	assert.True(t, l.IsEmpty(start), "old marker removed")
}

func TestPickupCreditsInventory(t *testing.T) {
	g := newTestGame(t, grassSeed(1, map[data.Point]string{pt(3, 14): "gold"}))

	send(t, g, move("e"))

	assert.Equal(t, world.P(3, 14), playerPos(t, g))
	assert.Equal(t, 1, g.World.Player().Inventory.Count("gold"))
	assert.Equal(t, "player", g.World.TypeAt(1, world.P(3, 14)))
}

func TestHostileCooldownGatesDamage(t *testing.T) {
	g := newTestGame(t, grassSeed(1, map[data.Point]string{pt(3, 14): "spider"}))
	p := g.World.Player()

	g.Tick()
	assert.Equal(t, 85, p.Health, "first contact hits at once")

	g.Advance(2900 * time.Millisecond)
	assert.Equal(t, 85, p.Health, "no second hit inside the cooldown")

	g.Tick()
	assert.Equal(t, 70, p.Health, "exactly one more hit once 3000ms elapsed")
}

func TestAllAdjacentHostilesLandTogether(t *testing.T) {
	g := newTestGame(t, grassSeed(1, map[data.Point]string{
		pt(1, 14): "spider",
		pt(3, 14): "skeleton",
		pt(2, 13): "spider",
	}))
	p := g.World.Player()

	g.Tick()
	assert.Equal(t, 60, p.Health, "15 + 10 + 15 in the same evaluation")
	assert.Equal(t, g.Deps.Now(), p.LastDamageAt)
}

func TestKilledHostileDropsAndRespawnsAtOrigin(t *testing.T) {
	g := newTestGame(t, grassSeed(1, map[data.Point]string{pt(3, 14): "spider"}))
	site := world.P(3, 14)

	// Unarmed hits of 25 every 1500ms: the fourth lands on tick 46.
	g.Advance(4500 * time.Millisecond)
	_, alive := g.World.EntityAt(1, site)
	require.True(t, alive)

	g.Tick()
	_, alive = g.World.EntityAt(1, site)
	assert.False(t, alive)
	assert.Equal(t, "gold", g.World.TypeAt(1, site))
	assert.Equal(t, 0, g.World.Registry().Len())
	l := g.World.Current()
	_, queued := l.Respawn(site, "spider")
	assert.True(t, queued)

	g.Advance(30 * time.Second)
	id, alive := g.World.EntityAt(1, site)
	require.True(t, alive, "respawn overwrites the weak drop")
	assert.Equal(t, "spider", g.World.Registry().TypeOf(id))
}

func TestRespawnRoundTrip(t *testing.T) {
	g := newTestGame(t, grassSeed(1, nil))
	key := world.P(10, 3)

	require.True(t, g.Respawn.Schedule(1, key, "spider", 3000*time.Millisecond, true))
	g.Advance(2900 * time.Millisecond)
	assert.Equal(t, 0, g.World.Registry().Len())

	g.Tick()
	placed := g.World.Entities(1)
	require.Len(t, placed, 1)
	got := placed[0]
	assert.LessOrEqual(t, got.Pos.Manhattan(key), 2, "at the key or one of its neighbors")
	assert.Equal(t, "spider", g.World.Registry().TypeOf(got.ID))
	lvl, at, ok := g.World.EntityPos(got.ID)
	require.True(t, ok)
	assert.Equal(t, 1, lvl)
	assert.Equal(t, got.Pos, at)
	l := g.World.Current()
	assert.Empty(t, l.RespawnQueue())
}

func TestRespawnScheduleIsIdempotent(t *testing.T) {
	g := newTestGame(t, grassSeed(1, nil))
	key := world.P(10, 3)

	require.True(t, g.Respawn.Schedule(1, key, "spider", 3*time.Second, true))
	require.True(t, g.Respawn.Schedule(1, key, "spider", 3*time.Second, true))
	assert.Len(t, g.World.Current().RespawnQueue(), 1)

	g.Advance(10 * time.Second)
	assert.Equal(t, 1, g.World.Registry().Len())
	assert.Len(t, g.World.Entities(1), 1)
	assert.Empty(t, g.World.Current().RespawnQueue())
}

func TestRescheduleReplacesDueTime(t *testing.T) {
	g := newTestGame(t, grassSeed(1, nil))
	key := world.P(10, 3)

	require.True(t, g.Respawn.Schedule(1, key, "spider", 3*time.Second, true))
	g.Advance(2 * time.Second)
	require.True(t, g.Respawn.Schedule(1, key, "spider", 3*time.Second, true))

	g.Advance(1500 * time.Millisecond)
	assert.Equal(t, 0, g.World.Registry().Len(), "the first timer was superseded")

	g.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1, g.World.Registry().Len())
}

func TestRespawnRetriesWhenBlocked(t *testing.T) {
	objects := map[data.Point]string{}
	for x := 9; x <= 11; x++ {
		for y := 2; y <= 4; y++ {
			objects[pt(x, y)] = "boulder"
		}
	}
	g := newTestGame(t, grassSeed(1, objects))
	key := world.P(10, 3)
	require.True(t, g.Respawn.Schedule(1, key, "spider", time.Second, true))

	g.Advance(time.Second)
	assert.Equal(t, 0, g.World.Registry().Len())
	it, ok := g.World.Current().Respawn(key, "spider")
	require.True(t, ok, "blocked item is queued again")
	assert.Equal(t, epoch.Add(3*time.Second), it.DueAt)

	g.World.ClearDecor(1, world.P(11, 4))
	g.Advance(2 * time.Second)
	_, alive := g.World.EntityAt(1, world.P(11, 4))
	assert.True(t, alive)
}

func TestAIVetoesSharedTarget(t *testing.T) {
	g := newTestGame(t, grassSeed(1, map[data.Point]string{
		pt(2, 11): "spider",
		pt(3, 12): "spider",
		pt(3, 13): "boulder",
	}))

	// Both spiders pick (2,12), so neither moves.
	applied, rejected := g.AI.Step()
	assert.Empty(t, applied)
	assert.Len(t, rejected, 2)
	_, ok := g.World.EntityAt(1, world.P(2, 11))
	assert.True(t, ok)
	_, ok = g.World.EntityAt(1, world.P(3, 12))
	assert.True(t, ok)
	assert.True(t, g.World.Current().IsEmpty(world.P(2, 12)))
}

func TestAIChasesWithinRadius(t *testing.T) {
	g := newTestGame(t, grassSeed(1, map[data.Point]string{
		pt(2, 10): "skeleton", // distance 4, radius 7
		pt(20, 2): "skeleton", // distance 30
	}))

	applied, _ := g.AI.Step()
	require.Len(t, applied, 1)
	assert.Equal(t, world.P(2, 11), applied[0].To)
	_, ok := g.World.EntityAt(1, world.P(20, 2))
	assert.True(t, ok)
}

func TestSingleInteractionSlot(t *testing.T) {
	g := newTestGame(t, grassSeed(1, map[data.Point]string{
		pt(2, 13): "treeobject",
		pt(3, 14): "villagerobject",
	}))

	send(t, g, interact(world.P(2, 13)))
	require.Equal(t, data.InteractChop, g.Interactions.Kind())

	send(t, g, interact(world.P(3, 14)))
	assert.Equal(t, data.InteractChop, g.Interactions.Kind(), "busy slot rejects a new start")

	send(t, g, handler.Intent{Type: handler.IntentCancel})
	assert.False(t, g.Interactions.Active())

	send(t, g, interact(world.P(3, 14)))
	assert.Equal(t, data.InteractTalk, g.Interactions.Kind())
}

func TestInteractRequiresAdjacency(t *testing.T) {
	g := newTestGame(t, grassSeed(1, map[data.Point]string{pt(3, 13): "treeobject"}))

	send(t, g, interact(world.P(3, 13)))
	assert.False(t, g.Interactions.Active(), "diagonal is not adjacent")
}

func TestChopDropsOnNearestFreeTile(t *testing.T) {
	tree := world.P(2, 13)
	objects := map[data.Point]string{pt(tree.X, tree.Y): "treeobject"}
	for _, n := range tree.Neighbors8() {
		if n != start {
			objects[pt(n.X, n.Y)] = "boulder"
		}
	}
	g := newTestGame(t, grassSeed(1, objects))

	send(t, g, move("up"))
	require.Equal(t, data.InteractChop, g.Interactions.Kind(), "walking into a tree starts chopping")
	assert.Equal(t, start, playerPos(t, g))

	g.Advance(2900 * time.Millisecond)
	assert.Equal(t, "treeobject", g.World.TypeAt(1, tree))
	view := g.Interactions.View(g.Clock.Now())
	assert.InDelta(t, 2900.0/3000.0, view.Progress, 0.001)

	g.Tick()
	assert.False(t, g.Interactions.Active())
	assert.Equal(t, "timberwoodchoppedobject", g.World.TypeAt(1, tree))
	// Ring 1 is full, so the first ring-2 tile in scan order takes the drop.
	assert.Equal(t, "woodobject", g.World.TypeAt(1, world.P(0, 11)))

	g.Advance(15 * time.Second)
	assert.Equal(t, "treeobject", g.World.TypeAt(1, tree), "tree grows back over its stump")
}

func TestMovingAwayCancelsChop(t *testing.T) {
	g := newTestGame(t, grassSeed(1, map[data.Point]string{pt(2, 13): "treeobject"}))

	send(t, g, interact(world.P(2, 13)))
	require.True(t, g.Interactions.Active())
	send(t, g, move("left"))
	assert.False(t, g.Interactions.Active())

	g.Advance(5 * time.Second)
	assert.Equal(t, "treeobject", g.World.TypeAt(1, world.P(2, 13)))
	assert.Equal(t, 0, g.World.Player().Inventory.Count("woodobject"))
	for _, typ := range g.Snapshot().Objects {
		assert.NotEqual(t, "woodobject", typ)
	}
}

func TestPurchaseIsAtomic(t *testing.T) {
	g := newTestGame(t, grassSeed(1, map[data.Point]string{pt(3, 14): "mechanic001"}))
	inv := g.World.Player().Inventory
	inv.Add("woodobject", 1)
	inv.Add("rockobject", 1)

	send(t, g, interact(world.P(3, 14)))
	send(t, g, choose(0)) // weapons shop
	view := g.Interactions.View(g.Clock.Now())
	assert.Equal(t, []string{"Buy Dagger", "Buy Short Sword", "Back"}, view.Choices)
	assert.Contains(t, view.Message, "Dagger – 2 Wood, 1 Rock")

	send(t, g, choose(0))
	assert.Equal(t, "You don't have enough materials!", g.Interactions.View(g.Clock.Now()).Message)
	assert.Equal(t, 1, inv.Count("woodobject"), "nothing debited on failure")
	assert.Equal(t, 1, inv.Count("rockobject"))
	assert.Equal(t, 0, inv.Count("dagger"))

	send(t, g, choose(0)) // acknowledge
	assert.False(t, g.Interactions.Active())

	inv.Add("woodobject", 1)
	send(t, g, interact(world.P(3, 14)))
	send(t, g, choose(0))
	send(t, g, choose(0))
	assert.Equal(t, "You bought the Dagger!", g.Interactions.View(g.Clock.Now()).Message)
	assert.Equal(t, 0, inv.Count("woodobject"))
	assert.Equal(t, 0, inv.Count("rockobject"))
	assert.Equal(t, 1, inv.Count("dagger"))
	assert.Equal(t, "dagger", g.World.Player().Weapon(), "first weapon is equipped")
}

func TestQuestAcceptAndTurnIn(t *testing.T) {
	g := newTestGame(t, grassSeed(1, map[data.Point]string{pt(3, 14): "campfireshaman"}))
	inv := g.World.Player().Inventory

	assert.Equal(t, system.QuestMarkerAvailable, g.Interactions.QuestMarker("campfireshaman"))
	send(t, g, interact(world.P(3, 14)))
	view := g.Interactions.View(g.Clock.Now())
	assert.Equal(t, []string{"Accept: Stones and Wood", "Goodbye."}, view.Choices)

	send(t, g, choose(0))
	assert.Equal(t, world.QuestActive, g.World.Player().Quests["collect_stones_wood"])
	assert.Empty(t, g.Interactions.QuestMarker("campfireshaman"))
	send(t, g, choose(0))

	inv.Add("rockobject", 2)
	inv.Add("woodobject", 1)
	send(t, g, interact(world.P(3, 14)))
	send(t, g, choose(0))
	assert.Equal(t, "Stones and Wood: 2/5 Rock, 1/5 Wood", g.Interactions.View(g.Clock.Now()).Message)
	assert.Equal(t, 2, inv.Count("rockobject"))
	send(t, g, choose(0))

	inv.Add("rockobject", 3)
	inv.Add("woodobject", 4)
	assert.Equal(t, system.QuestMarkerReady, g.Interactions.QuestMarker("campfireshaman"))
	send(t, g, interact(world.P(3, 14)))
	send(t, g, choose(0))
	assert.Equal(t, "Well done! Take this: 10 Gold.", g.Interactions.View(g.Clock.Now()).Message)
	assert.Equal(t, 10, inv.Count("gold"))
	assert.Equal(t, 0, inv.Count("rockobject"))
	assert.Equal(t, world.QuestDone, g.World.Player().Quests["collect_stones_wood"])
	assert.Equal(t, system.QuestMarkerAvailable, g.Interactions.QuestMarker("campfireshaman"), "next quest offered")
}

func TestOpenChestCreditsAndAmbushes(t *testing.T) {
	chest := world.P(3, 14)
	g := newTestGame(t, grassSeed(1, map[data.Point]string{pt(chest.X, chest.Y): "chest-closed"}))

	send(t, g, interact(chest))
	assert.False(t, g.Interactions.Active(), "opening resolves at once")
	assert.Equal(t, "chest-open", g.World.TypeAt(1, chest))
	assert.Equal(t, 1, g.World.Player().Inventory.Count("dungeon key"))

	g.Advance(time.Second)
	placed := g.World.Entities(1)
	require.Len(t, placed, 2)
	for _, e := range placed {
		assert.Equal(t, "spider", g.World.Registry().TypeOf(e.ID))
		assert.NotEqual(t, start, e.Pos)
	}
	assert.Contains(t, g.Snapshot().Notices, "You just found a key! ... and something doesn't feel right.")
}

func TestTeleportChangesLevel(t *testing.T) {
	g := newTestGame(t,
		grassSeed(1, map[data.Point]string{pt(3, 14): "portal-to-2"}),
		grassSeed(2, nil),
	)

	send(t, g, move("right"))
	assert.Equal(t, 1, g.World.CurrentID())
	assert.Equal(t, "portal-to-2", g.World.TypeAt(1, world.P(3, 14)), "portal stays under the player")

	g.Tick()
	assert.Equal(t, 2, g.World.CurrentID())
	assert.Equal(t, world.P(1, 2), playerPos(t, g), "level 2 entry point")
	l1, _ := g.World.Level(1)
	_, placed := l1.PlayerPos()
	assert.False(t, placed)
}

func TestTeleportAbortsIfPlayerStepsOff(t *testing.T) {
	g := newTestGame(t,
		grassSeed(1, map[data.Point]string{pt(3, 14): "portal-to-2"}),
		grassSeed(2, nil),
	)
	require.True(t, g.Submit(move("right")))
	require.True(t, g.Submit(move("left")))
	g.Tick()
	g.Tick()

	assert.Equal(t, 1, g.World.CurrentID())
	assert.Equal(t, start, playerPos(t, g))
}

func TestDeathAndRevive(t *testing.T) {
	g := newTestGame(t, grassSeed(1, map[data.Point]string{pt(3, 14): "spider"}))
	p := g.World.Player()
	p.Health = 10

	g.Tick()
	require.True(t, p.Dead)
	assert.Equal(t, 0, p.Health)
	assert.Equal(t, "dove", g.World.TypeAt(1, start))
	spider, _ := g.World.EntityAt(1, world.P(3, 14))
	hp, _ := g.World.Registry().HealthOf(spider)
	assert.Equal(t, 100, hp, "a fallen player does not strike back")

	send(t, g, move("up"))
	assert.Equal(t, start, playerPos(t, g), "moves are ignored while dead")

	send(t, g, handler.Intent{Type: handler.IntentRevive})
	assert.False(t, p.Dead)
	assert.Equal(t, p.MaxHealth, p.Health)
	assert.Equal(t, start, playerPos(t, g))
	assert.Equal(t, "player", g.World.TypeAt(1, start))

	send(t, g, handler.Intent{Type: handler.IntentRevive})
	assert.False(t, p.Dead, "revive is not accepted while alive")
}

func TestRegenWaitsForDelayAndSkipsTheFallen(t *testing.T) {
	g := newTestGame(t, grassSeed(1, nil))
	p := g.World.Player()
	p.Damage(30, g.Deps.Now())

	// Pulses every 2s; the first one past the 7s delay is at 8s.
	g.Advance(6900 * time.Millisecond)
	assert.Equal(t, 70, p.Health, "no regen inside the delay")

	g.Advance(1100 * time.Millisecond)
	assert.Equal(t, 71, p.Health)

	g.Advance(2 * time.Second)
	assert.Equal(t, 72, p.Health, "one point per pulse")

	g.Reaper.KillPlayer()
	g.Advance(10 * time.Second)
	assert.Equal(t, 0, p.Health, "the fallen do not regenerate")
}

func TestFallenMarkerCoversDecorationUntilRevive(t *testing.T) {
	g := newTestGame(t, grassSeed(1, map[data.Point]string{
		pt(2, 14): "bridge",
		pt(3, 14): "spider",
	}))
	p := g.World.Player()
	require.Equal(t, start, playerPos(t, g))
	p.Health = 5

	g.Tick()
	require.True(t, p.Dead)
	assert.Equal(t, "dove", g.World.TypeAt(1, start))

	send(t, g, handler.Intent{Type: handler.IntentRevive})
	assert.False(t, p.Dead)
	assert.Equal(t, start, playerPos(t, g))
	assert.Equal(t, "bridge", g.World.TypeAt(1, start))
}

func TestWavesAdvanceAndComplete(t *testing.T) {
	arena := grassSeed(2, nil)
	arena.Waves = map[int]map[data.Point]string{
		1: {pt(10, 5): "littlespider"},
		2: {pt(12, 5): "littlespider", pt(14, 5): "cavespider"},
	}
	g := newTestGame(t, grassSeed(1, nil), arena)
	l, _ := g.World.Level(2)
	w := l.Wave()
	require.NotNil(t, w)

	assert.Equal(t, 1, w.Current)
	require.Equal(t, 1, w.Active.Size(), "wave 1 is placed during start-up")
	first, ok := g.World.EntityAt(2, world.P(10, 5))
	require.True(t, ok)

	require.True(t, g.Reaper.KillEntity(first))
	assert.Equal(t, 2, w.Current, "upcoming index is visible during the delay")
	assert.True(t, w.Incoming)
	assert.Equal(t, 0, w.Active.Size())

	g.Advance(5 * time.Second)
	assert.False(t, w.Incoming)
	assert.Equal(t, 2, w.Active.Size())
	assert.Equal(t, 0, w.Pending)
	for p, typ := range map[world.Pos]string{world.P(12, 5): "littlespider", world.P(14, 5): "cavespider"} {
		id, ok := g.World.EntityAt(2, p)
		require.True(t, ok, "wave 2 entity at %s", p)
		assert.Equal(t, typ, g.World.Registry().TypeOf(id))
		assert.True(t, w.Active.Has(id))
		info, _ := g.World.Registry().Info(id)
		assert.Equal(t, 2, info.Wave)
	}

	for _, e := range g.World.Entities(2) {
		require.True(t, g.Reaper.KillEntity(e.ID))
	}
	assert.True(t, w.Completed)
	assert.False(t, w.HasNext())
	_, queued := l.Respawn(world.P(10, 5), "littlespider")
	assert.False(t, queued, "wave entities never respawn")
}

func TestSubmitNeverBlocks(t *testing.T) {
	g := newTestGame(t, grassSeed(1, nil))
	accepted := 0
	for i := 0; i < 1000; i++ {
		if g.Submit(move("up")) {
			accepted++
		}
	}
	assert.Equal(t, g.cfg.Gateway.InQueueSize, accepted)
}
