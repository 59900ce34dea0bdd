package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Equal(t, 16, c.Tiles.Rows())
	assert.Equal(t, 24, c.Tiles.Cols())
	assert.Equal(t, 5, c.Levels.Count())
	assert.Equal(t, 100, c.Tiles.Player().MaxHealth)
	assert.Contains(t, c.Tiles.RestrictedTerrain(), "darkstone")
	assert.Equal(t, 3, c.Quests.Count())
}

func TestSemantics(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	cases := []struct {
		typ      string
		kind     TileKind
		interact InteractKind
	}{
		{"spider", TileHostile, InteractNone},
		{"treeobject", TileInteractive, InteractChop},
		{"farmer001", TileInteractive, InteractTalk},
		{"chest-closed", TileInteractive, InteractOpen},
		{"woodobject", TilePickup, InteractNone},
		{"bridge", TileWalkable, InteractNone},
		{"portal-to-3", TileTeleport, InteractNone},
		{"housewall", TileBlocking, InteractNone},
	}
	for _, tc := range cases {
		t.Run(tc.typ, func(t *testing.T) {
			s := c.Semantics(tc.typ)
			assert.Equal(t, tc.kind, s.Kind)
			assert.Equal(t, tc.interact, s.Interact)
		})
	}

	assert.True(t, c.Semantics("gold").Weak)
	assert.True(t, c.Semantics("timberwoodchoppedobject").Weak)
	assert.False(t, c.Semantics("treeobject").Weak)
}

func TestTeleports(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	tp := c.Semantics("portal-to-1").Teleport
	assert.Equal(t, 1, tp.Level)
	require.NotNil(t, tp.Spawn)
	assert.Equal(t, Point{22, 8}, *tp.Spawn)

	tp = c.Semantics("hole-to-4").Teleport
	assert.Equal(t, 4, tp.Level)
	assert.Nil(t, tp.Spawn)

	tp = c.Semantics("ropeobject").Teleport
	assert.Equal(t, 1, tp.Level)
	assert.Equal(t, Point{21, 14}, *tp.Spawn)

	_, ok := c.Tiles.Teleport("portal-to-")
	assert.False(t, ok)
}

func TestRespawnDelays(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, c.Tiles.RespawnDelay("treeobject"))
	assert.Equal(t, 30*time.Second, c.Tiles.RespawnDelay("spider"))
	assert.Equal(t, 45*time.Second, c.Tiles.RespawnDelay("skeleton"))
	assert.Equal(t, 10*time.Second, c.Tiles.RespawnDelay("never-heard-of-it"))
}

func TestShopCostKeepsFileOrder(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	shop := c.Shops.Get("equipment")
	require.NotNil(t, shop)
	require.Len(t, shop.Items, 2)
	assert.Equal(t, "Saw", shop.Items[0].Name)
	assert.Equal(t, "1 Wood, 1 Rock", shop.Items[0].Cost.Describe())
	assert.Nil(t, c.Shops.Get("forge"))
}

func TestWeaponBest(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	inv := map[string]int{"dagger": 1, "axe": 1}
	best := c.Weapons.Best(func(item string) int { return inv[item] })
	require.NotNil(t, best)
	assert.Equal(t, "axe", best.Item)

	assert.Nil(t, c.Weapons.Best(func(string) int { return 0 }))
}

func TestBundleRejectsNonPositive(t *testing.T) {
	_, err := LoadQuestTable([]byte(`
quests:
  - id: q
    require: {woodobject: 0}
`))
	assert.Error(t, err)
}

func TestNpcChoicesMustFitSlots(t *testing.T) {
	_, err := LoadNpcTable([]byte(`
npcs:
  - type: elder
    quests: [q]
    choices:
      - {text: "Trade", action: close}
      - {text: "News", action: say, line: "Quiet."}
      - {text: "Bye", action: close}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elder")

	_, err = LoadNpcTable([]byte(`
npcs:
  - type: elder
    quests: [q]
    choices:
      - {text: "News", action: say, line: "Quiet."}
      - {text: "Bye", action: close}
`))
	assert.NoError(t, err)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Wood", DisplayName("woodobject"))
	assert.Equal(t, "Dungeon Key", DisplayName("dungeon key"))
	assert.Equal(t, "Saw", DisplayName("saw"))
}
