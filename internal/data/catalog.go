package data

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

//go:embed defaults/*.yaml
var defaultFiles embed.FS

// TileKind is the closed set of behaviors an object tile can have. It is
// decided once per type when the catalog is built.
type TileKind uint8

const (
	TileBlocking TileKind = iota // solid decoration or unknown type
	TileWalkable
	TilePickup
	TileTeleport
	TileInteractive
	TileHostile
)

func (k TileKind) String() string {
	switch k {
	case TileWalkable:
		return "walkable"
	case TilePickup:
		return "pickup"
	case TileTeleport:
		return "teleport"
	case TileInteractive:
		return "interactive"
	case TileHostile:
		return "hostile"
	}
	return "blocking"
}

// InteractKind tells which interaction an interactive tile starts.
type InteractKind uint8

const (
	InteractNone InteractKind = iota
	InteractChop
	InteractTalk
	InteractOpen
)

func (k InteractKind) String() string {
	switch k {
	case InteractChop:
		return "chop"
	case InteractTalk:
		return "talk"
	case InteractOpen:
		return "open"
	}
	return "none"
}

// TileSemantics is the resolved behavior of one object type.
type TileSemantics struct {
	Kind     TileKind
	Interact InteractKind // TileInteractive only
	Teleport TeleportDef  // TileTeleport only
	Weak     bool         // respawns may overwrite it
}

// Catalog bundles every static table the simulation reads.
type Catalog struct {
	Tiles        *TileTable
	Hostiles     *HostileTable
	Weapons      *WeaponTable
	Interactions *InteractionTable
	Npcs         *NpcTable
	Shops        *ShopTable
	Quests       *QuestTable
	Levels       *LevelIndex

	semantics map[string]TileSemantics
}

// DefaultCatalog loads the built-in tables.
func DefaultCatalog() (*Catalog, error) {
	sub, err := fs.Sub(defaultFiles, "defaults")
	if err != nil {
		return nil, err
	}
	return LoadCatalog(sub)
}

// LoadCatalogDir loads tables from dir; files missing there come from the
// built-in set.
func LoadCatalogDir(dir string) (*Catalog, error) {
	sub, err := fs.Sub(defaultFiles, "defaults")
	if err != nil {
		return nil, err
	}
	return LoadCatalog(overlayFS{primary: os.DirFS(dir), fallback: sub})
}

// LoadCatalog reads every table from fsys.
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	read := func(name string) ([]byte, error) {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return raw, nil
	}

	c := &Catalog{}
	raw, err := read("tiles.yaml")
	if err != nil {
		return nil, err
	}
	if c.Tiles, err = LoadTileTable(raw); err != nil {
		return nil, err
	}
	if raw, err = read("hostile_list.yaml"); err != nil {
		return nil, err
	}
	if c.Hostiles, c.Weapons, err = LoadHostileTable(raw); err != nil {
		return nil, err
	}
	if raw, err = read("interaction_list.yaml"); err != nil {
		return nil, err
	}
	if c.Interactions, err = LoadInteractionTable(raw); err != nil {
		return nil, err
	}
	if raw, err = read("npc_list.yaml"); err != nil {
		return nil, err
	}
	if c.Npcs, err = LoadNpcTable(raw); err != nil {
		return nil, err
	}
	if raw, err = read("shop_list.yaml"); err != nil {
		return nil, err
	}
	if c.Shops, err = LoadShopTable(raw); err != nil {
		return nil, err
	}
	if raw, err = read("quest_list.yaml"); err != nil {
		return nil, err
	}
	if c.Quests, err = LoadQuestTable(raw); err != nil {
		return nil, err
	}
	if raw, err = read("level_list.yaml"); err != nil {
		return nil, err
	}
	if c.Levels, err = LoadLevelIndex(raw); err != nil {
		return nil, err
	}

	if err := c.crossCheck(); err != nil {
		return nil, err
	}
	c.semantics = make(map[string]TileSemantics, 64)
	c.prepare(c.knownTypes()...)
	return c, nil
}

// crossCheck verifies references between tables. Missing shops are not an
// error: the NPC tells the player it has nothing to sell.
func (c *Catalog) crossCheck() error {
	for typ, d := range c.Npcs.npcs {
		for _, q := range d.Quests {
			if c.Quests.Get(q) == nil {
				return fmt.Errorf("npc %s: unknown quest %q", typ, q)
			}
		}
	}
	for typ, o := range c.Interactions.openables {
		if o.Ambush != nil && c.Hostiles.Get(o.Ambush.Type) == nil {
			return fmt.Errorf("openable %s: ambush type %q is not hostile", typ, o.Ambush.Type)
		}
	}
	return nil
}

func (c *Catalog) knownTypes() []string {
	var types []string
	for t := range c.Hostiles.hostiles {
		types = append(types, t)
	}
	for t := range c.Interactions.choppables {
		types = append(types, t)
	}
	for t := range c.Interactions.openables {
		types = append(types, t)
	}
	for t := range c.Npcs.npcs {
		types = append(types, t)
	}
	for t := range c.Tiles.teleports {
		types = append(types, t)
	}
	for t := range c.Tiles.pickups {
		types = append(types, t)
	}
	for t := range c.Tiles.walkable {
		types = append(types, t)
	}
	for t := range c.Tiles.weak {
		types = append(types, t)
	}
	return types
}

// Prepare resolves the semantics of types found in loaded levels, so no
// type is classified on the move path.
func (c *Catalog) Prepare(seeds []LevelSeed) {
	for _, s := range seeds {
		for _, t := range s.Objects {
			c.prepare(t)
		}
		for _, w := range s.Waves {
			for _, t := range w {
				c.prepare(t)
			}
		}
	}
}

func (c *Catalog) prepare(types ...string) {
	for _, t := range types {
		if _, ok := c.semantics[t]; !ok {
			c.semantics[t] = c.classify(t)
		}
	}
}

// Semantics returns the behavior of an object type. Types never seen at
// load time are classified on the fly without being cached.
func (c *Catalog) Semantics(typ string) TileSemantics {
	if s, ok := c.semantics[typ]; ok {
		return s
	}
	return c.classify(typ)
}

func (c *Catalog) classify(typ string) TileSemantics {
	s := TileSemantics{Weak: c.Tiles.IsWeak(typ)}
	switch {
	case c.Hostiles.Get(typ) != nil:
		s.Kind = TileHostile
	case c.Interactions.Choppable(typ) != nil:
		s.Kind, s.Interact = TileInteractive, InteractChop
	case c.Npcs.Get(typ) != nil:
		s.Kind, s.Interact = TileInteractive, InteractTalk
	case c.Interactions.Openable(typ) != nil:
		s.Kind, s.Interact = TileInteractive, InteractOpen
	default:
		if tp, ok := c.Tiles.Teleport(typ); ok {
			s.Kind, s.Teleport = TileTeleport, tp
		} else if c.Tiles.IsPickup(typ) {
			s.Kind = TilePickup
		} else if c.Tiles.IsWalkable(typ) {
			s.Kind = TileWalkable
		}
	}
	return s
}

// overlayFS serves files from primary, falling back when they do not exist.
type overlayFS struct {
	primary, fallback fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return o.fallback.Open(name)
	}
	return nil, err
}
