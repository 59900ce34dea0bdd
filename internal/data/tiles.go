package data

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// TeleportDef describes where stepping on a teleport tile takes the player.
// A nil Spawn means the target level's entry point.
type TeleportDef struct {
	Type  string `yaml:"type"`
	Level int    `yaml:"level"`
	Spawn *Point `yaml:"spawn"`
}

// PlayerDef holds the player's fixed parameters.
type PlayerDef struct {
	MaxHealth     int    `yaml:"max_health"`
	UnarmedDamage int    `yaml:"unarmed_damage"`
	Marker        string `yaml:"marker"`
	FallenMarker  string `yaml:"fallen_marker"`
	StartLevel    int    `yaml:"start_level"`
	StartPos      Point  `yaml:"start_pos"`
	ReviveLevel   int    `yaml:"revive_level"`
	RevivePos     Point  `yaml:"revive_pos"`
}

type tilesFile struct {
	Rows              int                      `yaml:"rows"`
	Cols              int                      `yaml:"cols"`
	Player            PlayerDef                `yaml:"player"`
	RestrictedTerrain []string                 `yaml:"restricted_terrain"`
	Walkable          []string                 `yaml:"walkable"`
	Pickups           []string                 `yaml:"pickups"`
	WeakOccupants     []string                 `yaml:"weak_occupants"`
	Teleports         []TeleportDef            `yaml:"teleports"`
	EntryPoints       map[int]Point            `yaml:"entry_points"`
	RespawnDelays     map[string]time.Duration `yaml:"respawn_delays"`
}

// teleportPattern matches "portal-to-3", "rope-to-1", "hole-to-5".
var teleportPattern = regexp.MustCompile(`^(portal|rope|hole)-to-(\d+)$`)

// TileTable holds the tile vocabulary: which terrain is restricted and how
// each decoration type behaves when the player steps on it.
type TileTable struct {
	rows, cols    int
	player        PlayerDef
	restricted    []string
	walkable      map[string]bool
	pickups       map[string]bool
	weak          map[string]bool
	teleports     map[string]TeleportDef
	entryPoints   map[int]Point
	respawnDelays map[string]time.Duration
}

func (t *TileTable) Rows() int         { return t.rows }
func (t *TileTable) Cols() int         { return t.cols }
func (t *TileTable) Player() PlayerDef { return t.player }

// RestrictedTerrain returns the terrain codes that can never be entered.
func (t *TileTable) RestrictedTerrain() []string {
	return append([]string(nil), t.restricted...)
}

func (t *TileTable) IsWalkable(typ string) bool { return t.walkable[typ] }
func (t *TileTable) IsPickup(typ string) bool   { return t.pickups[typ] }

// IsWeak reports whether a respawn may overwrite a tile holding typ.
func (t *TileTable) IsWeak(typ string) bool { return t.weak[typ] }

// Teleport resolves an explicitly listed teleport type or one following the
// "<kind>-to-<level>" naming.
func (t *TileTable) Teleport(typ string) (TeleportDef, bool) {
	if def, ok := t.teleports[typ]; ok {
		return def, true
	}
	m := teleportPattern.FindStringSubmatch(typ)
	if m == nil {
		return TeleportDef{}, false
	}
	level, err := strconv.Atoi(m[2])
	if err != nil {
		return TeleportDef{}, false
	}
	return TeleportDef{Type: typ, Level: level}, true
}

// EntryPoint returns where the player lands in a level when no custom
// spawn applies.
func (t *TileTable) EntryPoint(levelID int) (Point, bool) {
	p, ok := t.entryPoints[levelID]
	return p, ok
}

// RespawnDelay returns the per-type delay, or the "default" entry.
func (t *TileTable) RespawnDelay(typ string) time.Duration {
	if d, ok := t.respawnDelays[typ]; ok {
		return d
	}
	return t.respawnDelays["default"]
}

// LoadTileTable parses tiles.yaml.
func LoadTileTable(raw []byte) (*TileTable, error) {
	var f tilesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse tiles: %w", err)
	}
	if f.Rows <= 0 || f.Cols <= 0 {
		return nil, fmt.Errorf("tiles: grid size %dx%d is invalid", f.Rows, f.Cols)
	}
	if _, ok := f.RespawnDelays["default"]; !ok {
		return nil, fmt.Errorf("tiles: respawn_delays needs a default entry")
	}
	if f.Player.MaxHealth <= 0 {
		return nil, fmt.Errorf("tiles: player.max_health must be positive")
	}

	t := &TileTable{
		rows:          f.Rows,
		cols:          f.Cols,
		player:        f.Player,
		restricted:    f.RestrictedTerrain,
		walkable:      toSet(f.Walkable),
		pickups:       toSet(f.Pickups),
		weak:          toSet(f.WeakOccupants),
		teleports:     make(map[string]TeleportDef, len(f.Teleports)),
		entryPoints:   f.EntryPoints,
		respawnDelays: f.RespawnDelays,
	}
	if t.entryPoints == nil {
		t.entryPoints = map[int]Point{}
	}
	for _, tp := range f.Teleports {
		if tp.Type == "" || tp.Level <= 0 {
			return nil, fmt.Errorf("tiles: teleport %q needs a positive level", tp.Type)
		}
		t.teleports[tp.Type] = tp
	}
	return t, nil
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
