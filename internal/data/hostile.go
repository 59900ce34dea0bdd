package data

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// HostileDef is a monster template.
type HostileDef struct {
	Type        string `yaml:"type"`
	Health      int    `yaml:"health"`
	Damage      int    `yaml:"damage"`
	ChaseRadius int    `yaml:"chase_radius"`
	Respawnable bool   `yaml:"respawnable"`
	Drop        string `yaml:"drop"` // marker left on the tile at death; empty clears it
}

// WeaponDef is an equippable weapon and the damage the player deals with it.
type WeaponDef struct {
	Item   string `yaml:"item"`
	Damage int    `yaml:"damage"`
}

type hostileListFile struct {
	Hostiles []HostileDef `yaml:"hostiles"`
	Weapons  []WeaponDef  `yaml:"weapons"`
}

// HostileTable holds monster templates indexed by type.
type HostileTable struct {
	hostiles map[string]*HostileDef
}

// Get returns a monster template, or nil if typ is not hostile.
func (t *HostileTable) Get(typ string) *HostileDef { return t.hostiles[typ] }
func (t *HostileTable) Count() int                 { return len(t.hostiles) }

// WeaponTable holds weapon stats in declaration order.
type WeaponTable struct {
	weapons []WeaponDef
	byItem  map[string]*WeaponDef
}

func (t *WeaponTable) Get(item string) *WeaponDef { return t.byItem[item] }
func (t *WeaponTable) Count() int                 { return len(t.weapons) }

// Best returns the strongest weapon for which has reports a positive count.
// Ties go to the weapon declared first.
func (t *WeaponTable) Best(has func(item string) int) *WeaponDef {
	var best *WeaponDef
	for i := range t.weapons {
		w := &t.weapons[i]
		if has(w.Item) <= 0 {
			continue
		}
		if best == nil || w.Damage > best.Damage {
			best = w
		}
	}
	return best
}

// LoadHostileTable parses hostile_list.yaml (monsters and weapons).
func LoadHostileTable(raw []byte) (*HostileTable, *WeaponTable, error) {
	var f hostileListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, nil, fmt.Errorf("parse hostile_list: %w", err)
	}
	ht := &HostileTable{hostiles: make(map[string]*HostileDef, len(f.Hostiles))}
	for i := range f.Hostiles {
		h := &f.Hostiles[i]
		if h.Health <= 0 {
			return nil, nil, fmt.Errorf("hostile %s: health must be positive", h.Type)
		}
		ht.hostiles[h.Type] = h
	}
	wt := &WeaponTable{weapons: f.Weapons, byItem: make(map[string]*WeaponDef, len(f.Weapons))}
	for i := range wt.weapons {
		wt.byItem[wt.weapons[i].Item] = &wt.weapons[i]
	}
	return ht, wt, nil
}
