package handler

import (
	"github.com/grokyworld/server/internal/core/event"
	"github.com/grokyworld/server/internal/data"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// Credit adds n of item to the inventory and re-checks the weapon slot.
func Credit(deps *Deps, item string, n int, reason string) {
	if n <= 0 {
		return
	}
	deps.World.Player().Inventory.Add(item, n)
	event.Emit(deps.Bus, event.ItemCredited{Item: item, Count: n, Reason: reason})
	AutoEquip(deps)
}

// CreditBundle credits every entry of b.
func CreditBundle(deps *Deps, b data.Bundle, reason string) {
	for _, ic := range b {
		Credit(deps, ic.Item, ic.Count, reason)
	}
}

// AutoEquip puts the strongest owned weapon in the weapon slot when it is
// empty or holds a weapon no longer owned.
func AutoEquip(deps *Deps) {
	p := deps.World.Player()
	if cur := p.Weapon(); cur != "" && p.Inventory.Count(cur) > 0 {
		return
	}
	best := deps.Catalog.Weapons.Best(p.Inventory.Count)
	if best == nil {
		delete(p.Equipment, world.WeaponSlot)
		return
	}
	p.Equipment[world.WeaponSlot] = best.Item
}

// HandleEquip processes an "equip" intent. Only owned weapons can be
// equipped; an empty item unequips.
func HandleEquip(in Intent, deps *Deps) bool {
	p := deps.World.Player()
	if in.Item == "" {
		if p.Weapon() == "" {
			return false
		}
		delete(p.Equipment, world.WeaponSlot)
		return true
	}
	if deps.Catalog.Weapons.Get(in.Item) == nil {
		deps.Log.Debug("equip: not a weapon", zap.String("item", in.Item))
		return false
	}
	if p.Inventory.Count(in.Item) <= 0 {
		deps.Log.Debug("equip: not owned", zap.String("item", in.Item))
		return false
	}
	if p.Weapon() == in.Item {
		return false
	}
	p.Equipment[world.WeaponSlot] = in.Item
	return true
}
