package world

import (
	"sort"
	"time"

	"github.com/grokyworld/server/internal/data"
)

// QuestStatus is the player's progress on one quest.
type QuestStatus uint8

const (
	QuestNone QuestStatus = iota
	QuestActive
	QuestDone
)

func (q QuestStatus) String() string {
	return [...]string{"none", "active", "done"}[q]
}

// WeaponSlot is the equipment slot used by combat.
const WeaponSlot = "weapon"

// Inventory maps item types to counts; entries never hold zero.
type Inventory map[string]int

func (inv Inventory) Count(item string) int { return inv[item] }

func (inv Inventory) Add(item string, n int) {
	if n <= 0 {
		return
	}
	inv[item] += n
}

// Has reports whether every entry of b is held in full.
func (inv Inventory) Has(b data.Bundle) bool {
	for _, ic := range b {
		if inv[ic.Item] < ic.Count {
			return false
		}
	}
	return true
}

// Debit removes b only if all of it is held; otherwise nothing changes.
func (inv Inventory) Debit(b data.Bundle) bool {
	if !inv.Has(b) {
		return false
	}
	for _, ic := range b {
		inv[ic.Item] -= ic.Count
		if inv[ic.Item] == 0 {
			delete(inv, ic.Item)
		}
	}
	return true
}

func (inv Inventory) Credit(b data.Bundle) {
	for _, ic := range b {
		inv.Add(ic.Item, ic.Count)
	}
}

func (inv Inventory) clone() map[string]int {
	out := make(map[string]int, len(inv))
	for k, v := range inv {
		out[k] = v
	}
	return out
}

// Items returns the held item types in name order.
func (inv Inventory) Items() []string {
	out := make([]string, 0, len(inv))
	for k := range inv {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Player is the single player's state. Its position lives on the current
// level (Level.PlayerPos).
type Player struct {
	Health       int
	MaxHealth    int
	Dead         bool
	Inventory    Inventory
	Equipment    map[string]string
	Quests       map[string]QuestStatus
	LastDamageAt time.Time
	LastAttackAt time.Time
	FallenOn     string // decoration covered by the fallen marker, restored on revive
}

func newPlayer(maxHealth int) *Player {
	return &Player{
		Health:    maxHealth,
		MaxHealth: maxHealth,
		Inventory: Inventory{},
		Equipment: map[string]string{},
		Quests:    map[string]QuestStatus{},
	}
}

// Damage lowers health, clamped at zero, and returns the new value.
func (p *Player) Damage(n int, at time.Time) int {
	p.Health -= n
	if p.Health < 0 {
		p.Health = 0
	}
	p.LastDamageAt = at
	return p.Health
}

// Heal raises health up to MaxHealth and returns the amount restored.
func (p *Player) Heal(n int) int {
	before := p.Health
	p.Health += n
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
	return p.Health - before
}

func (p *Player) Weapon() string { return p.Equipment[WeaponSlot] }
