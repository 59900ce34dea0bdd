package system

import (
	"time"

	"github.com/grokyworld/server/internal/core/ecs"
	"github.com/grokyworld/server/internal/core/event"
	coresys "github.com/grokyworld/server/internal/core/system"
	"github.com/grokyworld/server/internal/handler"
	"github.com/grokyworld/server/internal/scripting"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// CombatSystem exchanges blows between the player and adjacent hostiles
// every tick, gated by per-attacker cooldowns. Hostiles strike first; a
// player they kill does not strike back. Phase 2 (Update).
type CombatSystem struct {
	deps       *handler.Deps
	reaper     *Reaper
	lastAttack map[ecs.EntityID]time.Time
}

func NewCombatSystem(deps *handler.Deps, reaper *Reaper) *CombatSystem {
	return &CombatSystem{
		deps:       deps,
		reaper:     reaper,
		lastAttack: make(map[ecs.EntityID]time.Time),
	}
}

func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CombatSystem) Update(_ time.Duration) {
	s.prune()
	ws := s.deps.World
	l := ws.Current()
	if l == nil || ws.Player().Dead {
		return
	}
	pp, ok := l.PlayerPos()
	if !ok {
		return
	}
	now := s.deps.Now()

	s.hostileAttacks(l, pp, now)
	if ws.Player().Dead {
		return
	}
	s.playerAttack(l, pp, now)
}

// hostileAttacks lands a hit from every adjacent hostile whose cooldown has
// elapsed.
func (s *CombatSystem) hostileAttacks(l *world.Level, pp world.Pos, now time.Time) {
	ws := s.deps.World
	p := ws.Player()
	for _, n := range pp.Neighbors4() {
		id, ok := ws.EntityAt(l.ID, n)
		if !ok {
			continue
		}
		typ := ws.Registry().TypeOf(id)
		def := s.deps.Catalog.Hostiles.Get(typ)
		if def == nil {
			continue
		}
		if last, ok := s.lastAttack[id]; ok && now.Sub(last) < s.deps.Config.Gameplay.HostileCooldown {
			continue
		}
		dmg := s.deps.Scripting.CalcHostileDamage(scripting.HostileAttackContext{
			AttackerType: typ,
			BaseDamage:   def.Damage,
			PlayerHealth: p.Health,
		})
		hp := p.Damage(dmg, now)
		s.lastAttack[id] = now
		event.Emit(s.deps.Bus, event.PlayerDamaged{Attacker: id, Damage: dmg, HP: hp})
		s.deps.Log.Debug("player hit", zap.String("by", typ), zap.Int("damage", dmg), zap.Int("hp", hp))
		if hp <= 0 {
			s.reaper.KillPlayer()
			return
		}
	}
}

// playerAttack hits every hostile on the player's tile and its four
// neighbors. The cooldown restarts only if something was hit.
func (s *CombatSystem) playerAttack(l *world.Level, pp world.Pos, now time.Time) {
	ws := s.deps.World
	p := ws.Player()
	if !p.LastAttackAt.IsZero() && now.Sub(p.LastAttackAt) < s.deps.Config.Gameplay.PlayerCooldown {
		return
	}
	weapon, weaponDamage := "", 0
	if w := p.Weapon(); w != "" && p.Inventory.Count(w) > 0 {
		if def := s.deps.Catalog.Weapons.Get(w); def != nil {
			weapon, weaponDamage = w, def.Damage
		}
	}
	unarmed := s.deps.Catalog.Tiles.Player().UnarmedDamage

	tiles := [5]world.Pos{pp}
	ns := pp.Neighbors4()
	copy(tiles[1:], ns[:])

	hit := false
	for _, t := range tiles {
		id, ok := ws.EntityAt(l.ID, t)
		if !ok {
			continue
		}
		typ := ws.Registry().TypeOf(id)
		if s.deps.Catalog.Hostiles.Get(typ) == nil {
			continue
		}
		dmg := s.deps.Scripting.CalcPlayerDamage(scripting.PlayerAttackContext{
			Weapon:        weapon,
			WeaponDamage:  weaponDamage,
			UnarmedDamage: unarmed,
			TargetType:    typ,
		})
		hp, _ := ws.Registry().ApplyDamage(id, dmg)
		hit = true
		event.Emit(s.deps.Bus, event.EntityDamaged{EntityID: id, Damage: dmg, HP: hp})
		if hp <= 0 {
			s.reaper.KillEntity(id)
			delete(s.lastAttack, id)
		}
	}
	if hit {
		p.LastAttackAt = now
	}
}

// prune forgets cooldowns of entities that are gone.
func (s *CombatSystem) prune() {
	reg := s.deps.World.Registry()
	for id := range s.lastAttack {
		if !reg.IsAlive(id) {
			delete(s.lastAttack, id)
		}
	}
}
