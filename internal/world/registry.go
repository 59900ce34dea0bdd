package world

import "github.com/grokyworld/server/internal/core/ecs"

// EntityInfo is what is known about a live entity besides its health. The
// fields are for tracing; the entity's position is always read from the
// objects map of LevelID.
type EntityInfo struct {
	Type    string
	LevelID int
	Wave    int // 0 = not part of a wave
	Origin  Pos // spawn site, used for respawn-at-original-site rules
}

// Health of a live entity.
type Health struct {
	HP  int
	Max int
}

// Registry maps live entity ids to their type and health. An id is present
// in both stores iff the entity is alive and placed on a tile; State keeps
// that true by only changing the registry together with the tile.
type Registry struct {
	pool   *ecs.EntityPool
	stores *ecs.Registry
	info   *ecs.PtrComponentStore[EntityInfo]
	health *ecs.PtrComponentStore[Health]
}

func newRegistry() *Registry {
	r := &Registry{
		pool:   ecs.NewEntityPool(),
		stores: ecs.NewRegistry(),
		info:   ecs.NewPtrComponentStore[EntityInfo](),
		health: ecs.NewPtrComponentStore[Health](),
	}
	r.stores.Register(r.info)
	r.stores.Register(r.health)
	return r
}

func (r *Registry) register(info EntityInfo, hp int) ecs.EntityID {
	id := r.pool.Create()
	r.info.Set(id, &info)
	r.health.Set(id, &Health{HP: hp, Max: hp})
	return id
}

func (r *Registry) kill(id ecs.EntityID) {
	r.stores.RemoveAll(id)
	r.pool.Destroy(id)
}

func (r *Registry) IsAlive(id ecs.EntityID) bool {
	return r.pool.Alive(id) && r.info.Has(id) && r.health.Has(id)
}

// TypeOf returns the entity's type, or "" if it is not alive.
func (r *Registry) TypeOf(id ecs.EntityID) string {
	if info, ok := r.info.Get(id); ok {
		return info.Type
	}
	return ""
}

// HealthOf returns the entity's current health.
func (r *Registry) HealthOf(id ecs.EntityID) (int, bool) {
	if h, ok := r.health.Get(id); ok {
		return h.HP, true
	}
	return 0, false
}

func (r *Registry) Info(id ecs.EntityID) (EntityInfo, bool) {
	if info, ok := r.info.Get(id); ok {
		return *info, true
	}
	return EntityInfo{}, false
}

func (r *Registry) Len() int { return r.info.Len() }

// ApplyDamage subtracts delta from the entity's health and returns the new
// value. The entity stays registered at or below zero until it is killed.
func (r *Registry) ApplyDamage(id ecs.EntityID, delta int) (int, bool) {
	h, ok := r.health.Get(id)
	if !ok {
		return 0, false
	}
	h.HP -= delta
	return h.HP, true
}
