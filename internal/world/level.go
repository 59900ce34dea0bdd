package world

import (
	"sort"
	"time"

	"github.com/grokyworld/server/internal/core/ecs"
	"github.com/grokyworld/server/internal/core/sched"
	"github.com/zyedidia/generic/mapset"
)

// RespawnKey identifies a queued respawn; at most one item per key.
type RespawnKey struct {
	Pos  Pos
	Type string
}

// RespawnItem is a queued re-materialization of Type at Pos.
type RespawnItem struct {
	Pos      Pos
	Type     string
	DueAt    time.Time
	IsEntity bool
	Wave     int // wave tag for spawned entities, 0 = none
	Origin   Pos // spawn site recorded on the entity
	Handle   sched.Handle
}

// WaveState tracks a wave-based level.
type WaveState struct {
	Current     int
	Definitions map[int]map[Pos]string
	Active      mapset.Set[ecs.EntityID]
	Pending     int  // wave spawns queued but not yet placed
	Incoming    bool // Current names a wave whose spawn is still delayed
	Completed   bool
	StartedAt   time.Time
}

// HasNext reports whether a wave after Current is defined.
func (w *WaveState) HasNext() bool {
	_, ok := w.Definitions[w.Current+1]
	return ok
}

// Level is one map. Fields are only mutated through State so that the
// objects map and the entity registry never diverge.
type Level struct {
	ID   int
	Name string

	grid           [][]string
	objects        map[Pos]Ref
	restricted     mapset.Set[Pos]
	originalSpawns map[Pos]string
	respawns       map[RespawnKey]*RespawnItem
	wave           *WaveState
	playerPos      *Pos
}

func (l *Level) Height() int { return len(l.grid) }

func (l *Level) Width() int {
	if len(l.grid) == 0 {
		return 0
	}
	return len(l.grid[0])
}

func (l *Level) InBounds(p Pos) bool {
	return p.Y >= 0 && p.Y < len(l.grid) && p.X >= 0 && p.X < len(l.grid[p.Y])
}

// Terrain returns the terrain code at p, or "" out of bounds.
func (l *Level) Terrain(p Pos) string {
	if !l.InBounds(p) {
		return ""
	}
	return l.grid[p.Y][p.X]
}

func (l *Level) IsRestricted(p Pos) bool { return l.restricted.Has(p) }

// RestrictedCount returns the number of restricted tiles.
func (l *Level) RestrictedCount() int { return l.restricted.Size() }

// At returns the tile occupant.
func (l *Level) At(p Pos) (Ref, bool) {
	r, ok := l.objects[p]
	return r, ok
}

func (l *Level) IsEmpty(p Pos) bool {
	_, ok := l.objects[p]
	return !ok
}

func (l *Level) PlayerPos() (Pos, bool) {
	if l.playerPos == nil {
		return Pos{}, false
	}
	return *l.playerPos, true
}

// OriginalSpawn returns the type placed at p when the level was loaded.
func (l *Level) OriginalSpawn(p Pos) (string, bool) {
	t, ok := l.originalSpawns[p]
	return t, ok
}

// Wave returns the level's wave state, or nil if the level has no waves.
func (l *Level) Wave() *WaveState { return l.wave }

// Respawn returns the queued item for (p, typ).
func (l *Level) Respawn(p Pos, typ string) (*RespawnItem, bool) {
	it, ok := l.respawns[RespawnKey{p, typ}]
	return it, ok
}

// RespawnQueue returns copies of the queued items ordered by due time.
func (l *Level) RespawnQueue() []RespawnItem {
	out := make([]RespawnItem, 0, len(l.respawns))
	for _, it := range l.respawns {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].Handle < out[j].Handle
		}
		return out[i].DueAt.Before(out[j].DueAt)
	})
	return out
}

// find returns where id sits in this level by scanning the objects map,
// which is the only authority on positions.
func (l *Level) find(id ecs.EntityID) (Pos, bool) {
	for p, r := range l.objects {
		if r.Entity == id {
			return p, true
		}
	}
	return Pos{}, false
}

// RingSearch scans outward in square rings around center, distance 1 up to
// maxDist, and returns the first in-bounds tile accepted by ok. Within a
// ring, tiles are visited column by column from the left, top to bottom.
func (l *Level) RingSearch(center Pos, maxDist int, ok func(Pos) bool) (Pos, bool) {
	for d := 1; d <= maxDist; d++ {
		for dx := -d; dx <= d; dx++ {
			for dy := -d; dy <= d; dy++ {
				if abs(dx) != d && abs(dy) != d {
					continue // interior of the ring
				}
				p := center.Add(dx, dy)
				if l.InBounds(p) && ok(p) {
					return p, true
				}
			}
		}
	}
	return Pos{}, false
}

func (l *Level) computeRestricted(restricted mapset.Set[string]) {
	set := mapset.New[Pos]()
	for y, row := range l.grid {
		for x, code := range row {
			if restricted.Has(code) {
				set.Put(Pos{x, y})
			}
		}
	}
	l.restricted = set
}

func copyGrid(grid [][]string) [][]string {
	out := make([][]string, len(grid))
	for y, row := range grid {
		out[y] = append([]string(nil), row...)
	}
	return out
}
