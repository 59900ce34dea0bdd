package world

import (
	"sort"

	"github.com/grokyworld/server/internal/core/ecs"
)

// RepairKind names what the integrity sweep fixed.
type RepairKind string

const (
	RepairOrphanEntity  RepairKind = "orphan-entity"  // registered but on no tile
	RepairDanglingTile  RepairKind = "dangling-tile"  // tile points at a dead id
	RepairDuplicateTile RepairKind = "duplicate-tile" // one id on several tiles
	RepairLevelDrift    RepairKind = "level-drift"    // registry names the wrong level
	RepairStrayMarker   RepairKind = "stray-marker"   // player marker off the player
)

// Repair is one fix made by Reconcile.
type Repair struct {
	Kind    RepairKind
	LevelID int
	Pos     Pos
	ID      ecs.EntityID
}

// Reconcile brings the registry and the objects maps back in line, treating
// the objects maps as the truth. It returns what it changed.
func (s *State) Reconcile() []Repair {
	var repairs []Repair
	seen := make(map[ecs.EntityID]bool, s.reg.Len())

	for _, levelID := range s.LevelIDs() {
		l := s.levels[levelID]
		positions := make([]Pos, 0, len(l.objects))
		for p := range l.objects {
			positions = append(positions, p)
		}
		sort.Slice(positions, func(i, j int) bool {
			if positions[i].Y == positions[j].Y {
				return positions[i].X < positions[j].X
			}
			return positions[i].Y < positions[j].Y
		})

		pp, hasPlayer := l.PlayerPos()
		for _, p := range positions {
			r := l.objects[p]
			if !r.IsEntity() {
				if r.Decor == s.marker && (!hasPlayer || pp != p) {
					delete(l.objects, p)
					repairs = append(repairs, Repair{Kind: RepairStrayMarker, LevelID: levelID, Pos: p})
				}
				continue
			}
			switch {
			case !s.reg.IsAlive(r.Entity):
				delete(l.objects, p)
				repairs = append(repairs, Repair{Kind: RepairDanglingTile, LevelID: levelID, Pos: p, ID: r.Entity})
			case seen[r.Entity]:
				delete(l.objects, p)
				repairs = append(repairs, Repair{Kind: RepairDuplicateTile, LevelID: levelID, Pos: p, ID: r.Entity})
			default:
				seen[r.Entity] = true
				if info, _ := s.reg.info.Get(r.Entity); info.LevelID != levelID {
					info.LevelID = levelID
					repairs = append(repairs, Repair{Kind: RepairLevelDrift, LevelID: levelID, Pos: p, ID: r.Entity})
				}
			}
		}
	}

	var orphans []Repair
	ecs.Each2(s.reg.info, s.reg.health, func(id ecs.EntityID, info *EntityInfo, _ *Health) {
		if !seen[id] {
			orphans = append(orphans, Repair{Kind: RepairOrphanEntity, LevelID: info.LevelID, ID: id})
		}
	})
	for _, o := range orphans {
		s.reg.kill(o.ID)
	}
	return append(repairs, orphans...)
}
