package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/grokyworld/server/internal/core/ecs"
	"github.com/zyedidia/generic/mapset"
)

var (
	ErrUnknownLevel = errors.New("unknown level")
	ErrOutOfBounds  = errors.New("position out of bounds")
	ErrOccupied     = errors.New("tile occupied")
	ErrRestricted   = errors.New("restricted tile")
)

// Options configures a State.
type Options struct {
	RestrictedTerrain []string
	PlayerMarker      string // decoration written under the player on empty tiles
	MaxHealth         int
}

// LevelInit is the data a level is created from. Decor holds non-entity
// objects only; entities are placed afterwards with SpawnEntity.
type LevelInit struct {
	ID             int
	Name           string
	Grid           [][]string
	Decor          map[Pos]string
	OriginalSpawns map[Pos]string
	Waves          map[int]map[Pos]string
}

// State is the World Store: every level, the current-level pointer, the
// player and the entity registry. Accessed only from the game loop
// goroutine, no locks needed.
type State struct {
	levels     map[int]*Level
	current    int
	player     *Player
	reg        *Registry
	marker     string
	restricted mapset.Set[string]
}

func NewState(opts Options) *State {
	restricted := mapset.New[string]()
	for _, t := range opts.RestrictedTerrain {
		restricted.Put(t)
	}
	marker := opts.PlayerMarker
	if marker == "" {
		marker = "player"
	}
	return &State{
		levels:     make(map[int]*Level, 8),
		player:     newPlayer(opts.MaxHealth),
		reg:        newRegistry(),
		marker:     marker,
		restricted: restricted,
	}
}

// AddLevel creates a level. Levels are never removed.
func (s *State) AddLevel(init LevelInit) (*Level, error) {
	if _, dup := s.levels[init.ID]; dup {
		return nil, fmt.Errorf("level %d already exists", init.ID)
	}
	if len(init.Grid) == 0 || len(init.Grid[0]) == 0 {
		return nil, fmt.Errorf("level %d: empty grid", init.ID)
	}
	l := &Level{
		ID:             init.ID,
		Name:           init.Name,
		grid:           copyGrid(init.Grid),
		objects:        make(map[Pos]Ref, len(init.Decor)),
		originalSpawns: make(map[Pos]string, len(init.OriginalSpawns)),
		respawns:       make(map[RespawnKey]*RespawnItem),
	}
	l.computeRestricted(s.restricted)
	for p, t := range init.Decor {
		if !l.InBounds(p) {
			return nil, fmt.Errorf("level %d: decoration %s at %s: %w", init.ID, t, p, ErrOutOfBounds)
		}
		l.objects[p] = DecorRef(t)
	}
	for p, t := range init.OriginalSpawns {
		l.originalSpawns[p] = t
	}
	if len(init.Waves) > 0 {
		defs := make(map[int]map[Pos]string, len(init.Waves))
		for idx, spawns := range init.Waves {
			m := make(map[Pos]string, len(spawns))
			for p, t := range spawns {
				m[p] = t
			}
			defs[idx] = m
		}
		l.wave = &WaveState{Definitions: defs, Active: mapset.New[ecs.EntityID]()}
	}
	s.levels[init.ID] = l
	return l, nil
}

func (s *State) Level(id int) (*Level, bool) {
	l, ok := s.levels[id]
	return l, ok
}

// LevelIDs returns all level ids in ascending order.
func (s *State) LevelIDs() []int {
	ids := make([]int, 0, len(s.levels))
	for id := range s.levels {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *State) CurrentID() int { return s.current }

// Current returns the level the player is on, or nil before placement.
func (s *State) Current() *Level { return s.levels[s.current] }

func (s *State) Player() *Player { return s.player }

func (s *State) Registry() *Registry { return s.reg }

func (s *State) PlayerMarker() string { return s.marker }

// PlayerPos returns the player's tile on the current level.
func (s *State) PlayerPos() (Pos, bool) {
	l := s.Current()
	if l == nil {
		return Pos{}, false
	}
	return l.PlayerPos()
}

// ObjectsEditor edits the decorations of one level. It refuses to touch
// tiles holding entities.
type ObjectsEditor struct {
	l *Level
}

func (e ObjectsEditor) Get(p Pos) (Ref, bool) { return e.l.At(p) }

// Set places a decoration on an in-bounds tile that holds no entity.
func (e ObjectsEditor) Set(p Pos, typ string) bool {
	if typ == "" || !e.l.InBounds(p) {
		return false
	}
	if r, ok := e.l.objects[p]; ok && r.IsEntity() {
		return false
	}
	e.l.objects[p] = DecorRef(typ)
	return true
}

// Clear removes a decoration; entity tiles are left alone.
func (e ObjectsEditor) Clear(p Pos) bool {
	r, ok := e.l.objects[p]
	if !ok || r.IsEntity() {
		return false
	}
	delete(e.l.objects, p)
	return true
}

// SetObjects applies fn to the level's decorations as one update.
func (s *State) SetObjects(levelID int, fn func(ObjectsEditor)) error {
	l, ok := s.levels[levelID]
	if !ok {
		return fmt.Errorf("set objects on level %d: %w", levelID, ErrUnknownLevel)
	}
	fn(ObjectsEditor{l: l})
	return nil
}

// SetDecor is SetObjects for a single tile.
func (s *State) SetDecor(levelID int, p Pos, typ string) bool {
	ok := false
	_ = s.SetObjects(levelID, func(e ObjectsEditor) { ok = e.Set(p, typ) })
	return ok
}

// ClearDecor is SetObjects for a single tile.
func (s *State) ClearDecor(levelID int, p Pos) bool {
	ok := false
	_ = s.SetObjects(levelID, func(e ObjectsEditor) { ok = e.Clear(p) })
	return ok
}

// SetGrid replaces a level's terrain and recomputes its restricted tiles.
func (s *State) SetGrid(levelID int, grid [][]string) error {
	l, ok := s.levels[levelID]
	if !ok {
		return fmt.Errorf("set grid on level %d: %w", levelID, ErrUnknownLevel)
	}
	if len(grid) == 0 || len(grid[0]) == 0 {
		return fmt.Errorf("set grid on level %d: empty grid", levelID)
	}
	l.grid = copyGrid(grid)
	l.computeRestricted(s.restricted)
	return nil
}

// SetPlayerPos moves the player within a level. The player marker is
// written only onto empty tiles, so decorations the player stands on
// (bridges, portals) stay intact. The previous marker is removed.
func (s *State) SetPlayerPos(levelID int, p Pos) error {
	l, ok := s.levels[levelID]
	if !ok {
		return fmt.Errorf("set player pos on level %d: %w", levelID, ErrUnknownLevel)
	}
	if !l.InBounds(p) {
		return fmt.Errorf("set player pos %s: %w", p, ErrOutOfBounds)
	}
	if r, ok := l.objects[p]; ok && r.IsEntity() {
		return fmt.Errorf("set player pos %s: %w", p, ErrOccupied)
	}
	if old, ok := l.PlayerPos(); ok && l.objects[old].IsDecor(s.marker) {
		delete(l.objects, old)
	}
	pos := p
	l.playerPos = &pos
	if _, taken := l.objects[p]; !taken {
		l.objects[p] = DecorRef(s.marker)
	}
	return nil
}

// ChangeLevel moves the player to spawn on level target. Stray player
// markers are first removed from every level; then the current-level
// pointer and the player position change together. An unknown target or
// an unusable spawn tile changes nothing.
func (s *State) ChangeLevel(target int, spawn Pos) error {
	l, ok := s.levels[target]
	if !ok {
		return fmt.Errorf("change level to %d: %w", target, ErrUnknownLevel)
	}
	if !l.InBounds(spawn) {
		return fmt.Errorf("change level to %d at %s: %w", target, spawn, ErrOutOfBounds)
	}
	if l.IsRestricted(spawn) {
		return fmt.Errorf("change level to %d at %s: %w", target, spawn, ErrRestricted)
	}
	if r, ok := l.objects[spawn]; ok && r.IsEntity() {
		return fmt.Errorf("change level to %d at %s: %w", target, spawn, ErrOccupied)
	}

	for _, lv := range s.levels {
		for p, r := range lv.objects {
			if r.IsDecor(s.marker) {
				delete(lv.objects, p)
			}
		}
		lv.playerPos = nil
	}
	s.current = target
	pos := spawn
	l.playerPos = &pos
	if _, taken := l.objects[spawn]; !taken {
		l.objects[spawn] = DecorRef(s.marker)
	}
	return nil
}

// SpawnEntity registers a new entity and places it on p in one step. The
// tile must not hold an entity or the player; a decoration on it is
// replaced (callers decide which decorations may be overwritten).
func (s *State) SpawnEntity(levelID int, p Pos, info EntityInfo, hp int) (ecs.EntityID, error) {
	l, ok := s.levels[levelID]
	if !ok {
		return 0, fmt.Errorf("spawn %s on level %d: %w", info.Type, levelID, ErrUnknownLevel)
	}
	if !l.InBounds(p) {
		return 0, fmt.Errorf("spawn %s at %s: %w", info.Type, p, ErrOutOfBounds)
	}
	if r, ok := l.objects[p]; ok && (r.IsEntity() || r.IsDecor(s.marker)) {
		return 0, fmt.Errorf("spawn %s at %s: %w", info.Type, p, ErrOccupied)
	}
	if pp, ok := l.PlayerPos(); ok && pp == p {
		return 0, fmt.Errorf("spawn %s at %s: %w", info.Type, p, ErrOccupied)
	}
	info.LevelID = levelID
	id := s.reg.register(info, hp)
	l.objects[p] = EntityRef(id)
	return id, nil
}

// KillEntity removes a live entity from the registry and its tile in one
// step. If replacement is non-empty it is left on the tile (a drop marker).
func (s *State) KillEntity(id ecs.EntityID, replacement string) (EntityInfo, Pos, bool) {
	info, ok := s.reg.Info(id)
	if !ok {
		return EntityInfo{}, Pos{}, false
	}
	l := s.levels[info.LevelID]
	var at Pos
	placed := false
	if l != nil {
		at, placed = l.find(id)
	}
	if placed {
		if replacement != "" {
			l.objects[at] = DecorRef(replacement)
		} else {
			delete(l.objects, at)
		}
	}
	s.reg.kill(id)
	return info, at, placed
}

// Move is one entity step within a level.
type Move struct {
	ID       ecs.EntityID
	From, To Pos
}

// MoveEntities commits a batch of entity moves as one update. A move is
// applied only if From still holds ID and To is an in-bounds, unrestricted,
// empty tile that no other move in the batch targets or vacates; the rest
// are returned as rejected.
func (s *State) MoveEntities(levelID int, moves []Move) (applied, rejected []Move) {
	l, ok := s.levels[levelID]
	if !ok {
		return nil, moves
	}
	targets := make(map[Pos]int, len(moves))
	sources := make(map[Pos]bool, len(moves))
	for _, m := range moves {
		targets[m.To]++
		sources[m.From] = true
	}
	pp, hasPlayer := l.PlayerPos()
	for _, m := range moves {
		valid := l.objects[m.From].Entity == m.ID &&
			l.InBounds(m.To) && !l.IsRestricted(m.To) &&
			l.IsEmpty(m.To) && targets[m.To] == 1 && !sources[m.To] &&
			!(hasPlayer && pp == m.To)
		if valid {
			applied = append(applied, m)
		} else {
			rejected = append(rejected, m)
		}
	}
	for _, m := range applied {
		delete(l.objects, m.From)
	}
	for _, m := range applied {
		l.objects[m.To] = EntityRef(m.ID)
	}
	return applied, rejected
}

// EntityAt returns the live entity on p of a level.
func (s *State) EntityAt(levelID int, p Pos) (ecs.EntityID, bool) {
	l, ok := s.levels[levelID]
	if !ok {
		return 0, false
	}
	r, ok := l.objects[p]
	if !ok || !r.IsEntity() {
		return 0, false
	}
	return r.Entity, true
}

// TypeAt returns the type occupying p: the decoration, or the entity's type.
func (s *State) TypeAt(levelID int, p Pos) string {
	l, ok := s.levels[levelID]
	if !ok {
		return ""
	}
	r, ok := l.objects[p]
	if !ok {
		return ""
	}
	if r.IsEntity() {
		return s.reg.TypeOf(r.Entity)
	}
	return r.Decor
}

// EntityPos returns the tile of a live entity, read from its level.
func (s *State) EntityPos(id ecs.EntityID) (int, Pos, bool) {
	info, ok := s.reg.Info(id)
	if !ok {
		return 0, Pos{}, false
	}
	l, ok := s.levels[info.LevelID]
	if !ok {
		return 0, Pos{}, false
	}
	p, ok := l.find(id)
	return info.LevelID, p, ok
}

// Placed is a live entity and its tile.
type Placed struct {
	ID  ecs.EntityID
	Pos Pos
}

// Entities lists the live entities on a level ordered by id.
func (s *State) Entities(levelID int) []Placed {
	l, ok := s.levels[levelID]
	if !ok {
		return nil
	}
	var out []Placed
	for p, r := range l.objects {
		if r.IsEntity() {
			out = append(out, Placed{ID: r.Entity, Pos: p})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// QueueRespawn stores item in the level's respawn queue, replacing any item
// with the same (Pos, Type). The replaced item is returned.
func (s *State) QueueRespawn(levelID int, item RespawnItem) (RespawnItem, bool, error) {
	l, ok := s.levels[levelID]
	if !ok {
		return RespawnItem{}, false, fmt.Errorf("queue respawn on level %d: %w", levelID, ErrUnknownLevel)
	}
	key := RespawnKey{item.Pos, item.Type}
	old, had := l.respawns[key]
	it := item
	l.respawns[key] = &it
	if had {
		return *old, true, nil
	}
	return RespawnItem{}, false, nil
}

// DequeueRespawn removes the queued item for (p, typ).
func (s *State) DequeueRespawn(levelID int, p Pos, typ string) (RespawnItem, bool) {
	l, ok := s.levels[levelID]
	if !ok {
		return RespawnItem{}, false
	}
	key := RespawnKey{p, typ}
	it, ok := l.respawns[key]
	if !ok {
		return RespawnItem{}, false
	}
	delete(l.respawns, key)
	return *it, true
}
