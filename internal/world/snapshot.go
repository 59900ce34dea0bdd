package world

import "time"

// EntityView is a read-only copy of one live entity.
type EntityView struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"maxHp"`
	Wave  int    `json:"wave,omitempty"`
}

// PlayerView is a read-only copy of the player.
type PlayerView struct {
	Health    int               `json:"health"`
	MaxHealth int               `json:"maxHealth"`
	X         int               `json:"x"`
	Y         int               `json:"y"`
	Placed    bool              `json:"placed"`
	Dead      bool              `json:"dead"`
	Inventory map[string]int    `json:"inventory"`
	Equipment map[string]string `json:"equipment"`
	Quests    map[string]string `json:"quests,omitempty"`
}

// WaveSummary reports wave progress of the current level.
type WaveSummary struct {
	Current   int           `json:"current"`
	Total     int           `json:"total"`
	Remaining int           `json:"remaining"`
	Incoming  bool          `json:"incoming"`
	Completed bool          `json:"completed"`
	Survived  time.Duration `json:"survivedNs"`
}

// InteractionView is a read-only copy of the interaction slot.
type InteractionView struct {
	Kind     string   `json:"kind"`
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Message  string   `json:"message,omitempty"`
	Choices  []string `json:"choices,omitempty"`
	Progress float64  `json:"progress,omitempty"` // chop completion 0..1
}

// Snapshot is a deep copy of everything an observer may render. Nothing in
// it aliases live state.
type Snapshot struct {
	At           time.Time         `json:"at"`
	LevelID      int               `json:"level"`
	LevelName    string            `json:"levelName"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Terrain      [][]string        `json:"terrain"`
	Objects      map[string]string `json:"objects"`
	Entities     []EntityView      `json:"entities"`
	Player       PlayerView        `json:"player"`
	Interaction  InteractionView   `json:"interaction"`
	Wave         *WaveSummary      `json:"wave,omitempty"`
	Notices      []string          `json:"notices,omitempty"`
	QuestMarkers map[string]string `json:"questMarkers,omitempty"`
}

// Snapshot copies the current level, its entities and the player. Callers
// fill the interaction, notice and marker fields they own.
func (s *State) Snapshot(now time.Time) Snapshot {
	snap := Snapshot{At: now, LevelID: s.current}
	p := s.player
	snap.Player = PlayerView{
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		Dead:      p.Dead,
		Inventory: p.Inventory.clone(),
		Equipment: make(map[string]string, len(p.Equipment)),
	}
	for k, v := range p.Equipment {
		snap.Player.Equipment[k] = v
	}
	if len(p.Quests) > 0 {
		snap.Player.Quests = make(map[string]string, len(p.Quests))
		for k, v := range p.Quests {
			snap.Player.Quests[k] = v.String()
		}
	}

	l := s.Current()
	if l == nil {
		return snap
	}
	snap.LevelName = l.Name
	snap.Width, snap.Height = l.Width(), l.Height()
	snap.Terrain = copyGrid(l.grid)
	snap.Objects = make(map[string]string, len(l.objects))
	for pos, r := range l.objects {
		if r.IsEntity() {
			snap.Objects[pos.String()] = s.reg.TypeOf(r.Entity)
		} else {
			snap.Objects[pos.String()] = r.Decor
		}
	}
	for _, pl := range s.Entities(l.ID) {
		info, _ := s.reg.Info(pl.ID)
		h, _ := s.reg.health.Get(pl.ID)
		v := EntityView{ID: pl.ID.String(), Type: info.Type, X: pl.Pos.X, Y: pl.Pos.Y, Wave: info.Wave}
		if h != nil {
			v.HP, v.MaxHP = h.HP, h.Max
		}
		snap.Entities = append(snap.Entities, v)
	}
	if pp, ok := l.PlayerPos(); ok {
		snap.Player.X, snap.Player.Y, snap.Player.Placed = pp.X, pp.Y, true
	}
	if w := l.wave; w != nil {
		snap.Wave = &WaveSummary{
			Current:   w.Current,
			Total:     len(w.Definitions),
			Remaining: w.Active.Size() + w.Pending,
			Incoming:  w.Incoming,
			Completed: w.Completed,
		}
		if !w.StartedAt.IsZero() {
			snap.Wave.Survived = now.Sub(w.StartedAt)
		}
	}
	return snap
}
