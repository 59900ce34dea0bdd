package event

import "github.com/grokyworld/server/internal/core/ecs"

// Domain notifications. They describe mutations that already happened; no
// subscriber mutates world state in response.

type EntitySpawned struct {
	EntityID ecs.EntityID
	Type     string
	LevelID  int
	X, Y     int
	Wave     int
}

type EntityKilled struct {
	EntityID ecs.EntityID
	Type     string
	LevelID  int
	X, Y     int
	Drop     string
}

type EntityDamaged struct {
	EntityID ecs.EntityID
	Damage   int
	HP       int
}

type PlayerDamaged struct {
	Attacker ecs.EntityID
	Damage   int
	HP       int
}

type PlayerDied struct {
	LevelID int
	X, Y    int
}

type PlayerRevived struct {
	LevelID int
	X, Y    int
}

type LevelChanged struct {
	From, To int
	X, Y     int
}

type ItemCredited struct {
	Item   string
	Count  int
	Reason string // "pickup", "chop", "open", "purchase", "quest"
}

type WaveAdvanced struct {
	LevelID int
	Wave    int
}

type LevelCompleted struct {
	LevelID int
}

type Notice struct {
	Text string
}

type ItemPurchased struct {
	Shop string
	Item string
	Name string
	Cost string // e.g. "1 Wood, 1 Rock"
}

type QuestCompleted struct {
	Quest  string
	Reward string
}

type InteractionEnded struct {
	Kind      string
	X, Y      int
	Completed bool
}
