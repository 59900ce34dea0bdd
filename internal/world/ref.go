package world

import "github.com/grokyworld/server/internal/core/ecs"

// Ref is what occupies a tile: either a decoration type or a live entity.
// Exactly one of the two is set on a stored Ref.
type Ref struct {
	Decor  string
	Entity ecs.EntityID
}

func DecorRef(typ string) Ref          { return Ref{Decor: typ} }
func EntityRef(id ecs.EntityID) Ref    { return Ref{Entity: id} }
func (r Ref) IsEntity() bool           { return !r.Entity.IsZero() }
func (r Ref) IsZero() bool             { return r.Decor == "" && r.Entity.IsZero() }
func (r Ref) IsDecor(typ string) bool  { return !r.IsEntity() && r.Decor == typ }
