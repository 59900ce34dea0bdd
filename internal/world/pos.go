package world

import (
	"fmt"
	"strings"

	"github.com/grokyworld/server/internal/data"
)

// Pos is a tile coordinate and the canonical key of a level's objects map.
type Pos struct {
	X, Y int
}

func P(x, y int) Pos { return Pos{X: x, Y: y} }

func FromPoint(p data.Point) Pos { return Pos{X: p.X, Y: p.Y} }

func (p Pos) String() string { return fmt.Sprintf("%d,%d", p.X, p.Y) }

func (p Pos) Add(dx, dy int) Pos { return Pos{X: p.X + dx, Y: p.Y + dy} }

// Manhattan returns |dx| + |dy|.
func (p Pos) Manhattan(q Pos) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// Neighbors4 returns the orthogonal neighbors in up, down, left, right order.
func (p Pos) Neighbors4() [4]Pos {
	return [4]Pos{p.Add(0, -1), p.Add(0, 1), p.Add(-1, 0), p.Add(1, 0)}
}

// Neighbors8 returns the 3×3 block minus the center, column by column from
// the left: (-1,-1) (-1,0) (-1,1) (0,-1) (0,1) (1,-1) (1,0) (1,1).
func (p Pos) Neighbors8() [8]Pos {
	var out [8]Pos
	i := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			out[i] = p.Add(dx, dy)
			i++
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction is a decoded movement intent.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 1, 0
	}
}

func (d Direction) String() string {
	return [...]string{"up", "down", "left", "right"}[d]
}

// ParseDirection accepts up/down/left/right and the n/s/w/e compass forms.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(s) {
	case "up", "north", "n":
		return Up, true
	case "down", "south", "s":
		return Down, true
	case "left", "west", "w":
		return Left, true
	case "right", "east", "e":
		return Right, true
	}
	return 0, false
}
