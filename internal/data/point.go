package data

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a tile coordinate as written in data files.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

func (p Point) String() string { return fmt.Sprintf("%d,%d", p.X, p.Y) }

// ParsePoint parses the "x,y" key form used by map files.
func ParsePoint(s string) (Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return Point{}, fmt.Errorf("point %q: want \"x,y\"", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return Point{X: x, Y: y}, nil
}

// parsePointMap converts a "x,y" keyed map into Point keys.
func parsePointMap(raw map[string]string) (map[Point]string, error) {
	out := make(map[Point]string, len(raw))
	for k, v := range raw {
		p, err := ParsePoint(k)
		if err != nil {
			return nil, err
		}
		out[p] = v
	}
	return out, nil
}
