package data

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrNoLevels is returned by a LevelSource that found nothing to load.
var ErrNoLevels = errors.New("no levels")

// LevelDef is one entry of level_list.yaml: the level's identity, its map
// file name and the terrain used when the map cannot be loaded.
type LevelDef struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
	File string `yaml:"file"`
	Fill string `yaml:"fill"`
}

type levelListFile struct {
	Levels []LevelDef `yaml:"levels"`
}

// LevelIndex lists the levels the world is built from, ordered by id.
type LevelIndex struct {
	levels []LevelDef
}

func (t *LevelIndex) All() []LevelDef { return append([]LevelDef(nil), t.levels...) }
func (t *LevelIndex) Count() int      { return len(t.levels) }

func (t *LevelIndex) Get(id int) (LevelDef, bool) {
	for _, l := range t.levels {
		if l.ID == id {
			return l, true
		}
	}
	return LevelDef{}, false
}

// LoadLevelIndex parses level_list.yaml.
func LoadLevelIndex(raw []byte) (*LevelIndex, error) {
	var f levelListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse level_list: %w", err)
	}
	seen := make(map[int]bool, len(f.Levels))
	for _, l := range f.Levels {
		if l.ID <= 0 || seen[l.ID] {
			return nil, fmt.Errorf("level_list: bad or duplicate id %d", l.ID)
		}
		if l.Fill == "" {
			return nil, fmt.Errorf("level_list: level %d has no fill terrain", l.ID)
		}
		seen[l.ID] = true
	}
	sort.Slice(f.Levels, func(i, j int) bool { return f.Levels[i].ID < f.Levels[j].ID })
	return &LevelIndex{levels: f.Levels}, nil
}

// LevelSeed is the {terrain grid, objects, name} triple a level is
// initialized from, plus optional wave definitions keyed by wave index.
type LevelSeed struct {
	ID      int
	Name    string
	Grid    [][]string
	Objects map[Point]string
	Waves   map[int]map[Point]string
}

// LevelSource loads level seeds from somewhere outside the core.
type LevelSource interface {
	Name() string
	LoadLevels(ctx context.Context) ([]LevelSeed, error)
}

// mapFile is the on-disk map format. JSON files exported by the map editor
// ({grid, objects, name}) are valid YAML and decode the same way.
type mapFile struct {
	ID      int                       `yaml:"id"`
	Name    string                    `yaml:"name"`
	Grid    [][]string                `yaml:"grid"`
	Fill    string                    `yaml:"fill"`
	Terrain map[string]string         `yaml:"terrain"`
	Objects map[string]string         `yaml:"objects"`
	Waves   map[int]map[string]string `yaml:"waves"`
}

// ParseMapFile decodes one map file. Without an explicit grid the map is
// filled with Fill (or def.Fill) and patched with the Terrain overrides.
func ParseMapFile(raw []byte, def LevelDef, rows, cols int) (LevelSeed, error) {
	var f mapFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return LevelSeed{}, fmt.Errorf("parse map %s: %w", def.File, err)
	}
	if f.ID != 0 && f.ID != def.ID {
		return LevelSeed{}, fmt.Errorf("map %s: declares level %d, index says %d", def.File, f.ID, def.ID)
	}
	seed := LevelSeed{ID: def.ID, Name: def.Name}
	if f.Name != "" {
		seed.Name = f.Name
	}

	if len(f.Grid) > 0 {
		width := len(f.Grid[0])
		for y, row := range f.Grid {
			if len(row) != width || width == 0 {
				return LevelSeed{}, fmt.Errorf("map %s: row %d has %d columns, want %d", def.File, y, len(row), width)
			}
		}
		seed.Grid = f.Grid
	} else {
		fill := f.Fill
		if fill == "" {
			fill = def.Fill
		}
		seed.Grid = FillGrid(rows, cols, fill)
	}
	for k, code := range f.Terrain {
		p, err := ParsePoint(k)
		if err != nil {
			return LevelSeed{}, fmt.Errorf("map %s terrain: %w", def.File, err)
		}
		if !inGrid(seed.Grid, p) {
			return LevelSeed{}, fmt.Errorf("map %s terrain: %s out of bounds", def.File, p)
		}
		seed.Grid[p.Y][p.X] = code
	}

	objects, err := parsePointMap(f.Objects)
	if err != nil {
		return LevelSeed{}, fmt.Errorf("map %s objects: %w", def.File, err)
	}
	for p := range objects {
		if !inGrid(seed.Grid, p) {
			return LevelSeed{}, fmt.Errorf("map %s objects: %s out of bounds", def.File, p)
		}
	}
	seed.Objects = objects

	if len(f.Waves) > 0 {
		seed.Waves = make(map[int]map[Point]string, len(f.Waves))
		for idx, spawns := range f.Waves {
			if idx <= 0 {
				return LevelSeed{}, fmt.Errorf("map %s: wave index %d must be positive", def.File, idx)
			}
			parsed, err := parsePointMap(spawns)
			if err != nil {
				return LevelSeed{}, fmt.Errorf("map %s wave %d: %w", def.File, idx, err)
			}
			seed.Waves[idx] = parsed
		}
	}
	return seed, nil
}

func inGrid(grid [][]string, p Point) bool {
	return p.Y >= 0 && p.Y < len(grid) && p.X >= 0 && p.X < len(grid[p.Y])
}

// FillGrid builds a rows×cols grid of one terrain code.
func FillGrid(rows, cols int, terrain string) [][]string {
	grid := make([][]string, rows)
	for y := range grid {
		row := make([]string, cols)
		for x := range row {
			row[x] = terrain
		}
		grid[y] = row
	}
	return grid
}

// DirSource loads the map files named in the level index from a directory.
type DirSource struct {
	Dir     string
	Catalog *Catalog
}

func (s DirSource) Name() string { return "dir:" + s.Dir }

func (s DirSource) LoadLevels(ctx context.Context) ([]LevelSeed, error) {
	var seeds []LevelSeed
	var errs []error
	for _, def := range s.Catalog.Levels.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if def.File == "" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.Dir, def.File))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, fmt.Errorf("read map %s: %w", def.File, err))
			}
			continue
		}
		seed, err := ParseMapFile(raw, def, s.Catalog.Tiles.Rows(), s.Catalog.Tiles.Cols())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		seeds = append(seeds, seed)
	}
	if len(seeds) == 0 {
		errs = append(errs, ErrNoLevels)
	}
	return seeds, errors.Join(errs...)
}

// FallbackLevels generates one flat level per index entry, filled with the
// entry's fallback terrain and holding no objects.
func FallbackLevels(cat *Catalog) []LevelSeed {
	defs := cat.Levels.All()
	seeds := make([]LevelSeed, 0, len(defs))
	for _, def := range defs {
		seeds = append(seeds, fallbackSeed(cat, def))
	}
	return seeds
}

func fallbackSeed(cat *Catalog, def LevelDef) LevelSeed {
	return LevelSeed{
		ID:      def.ID,
		Name:    def.Name,
		Grid:    FillGrid(cat.Tiles.Rows(), cat.Tiles.Cols(), def.Fill),
		Objects: map[Point]string{},
	}
}

// ResolveReport says where levels came from.
type ResolveReport struct {
	Source   string  // source that supplied levels, "fallback" if none did
	Errors   []error // per-source failures, in order tried
	Fallback []int   // level ids generated by the fallback
}

// ResolveLevels tries sources in order and keeps the first non-empty result.
// Every level in the index that is still missing afterwards is generated by
// the fallback, so the result always covers the whole index.
func ResolveLevels(ctx context.Context, cat *Catalog, sources ...LevelSource) ([]LevelSeed, ResolveReport) {
	var report ResolveReport
	var seeds []LevelSeed
	for _, src := range sources {
		got, err := src.LoadLevels(ctx)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("%s: %w", src.Name(), err))
		}
		if len(got) > 0 {
			seeds = got
			report.Source = src.Name()
			break
		}
	}
	if report.Source == "" {
		report.Source = "fallback"
	}

	have := make(map[int]bool, len(seeds))
	for _, s := range seeds {
		have[s.ID] = true
	}
	for _, def := range cat.Levels.All() {
		if !have[def.ID] {
			seeds = append(seeds, fallbackSeed(cat, def))
			report.Fallback = append(report.Fallback, def.ID)
		}
	}
	sort.Slice(seeds, func(i, j int) bool { return seeds[i].ID < seeds[j].ID })
	return seeds, report
}
