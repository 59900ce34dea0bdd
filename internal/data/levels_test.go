package data

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMapFileFillAndTerrain(t *testing.T) {
	def := LevelDef{ID: 2, Name: "Wilderness", Fill: "sand"}
	seed, err := ParseMapFile([]byte(`
terrain:
  "0,0": stone
objects:
  "3,4": treeobject
waves:
  1: {"5,5": spider}
  2: {"6,6": skeleton, "7,6": spider}
`), def, 4, 8)
	require.NoError(t, err)

	assert.Equal(t, "Wilderness", seed.Name)
	require.Len(t, seed.Grid, 4)
	assert.Len(t, seed.Grid[0], 8)
	assert.Equal(t, "stone", seed.Grid[0][0])
	assert.Equal(t, "sand", seed.Grid[3][7])
	assert.Equal(t, "treeobject", seed.Objects[Point{3, 4}])
	assert.Len(t, seed.Waves[2], 2)
}

func TestParseMapFileAcceptsEditorJSON(t *testing.T) {
	def := LevelDef{ID: 1, Name: "Town", Fill: "grass"}
	seed, err := ParseMapFile([]byte(`{"name":"Old Town","grid":[["grass","stone"],["grass","grass"]],"objects":{"1,1":"farmer001"}}`), def, 16, 24)
	require.NoError(t, err)

	assert.Equal(t, "Old Town", seed.Name)
	assert.Equal(t, [][]string{{"grass", "stone"}, {"grass", "grass"}}, seed.Grid)
	assert.Equal(t, "farmer001", seed.Objects[Point{1, 1}])
}

func TestParseMapFileRejectsOutOfBounds(t *testing.T) {
	def := LevelDef{ID: 1, Fill: "grass"}
	_, err := ParseMapFile([]byte(`objects: {"30,1": treeobject}`), def, 16, 24)
	assert.ErrorContains(t, err, "out of bounds")

	_, err = ParseMapFile([]byte(`grid: [[a, b], [c]]`), def, 16, 24)
	assert.Error(t, err)
}

type failingSource struct{}

func (failingSource) Name() string { return "db" }
func (failingSource) LoadLevels(context.Context) ([]LevelSeed, error) {
	return nil, errors.New("connection refused")
}

func TestResolveLevelsFallsBack(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	seeds, report := ResolveLevels(context.Background(), c, failingSource{}, DirSource{Dir: t.TempDir(), Catalog: c})

	assert.Equal(t, "fallback", report.Source)
	assert.Len(t, report.Errors, 2)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, report.Fallback)
	require.Len(t, seeds, 5)
	assert.Equal(t, "Town", seeds[0].Name)
	assert.Equal(t, "grass", seeds[0].Grid[0][0])
	assert.Equal(t, "darkstone", seeds[4].Grid[15][23])
	assert.Empty(t, seeds[4].Objects)
}

func TestResolveLevelsFillsMissingFromDir(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "town.yaml"), []byte(`objects: {"4,4": treeobject}`), 0o644))

	seeds, report := ResolveLevels(context.Background(), c, DirSource{Dir: dir, Catalog: c})

	assert.Equal(t, "dir:"+dir, report.Source)
	assert.Equal(t, []int{2, 3, 4, 5}, report.Fallback)
	require.Len(t, seeds, 5)
	assert.Equal(t, "treeobject", seeds[0].Objects[Point{4, 4}])
}
