// levelseed validates map files and copies them into the levels table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/grokyworld/server/internal/config"
	"github.com/grokyworld/server/internal/data"
	"github.com/grokyworld/server/internal/persist"
	"go.uber.org/zap"
)

func printUsage() {
	fmt.Println("Usage: levelseed <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  check     Parse every map file named in the level index")
	fmt.Println("  upload    Check, then store the map files in the database")
	fmt.Println("  delete    Remove one stored level (-id)")
	fmt.Println("  version   Print the database schema version")
}

type options struct {
	cfg     *config.Config
	cat     *data.Catalog
	mapsDir string
	id      int
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	cfgPath := fs.String("config", filepath.Join("config", "server.toml"), "server config")
	mapsDir := fs.String("maps", "", "map directory (default: data.maps_dir from config)")
	id := fs.Int("id", 0, "level id for delete")
	_ = fs.Parse(os.Args[2:])

	commands := map[string]func(context.Context, options) error{
		"check":   check,
		"upload":  upload,
		"delete":  remove,
		"version": version,
	}
	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	cat, err := data.DefaultCatalog()
	if cfg.Data.CatalogPath != "" {
		cat, err = data.LoadCatalogDir(cfg.Data.CatalogPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: catalog: %v\n", err)
		os.Exit(1)
	}
	opts := options{cfg: cfg, cat: cat, mapsDir: cfg.Data.MapsDir, id: *id}
	if *mapsDir != "" {
		opts.mapsDir = *mapsDir
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := fn(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Done!")
}

type mapFile struct {
	def  data.LevelDef
	raw  []byte
	seed data.LevelSeed
}

// readMaps parses every indexed map file present in dir. Missing files are
// skipped; a file that fails to parse fails the whole run.
func readMaps(o options) ([]mapFile, error) {
	var files []mapFile
	for _, def := range o.cat.Levels.All() {
		if def.File == "" {
			continue
		}
		path := filepath.Join(o.mapsDir, def.File)
		raw, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("  level %d: %s missing, skipped\n", def.ID, path)
			continue
		}
		if err != nil {
			return nil, err
		}
		seed, err := data.ParseMapFile(raw, def, o.cat.Tiles.Rows(), o.cat.Tiles.Cols())
		if err != nil {
			return nil, err
		}
		fmt.Printf("  level %d (%s): %d objects, %d waves\n", def.ID, seed.Name, len(seed.Objects), len(seed.Waves))
		files = append(files, mapFile{def: def, raw: raw, seed: seed})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no map files in %s", o.mapsDir)
	}
	return files, nil
}

func check(_ context.Context, o options) error {
	_, err := readMaps(o)
	return err
}

func connect(ctx context.Context, o options) (*persist.DB, error) {
	db, err := persist.NewDB(ctx, o.cfg.Database, zap.NewNop())
	if err != nil {
		return nil, err
	}
	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func upload(ctx context.Context, o options) error {
	files, err := readMaps(o)
	if err != nil {
		return err
	}
	db, err := connect(ctx, o)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := persist.NewLevelRepo(db, o.cat)
	for _, f := range files {
		row := persist.LevelRow{ID: f.def.ID, Name: f.seed.Name, Body: string(f.raw)}
		if err := repo.Save(ctx, row); err != nil {
			return err
		}
	}
	fmt.Printf("Stored %d levels\n", len(files))
	return nil
}

func remove(ctx context.Context, o options) error {
	if o.id <= 0 {
		return fmt.Errorf("delete needs -id")
	}
	db, err := connect(ctx, o)
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := persist.NewLevelRepo(db, o.cat).Delete(ctx, o.id)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Printf("Level %d was not stored\n", o.id)
	}
	return nil
}

func version(ctx context.Context, o options) error {
	db, err := connect(ctx, o)
	if err != nil {
		return err
	}
	defer db.Close()

	v, err := persist.SchemaVersion(ctx, db.Pool)
	if err != nil {
		return err
	}
	fmt.Printf("Schema version %d\n", v)
	return nil
}
