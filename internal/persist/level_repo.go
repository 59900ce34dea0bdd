package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/grokyworld/server/internal/data"
)

// LevelRow is one stored map file.
type LevelRow struct {
	ID   int
	Name string
	Body string // map file text, YAML or JSON
}

// LevelRepo is the Postgres level store. It is a data.LevelSource.
type LevelRepo struct {
	db  *DB
	cat *data.Catalog
}

func NewLevelRepo(db *DB, cat *data.Catalog) *LevelRepo {
	return &LevelRepo{db: db, cat: cat}
}

func (r *LevelRepo) Name() string { return "postgres" }

// LoadLevels parses every stored level that the level index knows about.
// Rows for unknown ids and rows that fail to parse are reported and skipped.
func (r *LevelRepo) LoadLevels(ctx context.Context) ([]data.LevelSeed, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name, body FROM levels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query levels: %w", err)
	}
	defer rows.Close()

	var stored []LevelRow
	for rows.Next() {
		var row LevelRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Body); err != nil {
			return nil, fmt.Errorf("scan level: %w", err)
		}
		stored = append(stored, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read levels: %w", err)
	}

	var seeds []data.LevelSeed
	var errs []error
	for _, row := range stored {
		def, ok := r.cat.Levels.Get(row.ID)
		if !ok {
			errs = append(errs, fmt.Errorf("stored level %d is not in the level index", row.ID))
			continue
		}
		if def.File == "" {
			def.File = fmt.Sprintf("levels/%d", row.ID)
		}
		seed, err := data.ParseMapFile([]byte(row.Body), def, r.cat.Tiles.Rows(), r.cat.Tiles.Cols())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if seed.Name == def.Name && row.Name != "" {
			seed.Name = row.Name
		}
		seeds = append(seeds, seed)
	}
	if len(seeds) == 0 {
		errs = append(errs, data.ErrNoLevels)
	}
	return seeds, errors.Join(errs...)
}

// Save inserts or replaces a stored level.
func (r *LevelRepo) Save(ctx context.Context, row LevelRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO levels (id, name, body, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, body = EXCLUDED.body, updated_at = NOW()`,
		row.ID, row.Name, row.Body,
	)
	if err != nil {
		return fmt.Errorf("save level %d: %w", row.ID, err)
	}
	return nil
}

// Delete removes a stored level; the next start falls back to map files.
func (r *LevelRepo) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM levels WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete level %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
