package persist

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Journal entry kinds.
const (
	JournalPurchase = "purchase"
	JournalQuest    = "quest"
)

// JournalEntry is one economic event of the world: a purchase or a quest
// turn-in.
type JournalEntry struct {
	Kind    string
	Subject string    // item or quest id
	Detail  string    // cost or reward, e.g. "1 Wood, 1 Rock"
	At      time.Time // simulated time
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// WriteBatch writes entries in a single transaction.
func (r *JournalRepo) WriteBatch(ctx context.Context, entries []JournalEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO world_journal (kind, subject, detail, sim_time)
			 VALUES ($1, $2, $3, $4)`,
			e.Kind, e.Subject, e.Detail, e.At,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// Recent returns the latest entries of a kind, newest first.
func (r *JournalRepo) Recent(ctx context.Context, kind string, limit int) ([]JournalEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT kind, subject, detail, sim_time FROM world_journal
		 WHERE kind = $1 ORDER BY id DESC LIMIT $2`,
		kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.Kind, &e.Subject, &e.Detail, &e.At); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// BatchWriter stores journal batches.
type BatchWriter interface {
	WriteBatch(ctx context.Context, entries []JournalEntry) error
}

// Journal hands entries from the game loop to a background writer. Enqueue
// never blocks; entries that do not fit in the queue are dropped and logged.
type Journal struct {
	w          BatchWriter
	in         chan JournalEntry
	flushEvery time.Duration
	batchSize  int
	log        *zap.Logger
	done       chan struct{}
}

func NewJournal(w BatchWriter, queueSize int, flushEvery time.Duration, log *zap.Logger) *Journal {
	if queueSize <= 0 {
		queueSize = 256
	}
	if flushEvery <= 0 {
		flushEvery = time.Second
	}
	return &Journal{
		w:          w,
		in:         make(chan JournalEntry, queueSize),
		flushEvery: flushEvery,
		batchSize:  64,
		log:        log,
		done:       make(chan struct{}),
	}
}

// Enqueue offers an entry to the writer. Game-loop safe.
func (j *Journal) Enqueue(e JournalEntry) bool {
	select {
	case j.in <- e:
		return true
	default:
		j.log.Warn("journal queue full, entry dropped", zap.String("kind", e.Kind), zap.String("subject", e.Subject))
		return false
	}
}

// Run writes batches until ctx is cancelled, then drains what is queued.
func (j *Journal) Run(ctx context.Context) {
	defer close(j.done)
	ticker := time.NewTicker(j.flushEvery)
	defer ticker.Stop()

	batch := make([]JournalEntry, 0, j.batchSize)
	for {
		select {
		case e := <-j.in:
			batch = append(batch, e)
			if len(batch) >= j.batchSize {
				batch = j.flush(ctx, batch)
			}
		case <-ticker.C:
			batch = j.flush(ctx, batch)
		case <-ctx.Done():
			for {
				select {
				case e := <-j.in:
					batch = append(batch, e)
				default:
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					j.flush(shutdownCtx, batch)
					cancel()
					return
				}
			}
		}
	}
}

// Wait blocks until Run has returned.
func (j *Journal) Wait() { <-j.done }

func (j *Journal) flush(ctx context.Context, batch []JournalEntry) []JournalEntry {
	if len(batch) == 0 {
		return batch
	}
	if err := j.w.WriteBatch(ctx, batch); err != nil {
		j.log.Error("journal write failed", zap.Int("entries", len(batch)), zap.Error(err))
	} else {
		j.log.Debug("journal flushed", zap.Int("entries", len(batch)))
	}
	return batch[:0]
}
