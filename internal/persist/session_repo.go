package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SessionRepo records gateway connections.
type SessionRepo struct {
	db *DB
}

func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Opened(ctx context.Context, id uuid.UUID, remoteAddr string) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO gateway_sessions (id, remote_addr) VALUES ($1, $2)`,
		id, remoteAddr,
	)
	if err != nil {
		return fmt.Errorf("record session %s: %w", id, err)
	}
	return nil
}

func (r *SessionRepo) Closed(ctx context.Context, id uuid.UUID, intents int) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE gateway_sessions SET disconnected_at = NOW(), intents = $2 WHERE id = $1`,
		id, intents,
	)
	if err != nil {
		return fmt.Errorf("close session %s: %w", id, err)
	}
	return nil
}
