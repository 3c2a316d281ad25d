package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kanonhq/kanon/internal/log"
)

// PostgresStore persists wizard state in the wizard_state table, one JSONB
// row per (session_id, key). Safe for concurrent use.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// NewPostgresStore creates a PostgresStore on the given pool.
func NewPostgresStore(pool *pgxpool.Pool, logger log.Logger) *PostgresStore {
	if logger == nil {
		logger = log.NewNop()
	}
	return &PostgresStore{pool: pool, logger: logger}
}

// Get implements Store.
func (p *PostgresStore) Get(ctx context.Context, sessionID uuid.UUID, key string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM wizard_state WHERE session_id = $1 AND key = $2`,
		sessionID, key,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading wizard state %s: %w", key, err)
	}
	return raw, nil
}

// Put implements Store with upsert semantics.
func (p *PostgresStore) Put(ctx context.Context, sessionID uuid.UUID, key string, value json.RawMessage) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO wizard_state (session_id, key, value, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (session_id, key)
		 DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		sessionID, key, value,
	)
	if err != nil {
		return fmt.Errorf("storing wizard state %s: %w", key, err)
	}
	p.logger.Debug("wizard state stored", "session", sessionID, "key", key, "bytes", len(value))
	return nil
}

// Delete implements Store.
func (p *PostgresStore) Delete(ctx context.Context, sessionID uuid.UUID, key string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM wizard_state WHERE session_id = $1 AND key = $2`,
		sessionID, key,
	)
	if err != nil {
		return fmt.Errorf("deleting wizard state %s: %w", key, err)
	}
	return nil
}
