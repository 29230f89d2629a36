package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"event-planner-web/pkg/utils"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS client_storage (
	client_id  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (client_id, key)
)`

// PostgresBackend stores values in the client_storage table.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) (*PostgresBackend, error) {
	if db == nil {
		return nil, errors.New("token: db is nil")
	}
	return &PostgresBackend{db: db}, nil
}

// Migrate creates the client_storage table if it does not exist.
func (b *PostgresBackend) Migrate(ctx context.Context) error {
	return utils.EnsureSchema(ctx, b.db, postgresSchema)
}

func (b *PostgresBackend) Load(ctx context.Context, clientID, key string) (string, error) {
	var v string
	err := b.db.QueryRowContext(ctx,
		`SELECT value FROM client_storage WHERE client_id = $1 AND key = $2`,
		clientID, key,
	).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return v, nil
}

func (b *PostgresBackend) Save(ctx context.Context, clientID, key, value string) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO client_storage (client_id, key, value, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (client_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		clientID, key, value,
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (b *PostgresBackend) Delete(ctx context.Context, clientID, key string) error {
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM client_storage WHERE client_id = $1 AND key = $2`,
		clientID, key,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
