package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/RezaEskandarii/lrrctl/internal/store"
	"github.com/lib/pq"
)

type postgresLocalStore struct {
	db *sql.DB
}

// NewPostgresLocalStore creates a LocalStore backed by lrrctl_schema.local_storage.
// The table is created by db.Init.
func NewPostgresLocalStore(db *sql.DB) store.LocalStore {
	return &postgresLocalStore{db: db}
}

func (s *postgresLocalStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM lrrctl_schema.local_storage WHERE key = $1`
	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *postgresLocalStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO lrrctl_schema.local_storage (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	_, err := s.db.ExecContext(ctx, query, key, value)
	return err
}

func (s *postgresLocalStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query := `DELETE FROM lrrctl_schema.local_storage WHERE key = ANY($1)`
	_, err := s.db.ExecContext(ctx, query, pq.Array(keys))
	return err
}

func (s *postgresLocalStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM lrrctl_schema.local_storage ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *postgresLocalStore) Close() error {
	return s.db.Close()
}
