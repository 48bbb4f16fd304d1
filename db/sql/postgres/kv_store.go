package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/intelliquiz/iqclient/cache"
)

// KVStore persists cache.Store entries inside the client_kv table.
type KVStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewKVStore wraps an existing *sql.DB connection. The table must exist (see Connect).
func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value, expires_at FROM client_kv WHERE key = $1`
	var (
		value     []byte
		expiresAt pq.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cache.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get %s: %w", key, err)
	}
	if expiresAt.Valid && !s.now().Before(expiresAt.Time) {
		_ = s.Delete(ctx, key)
		return nil, cache.ErrNotFound
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	const query = `INSERT INTO client_kv (key, value, expires_at) VALUES ($1, $2, $3)
                   ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`
	var expiresAt pq.NullTime
	if ttl > 0 {
		expiresAt = pq.NullTime{Time: s.now().Add(ttl).UTC(), Valid: true}
	}
	if _, err := s.db.ExecContext(ctx, query, key, value, expiresAt); err != nil {
		return fmt.Errorf("postgres: set %s: %w", key, translateError(err))
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM client_kv WHERE key = $1`
	res, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("postgres: delete %s: %w", key, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return cache.ErrNotFound
	}
	return nil
}

// ErrSchemaMissing reports that Connect (or Migrate with KVTableSchema) was never run.
var ErrSchemaMissing = errors.New("postgres: client_kv table missing")

func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "42P01" {
		return ErrSchemaMissing
	}
	return err
}
