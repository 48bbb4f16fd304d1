package postgres

import (
	"context"
	"database/sql"
)

// Connect opens a PostgreSQL connection and makes sure the kv table exists.
func Connect(ctx context.Context, opts ...Option) (*sql.DB, error) {
	db, err := Open(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db, KVTableSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the given statements using the provided context.
func Migrate(ctx context.Context, db *sql.DB, statements ...string) error {
	return ApplyMigrations(ctx, db, statements...)
}
