package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"stock-report/utils"
)

// NewPostgresStore opens a connection to PostgreSQL, waits for it to answer
// pings, and creates the three tables if needed.
func NewPostgresStore(ctx context.Context, dsn string, mode CommitMode, retry *utils.RetryConfig) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", func(ctx context.Context) error {
		return db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	s, err := newSQLStore(ctx, db, postgresDialect, mode)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
