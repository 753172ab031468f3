package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// NewSQLiteStore opens (or creates) the SQLite database at path and
// ensures the three tables exist.
func NewSQLiteStore(ctx context.Context, path string, mode CommitMode) (*SQLStore, error) {
	if path == "" {
		path = "stock.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("sqlite: create dirs: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One writer; also keeps :memory: databases on a single connection.
	db.SetMaxOpenConns(1)

	s, err := newSQLStore(ctx, db, sqliteDialect, mode)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
