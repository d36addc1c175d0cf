package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/utafrali/storefront/pkg/database"
)

const (
	sqliteSelectSQL = `SELECT value FROM storage_slots WHERE key = ?`
	sqliteUpsertSQL = `INSERT INTO storage_slots (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
)

// SQLiteStorage implements Storage using a single SQLite file.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the database at path and ensures the
// storage_slots table exists.
func NewSQLiteStorage(ctx context.Context, path string) (*SQLiteStorage, error) {
	if path == "" {
		path = "storefront.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS storage_slots (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create storage_slots table: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Get reads a slot value.
func (s *SQLiteStorage) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	ctx, end := database.TraceStorage(ctx, database.SystemSQLite, "GetSlot", sqliteSelectSQL)
	defer func() { end(err) }()

	var value string
	err = s.db.QueryRowContext(ctx, sqliteSelectSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select slot %s: %w", key, err)
	}

	return value, true, nil
}

// Set upserts a slot value.
func (s *SQLiteStorage) Set(ctx context.Context, key, value string) (err error) {
	ctx, end := database.TraceStorage(ctx, database.SystemSQLite, "SetSlot", sqliteUpsertSQL)
	defer func() { end(err) }()

	if _, err = s.db.ExecContext(ctx, sqliteUpsertSQL, key, value); err != nil {
		return fmt.Errorf("upsert slot %s: %w", key, err)
	}

	return nil
}

// Ping checks the database handle.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
