package persistence

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/pkg/database"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	selectSlotSQL = `SELECT value FROM storage_slots WHERE key = $1`
	upsertSlotSQL = `INSERT INTO storage_slots (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
)

// PostgresStorage implements Storage using a PostgreSQL table.
type PostgresStorage struct {
	db database.DBTX
}

// NewPostgresStorage creates a PostgreSQL-backed storage.
func NewPostgresStorage(db database.DBTX) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// Migrate creates the storage_slots table when it does not exist.
func Migrate(ctx context.Context, db database.DBTX, logger *slog.Logger) error {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	return database.RunMigrations(ctx, db, sub, logger)
}

// Get reads a slot value.
func (s *PostgresStorage) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	ctx, end := database.TraceQuery(ctx, "GetSlot", selectSlotSQL)
	defer func() { end(err) }()

	var value string
	err = s.db.QueryRow(ctx, selectSlotSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select slot %s: %w", key, err)
	}

	return value, true, nil
}

// Set upserts a slot value.
func (s *PostgresStorage) Set(ctx context.Context, key, value string) (err error) {
	ctx, end := database.TraceQuery(ctx, "SetSlot", upsertSlotSQL)
	defer func() { end(err) }()

	if _, err = s.db.Exec(ctx, upsertSlotSQL, key, value); err != nil {
		return fmt.Errorf("upsert slot %s: %w", key, err)
	}

	return nil
}

// Ping checks the database connection.
func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
