package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/database"
)

func setupMockPostgres(t *testing.T) (*PostgresStorage, pgxmock.PgxPoolIface) {
	t.Helper()
	mock := database.NewMockPool(t)
	return NewPostgresStorage(mock), mock
}

func TestPostgresStorage_Get(t *testing.T) {
	s, mock := setupMockPostgres(t)

	mock.ExpectQuery("SELECT value FROM storage_slots").
		WithArgs("storefront:s1:cart").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(`[{"id":"p1","quantity":1}]`))

	v, ok, err := s.Get(context.Background(), "storefront:s1:cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"p1","quantity":1}]`, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_GetMissing(t *testing.T) {
	s, mock := setupMockPostgres(t)

	mock.ExpectQuery("SELECT value FROM storage_slots").
		WithArgs("storefront:s1:cart").
		WillReturnError(pgx.ErrNoRows)

	_, ok, err := s.Get(context.Background(), "storefront:s1:cart")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_GetError(t *testing.T) {
	s, mock := setupMockPostgres(t)

	mock.ExpectQuery("SELECT value FROM storage_slots").
		WithArgs("k").
		WillReturnError(errors.New("connection reset"))

	_, _, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select slot k")
}

func TestPostgresStorage_SetUpserts(t *testing.T) {
	s, mock := setupMockPostgres(t)

	mock.ExpectExec("INSERT INTO storage_slots").
		WithArgs("storefront:s1:wishlist", "[]").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Set(context.Background(), "storefront:s1:wishlist", "[]"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_SetError(t *testing.T) {
	s, mock := setupMockPostgres(t)

	mock.ExpectExec("INSERT INTO storage_slots").
		WithArgs("k", "v").
		WillReturnError(errors.New("disk full"))

	err := s.Set(context.Background(), "k", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert slot k")
}

func TestMigrate_CreatesStorageSlots(t *testing.T) {
	mock := database.NewMockPool(t)

	name := "000001_create_storage_slots.up.sql"
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(name).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS storage_slots").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(name).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, Migrate(context.Background(), mock, testLogger()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
