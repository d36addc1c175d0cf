package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

func setupSQLite(t *testing.T) (*SQLiteStorage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "storefront.db")
	s, err := NewSQLiteStorage(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSQLiteStorage_GetSet(t *testing.T) {
	s, _ := setupSQLite(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "storefront:s1:cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "storefront:s1:cart", "[]"))
	require.NoError(t, s.Set(ctx, "storefront:s1:cart", `[{"id":"p1","quantity":2}]`))

	v, ok, err := s.Get(ctx, "storefront:s1:cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"p1","quantity":2}]`, v)
	assert.NoError(t, s.Ping(ctx))
}

func TestSQLiteStorage_SurvivesReopen(t *testing.T) {
	s, path := setupSQLite(t)
	ctx := context.Background()

	items := []domain.WishlistItem{{ID: "w1", Name: "Kanjivaram", Price: "₹30,000", Image: "i"}}
	wishlistBridge(s).Save(ctx, items)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStorage(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, items, wishlistBridge(reopened).Load(ctx))
}
