package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func TestWishlist_AddIsIdempotent(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishWishlistUpdated", mock.Anything, mock.Anything).Return(nil)
	wl, _ := newTestWishlist(t, nil, pub)
	ctx := context.Background()

	_, err := wl.Add(ctx, silkProduct())
	require.NoError(t, err)
	snap, err := wl.Add(ctx, silkProduct())
	require.NoError(t, err)

	require.Len(t, snap.Items, 1)
	assert.Equal(t, "zari", snap.Items[0].Work)
	assert.Equal(t, 1, snap.ItemCount)
	pub.AssertNumberOfCalls(t, "PublishWishlistUpdated", 1)
}

func TestWishlist_ToggleAddsThenRemoves(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishWishlistUpdated", mock.Anything, mock.MatchedBy(func(d event.WishlistUpdatedData) bool {
		return d.SessionID == "sess-1"
	})).Return(nil)
	wl, storage := newTestWishlist(t, nil, pub)
	ctx := context.Background()

	snap, err := wl.Toggle(ctx, cottonProduct())
	require.NoError(t, err)
	assert.True(t, wl.Contains("p2"))
	assert.Len(t, snap.Items, 1)

	snap, err = wl.Toggle(ctx, cottonProduct())
	require.NoError(t, err)
	assert.False(t, wl.Contains("p2"))
	assert.Empty(t, snap.Items)

	raw, ok, _ := storage.Get(ctx, "storefront:sess-1:wishlist")
	require.True(t, ok)
	assert.Equal(t, "[]", raw)
}

func TestWishlist_ToggleInvalidProduct(t *testing.T) {
	wl, _ := newTestWishlist(t, nil, new(mockPublisher))

	_, err := wl.Toggle(context.Background(), domain.Product{ID: "x", Name: "No image", Price: "1"})

	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.False(t, wl.Contains("x"))
}

func TestWishlist_ToggleByID(t *testing.T) {
	catalog := new(mockCatalog)
	catalog.On("GetProduct", mock.Anything, "p2").Return(cottonProduct(), nil)
	pub := new(mockPublisher)
	pub.On("PublishWishlistUpdated", mock.Anything, mock.Anything).Return(nil)
	wl, _ := newTestWishlist(t, catalog, pub)

	snap, err := wl.ToggleByID(context.Background(), "p2")

	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Handloom Cotton", snap.Items[0].Name)
}

func TestWishlist_ToggleByIDUnavailable(t *testing.T) {
	catalog := new(mockCatalog)
	catalog.On("GetProduct", mock.Anything, "p2").Return(domain.Product{}, apperrors.ServiceUnavailable("catalog is unavailable"))
	wl, _ := newTestWishlist(t, catalog, new(mockPublisher))

	_, err := wl.ToggleByID(context.Background(), "p2")

	assert.Equal(t, 503, apperrors.HTTPStatus(err))
	assert.Empty(t, wl.Snapshot().Items)
}

func TestWishlist_RemoveClearAndPanel(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishWishlistUpdated", mock.Anything, mock.Anything).Return(nil)
	wl, _ := newTestWishlist(t, nil, pub)
	ctx := context.Background()

	_, _ = wl.Add(ctx, silkProduct())
	_, _ = wl.Add(ctx, cottonProduct())

	snap := wl.Remove(ctx, "fs-1")
	require.Len(t, snap.Items, 1)

	snap = wl.TogglePanel(ctx)
	assert.True(t, snap.IsOpen)

	snap = wl.Clear(ctx)
	assert.Empty(t, snap.Items)
	assert.True(t, snap.IsOpen)
	assert.Equal(t, 0, wl.Snapshot().ItemCount)
	pub.AssertNumberOfCalls(t, "PublishWishlistUpdated", 4)
}
