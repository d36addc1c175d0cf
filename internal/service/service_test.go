package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/persistence"
	"github.com/utafrali/storefront/internal/store"
)

// --- Mocks ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishCartUpdated(ctx context.Context, data event.CartUpdatedData) error {
	return m.Called(ctx, data).Error(0)
}

func (m *mockPublisher) PublishCartCleared(ctx context.Context, data event.CartClearedData) error {
	return m.Called(ctx, data).Error(0)
}

func (m *mockPublisher) PublishWishlistUpdated(ctx context.Context, data event.WishlistUpdatedData) error {
	return m.Called(ctx, data).Error(0)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

// --- Helpers ---

var testIdentity = event.Identity{SessionID: "sess-1", UserID: "user-1"}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCart(t *testing.T, catalog Catalog, pub event.Publisher) (*Cart, *persistence.MemoryStorage) {
	t.Helper()
	storage := persistence.NewMemoryStorage()
	logger := newTestLogger()
	bridge := persistence.NewBridge[domain.LineItem](storage, "storefront:sess-1:cart", persistence.SlotCart, logger)
	s := store.New[domain.LineItem](context.Background(), store.CartStrategy{}, bridge, logger)
	return NewCart(s, catalog, pub, testIdentity, logger), storage
}

func newTestWishlist(t *testing.T, catalog Catalog, pub event.Publisher) (*Wishlist, *persistence.MemoryStorage) {
	t.Helper()
	storage := persistence.NewMemoryStorage()
	logger := newTestLogger()
	bridge := persistence.NewBridge[domain.WishlistItem](storage, "storefront:sess-1:wishlist", persistence.SlotWishlist, logger)
	s := store.New[domain.WishlistItem](context.Background(), store.WishlistStrategy{}, bridge, logger)
	return NewWishlist(s, catalog, pub, testIdentity, logger), storage
}

func silkProduct() domain.Product {
	return domain.Product{
		ID:          "local-1",
		FirestoreID: "fs-1",
		Name:        "Banarasi Silk",
		Price:       "₹12,500",
		Images:      []domain.ProductImage{{URL: "https://img/a.jpg"}, {URL: "https://img/main.jpg", IsMain: true}},
		Fabric:      "silk",
		Work:        "zari",
	}
}

func cottonProduct() domain.Product {
	return domain.Product{ID: "p2", Name: "Handloom Cotton", Price: "2000", Image: "https://img/p2.jpg"}
}
