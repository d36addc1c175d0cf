package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/pkg/tracing"
)

// WishlistSnapshot is the read model of a wishlist.
type WishlistSnapshot struct {
	Items     []domain.WishlistItem `json:"items"`
	IsOpen    bool                  `json:"isOpen"`
	ItemCount int                   `json:"itemCount"`
}

// Wishlist dispatches wishlist operations for one session.
type Wishlist struct {
	store    *store.Store[domain.WishlistItem]
	catalog  Catalog
	events   event.Publisher
	identity event.Identity
	logger   *slog.Logger
}

// NewWishlist creates a wishlist dispatcher over s.
func NewWishlist(s *store.Store[domain.WishlistItem], catalog Catalog, events event.Publisher, identity event.Identity, logger *slog.Logger) *Wishlist {
	return &Wishlist{
		store:    s,
		catalog:  catalog,
		events:   events,
		identity: identity,
		logger:   logger,
	}
}

// Add saves product. Saving a product twice keeps the first entry.
func (w *Wishlist) Add(ctx context.Context, product domain.Product) (WishlistSnapshot, error) {
	summary, err := summarize(product)
	if err != nil {
		return WishlistSnapshot{}, err
	}
	return w.dispatch(ctx, store.AddItem(domain.NewWishlistItem(summary))), nil
}

// Toggle removes product if saved and saves it otherwise.
func (w *Wishlist) Toggle(ctx context.Context, product domain.Product) (WishlistSnapshot, error) {
	summary, err := summarize(product)
	if err != nil {
		return WishlistSnapshot{}, err
	}
	return w.dispatch(ctx, store.ToggleItem(domain.NewWishlistItem(summary))), nil
}

// ToggleByID toggles a product resolved through the catalog.
func (w *Wishlist) ToggleByID(ctx context.Context, productID string) (WishlistSnapshot, error) {
	summary, err := resolve(ctx, w.catalog, productID)
	if err != nil {
		return WishlistSnapshot{}, err
	}
	return w.dispatch(ctx, store.ToggleItem(domain.NewWishlistItem(summary))), nil
}

// Remove drops the entry with the given id.
func (w *Wishlist) Remove(ctx context.Context, id string) WishlistSnapshot {
	return w.dispatch(ctx, store.RemoveItem[domain.WishlistItem](id))
}

// Contains reports whether id is saved.
func (w *Wishlist) Contains(id string) bool {
	return w.store.Contains(id)
}

// Clear empties the wishlist.
func (w *Wishlist) Clear(ctx context.Context) WishlistSnapshot {
	return w.dispatch(ctx, store.Clear[domain.WishlistItem]())
}

// TogglePanel flips the wishlist panel.
func (w *Wishlist) TogglePanel(ctx context.Context) WishlistSnapshot {
	return w.dispatch(ctx, store.TogglePanel[domain.WishlistItem]())
}

// Snapshot returns the current wishlist.
func (w *Wishlist) Snapshot() WishlistSnapshot {
	return wishlistSnapshot(w.store.Snapshot())
}

func (w *Wishlist) dispatch(ctx context.Context, action store.Action[domain.WishlistItem]) WishlistSnapshot {
	ctx, span := tracing.Start(ctx, "service", "wishlist."+string(action.Kind),
		attribute.String("storefront.session_id", w.identity.SessionID),
	)
	defer span.End()

	state, changed := w.store.Apply(ctx, action)
	span.SetAttributes(attribute.Bool("storefront.changed", changed))
	snap := wishlistSnapshot(state)
	if !changed {
		return snap
	}

	w.logger.InfoContext(ctx, "wishlist updated",
		slog.String("session_id", w.identity.SessionID),
		slog.String("action", string(action.Kind)),
		slog.Int("item_count", snap.ItemCount),
	)

	if err := w.events.PublishWishlistUpdated(ctx, event.WishlistUpdatedData{
		SessionID: w.identity.SessionID,
		UserID:    w.identity.UserID,
		Items:     snap.Items,
		ItemCount: snap.ItemCount,
	}); err != nil {
		w.logger.WarnContext(ctx, "failed to publish wishlist event",
			slog.String("session_id", w.identity.SessionID),
			slog.String("error", err.Error()),
		)
	}

	return snap
}

func wishlistSnapshot(state store.State[domain.WishlistItem]) WishlistSnapshot {
	return WishlistSnapshot{
		Items:     state.Items,
		IsOpen:    state.IsOpen,
		ItemCount: store.Count(state),
	}
}
