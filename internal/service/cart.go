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

// CartSnapshot is the read model of a cart.
type CartSnapshot struct {
	Items     []domain.LineItem `json:"items"`
	IsOpen    bool              `json:"isOpen"`
	ItemCount int               `json:"itemCount"`
	Subtotal  int64             `json:"subtotal"`
}

// Cart dispatches cart operations for one session.
type Cart struct {
	store    *store.Store[domain.LineItem]
	catalog  Catalog
	events   event.Publisher
	identity event.Identity
	logger   *slog.Logger
}

// NewCart creates a cart dispatcher over s. catalog may be nil, in which case
// AddByID reports the catalog as unavailable.
func NewCart(s *store.Store[domain.LineItem], catalog Catalog, events event.Publisher, identity event.Identity, logger *slog.Logger) *Cart {
	return &Cart{
		store:    s,
		catalog:  catalog,
		events:   events,
		identity: identity,
		logger:   logger,
	}
}

// Add puts one unit of product into the cart.
func (c *Cart) Add(ctx context.Context, product domain.Product) (CartSnapshot, error) {
	summary, err := summarize(product)
	if err != nil {
		return CartSnapshot{}, err
	}
	return c.add(ctx, summary), nil
}

// AddByID resolves productID through the catalog and adds one unit of it.
func (c *Cart) AddByID(ctx context.Context, productID string) (CartSnapshot, error) {
	summary, err := resolve(ctx, c.catalog, productID)
	if err != nil {
		return CartSnapshot{}, err
	}
	return c.add(ctx, summary), nil
}

func (c *Cart) add(ctx context.Context, summary domain.ProductSummary) CartSnapshot {
	return c.dispatch(ctx, store.AddItem(domain.NewLineItem(summary)))
}

// Remove drops the line with the given id.
func (c *Cart) Remove(ctx context.Context, id string) CartSnapshot {
	return c.dispatch(ctx, store.RemoveItem[domain.LineItem](id))
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
func (c *Cart) UpdateQuantity(ctx context.Context, id string, quantity int) CartSnapshot {
	return c.dispatch(ctx, store.UpdateQuantity[domain.LineItem](id, quantity))
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) CartSnapshot {
	return c.dispatch(ctx, store.Clear[domain.LineItem]())
}

// TogglePanel flips the cart panel.
func (c *Cart) TogglePanel(ctx context.Context) CartSnapshot {
	return c.dispatch(ctx, store.TogglePanel[domain.LineItem]())
}

// Snapshot returns the current cart.
func (c *Cart) Snapshot() CartSnapshot {
	return cartSnapshot(c.store.Snapshot())
}

func (c *Cart) dispatch(ctx context.Context, action store.Action[domain.LineItem]) CartSnapshot {
	ctx, span := tracing.Start(ctx, "service", "cart."+string(action.Kind),
		attribute.String("storefront.session_id", c.identity.SessionID),
	)
	defer span.End()

	state, changed := c.store.Apply(ctx, action)
	span.SetAttributes(attribute.Bool("storefront.changed", changed))
	snap := cartSnapshot(state)
	if !changed {
		return snap
	}

	c.logger.InfoContext(ctx, "cart updated",
		slog.String("session_id", c.identity.SessionID),
		slog.String("action", string(action.Kind)),
		slog.Int("item_count", snap.ItemCount),
		slog.Int64("subtotal", snap.Subtotal),
	)

	var err error
	if action.Kind == store.ActionClear {
		err = c.events.PublishCartCleared(ctx, event.CartClearedData{
			SessionID: c.identity.SessionID,
			UserID:    c.identity.UserID,
		})
	} else {
		err = c.events.PublishCartUpdated(ctx, event.CartUpdatedData{
			SessionID: c.identity.SessionID,
			UserID:    c.identity.UserID,
			Items:     snap.Items,
			ItemCount: snap.ItemCount,
			Subtotal:  snap.Subtotal,
		})
	}
	if err != nil {
		c.logger.WarnContext(ctx, "failed to publish cart event",
			slog.String("session_id", c.identity.SessionID),
			slog.String("error", err.Error()),
		)
	}

	return snap
}

func cartSnapshot(state store.State[domain.LineItem]) CartSnapshot {
	return CartSnapshot{
		Items:     state.Items,
		IsOpen:    state.IsOpen,
		ItemCount: store.ItemCount(state),
		Subtotal:  store.Subtotal(state),
	}
}
