package store

import "github.com/utafrali/storefront/internal/domain"

// Strategy decides how a store merges repeated adds and which actions it
// accepts. It is the only difference between the cart and the wishlist.
type Strategy[T Item] interface {
	// Name identifies the store in logs and metrics.
	Name() string

	// Supports reports whether the reducer should handle kind for this store.
	Supports(kind ActionKind) bool

	// Admit prepares an item that is not yet in the collection.
	Admit(incoming T) T

	// Merge folds a repeated add into the stored item. It returns false when
	// the add leaves the stored item unchanged.
	Merge(stored T) (T, bool)

	// WithQuantity returns item with its quantity set to a positive value,
	// clamped to the store's maximum.
	WithQuantity(item T, quantity int) T
}

// CartStrategy counts repeated adds as quantity increments.
type CartStrategy struct{}

func (CartStrategy) Name() string { return "cart" }

func (CartStrategy) Supports(kind ActionKind) bool {
	return kind != ActionToggleItem
}

func (CartStrategy) Admit(incoming domain.LineItem) domain.LineItem {
	incoming.Quantity = 1
	return incoming
}

// Merge keeps the stored metadata and bumps the quantity by one. A line at
// domain.MaxQuantity is left unchanged.
func (CartStrategy) Merge(stored domain.LineItem) (domain.LineItem, bool) {
	if stored.Quantity >= domain.MaxQuantity {
		return stored, false
	}
	stored.Quantity++
	return stored, true
}

func (CartStrategy) WithQuantity(item domain.LineItem, quantity int) domain.LineItem {
	item.Quantity = min(quantity, domain.MaxQuantity)
	return item
}

// WishlistStrategy treats items as a presence-only set with first-write-wins
// metadata.
type WishlistStrategy struct{}

func (WishlistStrategy) Name() string { return "wishlist" }

func (WishlistStrategy) Supports(kind ActionKind) bool {
	return kind != ActionUpdateQuantity
}

func (WishlistStrategy) Admit(incoming domain.WishlistItem) domain.WishlistItem {
	return incoming
}

func (WishlistStrategy) Merge(stored domain.WishlistItem) (domain.WishlistItem, bool) {
	return stored, false
}

func (WishlistStrategy) WithQuantity(item domain.WishlistItem, _ int) domain.WishlistItem {
	return item
}
