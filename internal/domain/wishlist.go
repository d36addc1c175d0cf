package domain

// WishlistItem represents a product saved in the wishlist. Presence is binary.
type WishlistItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	Category string `json:"category,omitempty"`
	Fabric   string `json:"fabric,omitempty"`
	Origin   string `json:"origin,omitempty"`
	Work     string `json:"work,omitempty"`
	Occasion string `json:"occasion,omitempty"`
}

// NewWishlistItem builds a wishlist entry from a normalized product summary.
func NewWishlistItem(s ProductSummary) WishlistItem {
	return WishlistItem{
		ID:       s.ID,
		Name:     s.Name,
		Price:    s.Price,
		Image:    s.Image,
		Category: s.Category,
		Fabric:   s.Fabric,
		Origin:   s.Origin,
		Work:     s.Work,
		Occasion: s.Occasion,
	}
}

// Key returns the product identifier the wishlist deduplicates on.
func (i WishlistItem) Key() string { return i.ID }

// Valid reports whether the entry carries an identity.
func (i WishlistItem) Valid() bool { return i.ID != "" }
