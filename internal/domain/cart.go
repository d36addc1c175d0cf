package domain

// MaxQuantity is the largest quantity a cart line can hold.
const MaxQuantity = 999

// LineItem represents a single product entry in the cart.
type LineItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	Category string `json:"category,omitempty"`
	Fabric   string `json:"fabric,omitempty"`
	Origin   string `json:"origin,omitempty"`
	Quantity int    `json:"quantity"`
}

// NewLineItem builds a cart line from a normalized product summary.
// The quantity is left at zero; the cart strategy sets it on insertion.
func NewLineItem(s ProductSummary) LineItem {
	return LineItem{
		ID:       s.ID,
		Name:     s.Name,
		Price:    s.Price,
		Image:    s.Image,
		Category: s.Category,
		Fabric:   s.Fabric,
		Origin:   s.Origin,
	}
}

// Key returns the product identifier the cart deduplicates on.
func (i LineItem) Key() string { return i.ID }

// Valid reports whether the line satisfies the stored-cart invariants.
func (i LineItem) Valid() bool {
	return i.ID != "" && i.Quantity >= 1 && i.Quantity <= MaxQuantity
}

// Units returns the quantity of the line.
func (i LineItem) Units() int { return i.Quantity }

// UnitPrice returns the numeric value of the price string.
func (i LineItem) UnitPrice() int64 { return ParsePrice(i.Price) }

// LineTotal returns unit price times quantity, saturating at math.MaxInt64.
func (i LineItem) LineTotal() int64 {
	return MulPrice(i.UnitPrice(), i.Quantity)
}
