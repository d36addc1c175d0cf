package store

import "github.com/utafrali/storefront/internal/domain"

// Quantified is an item that carries a quantity and a unit price.
type Quantified interface {
	Item
	Units() int
	UnitPrice() int64
}

// ItemCount returns the sum of quantities across the state.
func ItemCount[T Quantified](state State[T]) int {
	var count int
	for _, item := range state.Items {
		count += item.Units()
	}
	return count
}

// Subtotal returns the sum of unit price times quantity across the state,
// saturating at math.MaxInt64.
func Subtotal[T Quantified](state State[T]) int64 {
	var total int64
	for _, item := range state.Items {
		total = domain.AddPrice(total, domain.MulPrice(item.UnitPrice(), item.Units()))
	}
	return total
}

// Count returns the number of distinct entries in the state.
func Count[T Item](state State[T]) int {
	return len(state.Items)
}
