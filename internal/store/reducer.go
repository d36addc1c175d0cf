package store

import "slices"

// Item is anything a store can hold: it must expose a stable identity.
type Item interface {
	Key() string
}

// State is the content of a store. Items are unique by Key and kept in
// insertion order. Version is bumped on every change to Items and is never
// persisted.
type State[T Item] struct {
	Items   []T  `json:"items"`
	IsOpen  bool `json:"isOpen"`
	Version int  `json:"-"`
}

// Reduce applies action to state and returns the next state. It is total:
// unknown or unsupported actions return state unchanged. The input slice is
// never modified; every change builds a new one.
func Reduce[T Item](strategy Strategy[T], state State[T], action Action[T]) State[T] {
	if !strategy.Supports(action.Kind) {
		return state
	}

	switch action.Kind {
	case ActionAddItem:
		idx := indexOf(state.Items, action.Item.Key())
		if idx < 0 {
			return withItems(state, appendItem(state.Items, strategy.Admit(action.Item)))
		}
		merged, changed := strategy.Merge(state.Items[idx])
		if !changed {
			return state
		}
		return withItems(state, replaceAt(state.Items, idx, merged))

	case ActionToggleItem:
		idx := indexOf(state.Items, action.Item.Key())
		if idx < 0 {
			return withItems(state, appendItem(state.Items, strategy.Admit(action.Item)))
		}
		return withItems(state, removeAt(state.Items, idx))

	case ActionRemoveItem:
		idx := indexOf(state.Items, action.ID)
		if idx < 0 {
			return state
		}
		return withItems(state, removeAt(state.Items, idx))

	case ActionUpdateQuantity:
		idx := indexOf(state.Items, action.ID)
		if idx < 0 {
			return state
		}
		quantity := max(0, action.Quantity)
		if quantity == 0 {
			return withItems(state, removeAt(state.Items, idx))
		}
		return withItems(state, replaceAt(state.Items, idx, strategy.WithQuantity(state.Items[idx], quantity)))

	case ActionClear:
		return withItems(state, []T{})

	case ActionLoad:
		items := slices.Clone(action.Items)
		if items == nil {
			items = []T{}
		}
		return withItems(state, items)

	case ActionTogglePanel:
		state.IsOpen = !state.IsOpen
		return state
	}

	return state
}

func withItems[T Item](state State[T], items []T) State[T] {
	state.Items = items
	state.Version++
	return state
}

func indexOf[T Item](items []T, id string) int {
	for i := range items {
		if items[i].Key() == id {
			return i
		}
	}
	return -1
}

func appendItem[T Item](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

func replaceAt[T Item](items []T, idx int, item T) []T {
	out := slices.Clone(items)
	out[idx] = item
	return out
}

func removeAt[T Item](items []T, idx int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}
