package store

// ActionKind names a state transition understood by the reducer.
type ActionKind string

// Action kinds. Stores ignore kinds their strategy does not support.
const (
	ActionAddItem        ActionKind = "ADD_ITEM"
	ActionToggleItem     ActionKind = "TOGGLE_ITEM"
	ActionRemoveItem     ActionKind = "REMOVE_ITEM"
	ActionUpdateQuantity ActionKind = "UPDATE_QUANTITY"
	ActionClear          ActionKind = "CLEAR"
	ActionLoad           ActionKind = "LOAD"
	ActionTogglePanel    ActionKind = "TOGGLE_PANEL"
)

// Action is a request to transition a store's state. Only the fields relevant
// to Kind are read.
type Action[T Item] struct {
	Kind     ActionKind
	Item     T
	ID       string
	Quantity int
	Items    []T
}

// AddItem merges item into the collection according to the store's strategy.
func AddItem[T Item](item T) Action[T] {
	return Action[T]{Kind: ActionAddItem, Item: item}
}

// ToggleItem removes item if present and appends it otherwise.
func ToggleItem[T Item](item T) Action[T] {
	return Action[T]{Kind: ActionToggleItem, Item: item}
}

// RemoveItem drops the entry with the given id.
func RemoveItem[T Item](id string) Action[T] {
	return Action[T]{Kind: ActionRemoveItem, ID: id}
}

// UpdateQuantity sets the quantity of the entry with the given id.
func UpdateQuantity[T Item](id string, quantity int) Action[T] {
	return Action[T]{Kind: ActionUpdateQuantity, ID: id, Quantity: quantity}
}

// Clear empties the collection.
func Clear[T Item]() Action[T] {
	return Action[T]{Kind: ActionClear}
}

// Load replaces the collection wholesale.
func Load[T Item](items []T) Action[T] {
	return Action[T]{Kind: ActionLoad, Items: items}
}

// TogglePanel flips the panel open flag.
func TogglePanel[T Item]() Action[T] {
	return Action[T]{Kind: ActionTogglePanel}
}
