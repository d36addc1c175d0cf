package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Record is an item the bridge can persist. Valid reports whether a decoded
// record satisfies the invariants of its store.
type Record interface {
	Key() string
	Valid() bool
}

var (
	errNotArray      = errors.New("stored value is not an array")
	errInvalidRecord = errors.New("stored record violates store invariants")
	errDuplicateKey  = errors.New("stored records contain a duplicate id")
)

// Bridge synchronizes one store's items with a single storage slot. It never
// returns errors: corrupt or unreadable slots load as empty and failed writes
// are logged, leaving the in-memory state authoritative.
type Bridge[T Record] struct {
	storage Storage
	key     string
	slot    string
	logger  *slog.Logger
}

// NewBridge creates a bridge for the slot stored under key.
func NewBridge[T Record](storage Storage, key, slot string, logger *slog.Logger) *Bridge[T] {
	return &Bridge[T]{
		storage: storage,
		key:     key,
		slot:    slot,
		logger:  logger,
	}
}

// Key returns the durable key of the slot.
func (b *Bridge[T]) Key() string {
	return b.key
}

// Load reads and decodes the slot. It returns an empty, non-nil slice when the
// slot is missing, unreadable, or corrupt.
func (b *Bridge[T]) Load(ctx context.Context) []T {
	raw, ok, err := b.storage.Get(ctx, b.key)
	if err != nil {
		observe(b.slot, opLoad, resultError)
		b.logger.ErrorContext(ctx, "failed to read storage slot",
			slog.String("key", b.key),
			slog.String("error", err.Error()),
		)
		return []T{}
	}
	if !ok {
		observe(b.slot, opLoad, resultMiss)
		return []T{}
	}

	items, err := decode[T](raw)
	if err != nil {
		observe(b.slot, opLoad, resultCorrupt)
		b.logger.WarnContext(ctx, "discarding corrupt storage slot",
			slog.String("key", b.key),
			slog.String("error", err.Error()),
		)
		return []T{}
	}

	observe(b.slot, opLoad, resultOK)
	return items
}

// Save serializes items and overwrites the slot.
func (b *Bridge[T]) Save(ctx context.Context, items []T) {
	if items == nil {
		items = []T{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		observe(b.slot, opSave, resultError)
		b.logger.ErrorContext(ctx, "failed to encode storage slot",
			slog.String("key", b.key),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := b.storage.Set(ctx, b.key, string(data)); err != nil {
		observe(b.slot, opSave, resultError)
		b.logger.ErrorContext(ctx, "failed to write storage slot",
			slog.String("key", b.key),
			slog.Int("items", len(items)),
			slog.String("error", err.Error()),
		)
		return
	}

	observe(b.slot, opSave, resultOK)
}

// decode parses a stored blob and checks every record against its store's
// invariants. A null blob decodes as empty.
func decode[T Record](raw string) ([]T, error) {
	var msg json.RawMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return nil, fmt.Errorf("unmarshal slot: %w", err)
	}
	if string(msg) == "null" {
		return []T{}, nil
	}
	if len(msg) == 0 || msg[0] != '[' {
		return nil, errNotArray
	}

	var items []T
	if err := json.Unmarshal(msg, &items); err != nil {
		return nil, fmt.Errorf("unmarshal slot items: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if !item.Valid() {
			return nil, errInvalidRecord
		}
		if _, dup := seen[item.Key()]; dup {
			return nil, errDuplicateKey
		}
		seen[item.Key()] = struct{}{}
	}

	if items == nil {
		items = []T{}
	}
	return items, nil
}
