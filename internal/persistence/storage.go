package persistence

import (
	"context"
	"strings"
)

// Slot names, one per store instance.
const (
	SlotCart     = "cart"
	SlotWishlist = "wishlist"
)

// Storage is a string-keyed durable key-value store holding serialized blobs.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key, value string) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// SlotKey builds the durable key of a store slot, e.g. "storefront:abc123:cart".
func SlotKey(namespace, sessionID, slot string) string {
	return strings.Join([]string{namespace, sessionID, slot}, ":")
}
