// Package store provides the durable key-value storage used to persist
// per-visitor snapshots (cart, wishlist). A snapshot is an opaque JSON
// blob written in full on every mutation; there are no partial updates.
package store

import "context"

type Store interface {
	// Load returns the blob stored under key. The boolean reports whether
	// the key existed; a missing key is not an error.
	Load(ctx context.Context, key string) ([]byte, bool, error)

	// Save replaces the blob stored under key.
	Save(ctx context.Context, key string, val []byte) error

	// Delete removes the key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}
