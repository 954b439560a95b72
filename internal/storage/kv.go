package storage

import "context"

// KV is the durable key-value store the engine persists local state
// through. Values are opaque string blobs; the cart keeps schema-versioned
// JSON under a single fixed key.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
