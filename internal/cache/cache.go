package cache

import (
	"context"
	"time"
)

// Store is the read-cache the synchronizer keeps request collections in.
// Retention is physical: entries may outlive their logical staleness
// window so reads can fall back to stale data when the backend is down.
// Delete marks an entry dirty immediately; the next read refetches
// regardless of how fresh the entry was.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, retention time.Duration)
	Delete(ctx context.Context, keys ...string)
}
