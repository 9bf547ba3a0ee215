package persistmap

import (
	"context"

	be "github.com/unkn0wn-root/persistmap/backend"
)

// Map is the public, backend-agnostic persistent map API.
// All methods are safe for concurrent use by multiple goroutines.
type Map[K comparable, V any] interface {
	// Insert durably saves (key, value) and then publishes it to the
	// in-memory cache. It returns the previously cached value, if any.
	// On backend failure the cache is left untouched and the error
	// carries a Kind from the closed taxonomy.
	Insert(ctx context.Context, key K, value V) (old V, replaced bool, err error)

	// Get reads from the cache only. It never blocks on backend I/O.
	Get(key K) (V, bool)

	// Remove durably deletes key and then drops it from the cache,
	// returning the previously cached value, if any. Removing an absent
	// key is a no-op success.
	Remove(ctx context.Context, key K) (old V, removed bool, err error)

	// ContainsKey, Len and IsEmpty are pure cache reads.
	ContainsKey(key K) bool
	Len() int
	IsEmpty() bool

	// Flush forces any writes buffered inside the backend to durable
	// state. Idempotent; a no-op for unbuffered backends.
	Flush(ctx context.Context) error

	// Close flushes and releases the backend when the map owns one that
	// holds resources. In-flight operations complete or fail on their own.
	Close(ctx context.Context) error

	// Backend exposes the underlying store for callers that explicitly
	// want to bypass the cache. Going around the map's write path breaks
	// its cache guarantees; use with care.
	Backend() be.Backend[K, V]
}

// Options tune a Map. Only Backend is required.
type Options[K comparable, V any] struct {
	// Required
	Backend be.Backend[K, V]

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
	Shards int    // cache shard count, rounded up to a power of two; 0 => 64
}

// New constructs a Map over the given backend. It loads the backend's
// full snapshot before returning; if the load fails, no Map is returned.
func New[K comparable, V any](ctx context.Context, opts Options[K, V]) (Map[K, V], error) {
	m, err := newMap[K, V](ctx, opts)
	if err != nil {
		// return an untyped nil so callers' m != nil checks behave as documented
		return nil, err
	}
	return m, nil
}
