// Package backend defines the durable-store contract driven by persistmap.
//
// Implementations MUST uphold the following, because the coordinator's
// cache guarantees are built on them:
//   - LoadAll returns a consistent snapshot of everything stored. It is
//     called exactly once, when the owning map is constructed.
//   - Save and Delete are individually atomic from the caller's point of
//     view and report success only once the data is durable. Concurrent
//     calls on distinct keys must be safe; concurrent calls on the same
//     key must not corrupt storage (last completed call wins).
//   - Delete of an absent key is a no-op success, not an error.
//   - Flush is idempotent and safe to call with no pending writes.
//
// Failures are reported with the error kinds defined in the root package
// (Io, Encode, Decode, Backend). Any synchronization a store needs
// internally, such as serializing writes to a single file, is its own
// responsibility and invisible to the coordinator.
package backend

import "context"

// Backend is the minimal capability a durable store must provide.
type Backend[K comparable, V any] interface {
	// LoadAll returns every currently stored pair as one snapshot.
	LoadAll(ctx context.Context) (map[K]V, error)

	// Save durably upserts one pair.
	Save(ctx context.Context, key K, value V) error

	// Delete durably removes one pair if present.
	Delete(ctx context.Context, key K) error

	// Flush forces internally buffered writes to durable state.
	// Implementations without write buffering return nil.
	Flush(ctx context.Context) error
}

// Closer is implemented by backends holding releasable resources
// (connections, file handles). The owning map calls it on Close.
type Closer interface {
	Close(ctx context.Context) error
}

// Counter is an optional fast-path for Count. Backends without an
// efficient answer simply omit it.
type Counter interface {
	Len(ctx context.Context) (int, error)
}

// Checker is an optional fast-path for Contains.
type Checker[K comparable] interface {
	ContainsKey(ctx context.Context, key K) (bool, error)
}

// Count reports the number of stored pairs, preferring the backend's
// fast path and falling back to a full load. The coordinator answers Len
// from its cache; this exists for callers explicitly bypassing it.
func Count[K comparable, V any](ctx context.Context, b Backend[K, V]) (int, error) {
	if c, ok := b.(Counter); ok {
		return c.Len(ctx)
	}
	all, err := b.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// Contains reports whether key is stored, preferring the backend's fast
// path and falling back to a full load.
func Contains[K comparable, V any](ctx context.Context, b Backend[K, V], key K) (bool, error) {
	if c, ok := b.(Checker[K]); ok {
		return c.ContainsKey(ctx, key)
	}
	all, err := b.LoadAll(ctx)
	if err != nil {
		return false, err
	}
	_, ok := all[key]
	return ok, nil
}
