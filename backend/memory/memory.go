// Package memory provides a backend that persists for the lifetime of
// the process only. Useful for tests and for callers that want the map
// API without durable storage; a single instance can back several maps
// in sequence, which is what makes restart-style tests possible
// in-process.
package memory

import (
	"context"
	"maps"
	"sync"

	be "github.com/unkn0wn-root/persistmap/backend"
)

// Backend stores pairs in an ordinary map guarded by a mutex. No codecs
// are involved: values never leave process memory.
type Backend[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]V
}

var (
	_ be.Backend[string, string] = (*Backend[string, string])(nil)
	_ be.Counter                 = (*Backend[string, string])(nil)
	_ be.Checker[string]         = (*Backend[string, string])(nil)
)

func New[K comparable, V any]() *Backend[K, V] {
	return &Backend[K, V]{items: make(map[K]V)}
}

// LoadAll returns a copy, so later mutations of the backend do not leak
// into the snapshot and vice versa.
func (b *Backend[K, V]) LoadAll(context.Context) (map[K]V, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return maps.Clone(b.items), nil
}

func (b *Backend[K, V]) Save(_ context.Context, key K, value V) error {
	b.mu.Lock()
	b.items[key] = value
	b.mu.Unlock()
	return nil
}

func (b *Backend[K, V]) Delete(_ context.Context, key K) error {
	b.mu.Lock()
	delete(b.items, key)
	b.mu.Unlock()
	return nil
}

func (b *Backend[K, V]) Flush(context.Context) error { return nil }

// Len implements the optional fast-path counter.
func (b *Backend[K, V]) Len(context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items), nil
}

// ContainsKey implements the optional fast-path existence check.
func (b *Backend[K, V]) ContainsKey(_ context.Context, key K) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.items[key]
	return ok, nil
}
