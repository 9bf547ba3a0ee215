// Package shardmap provides the sharded concurrent map backing the
// in-memory cache. Keys hash onto independent shards, each guarded by
// its own RWMutex, so operations on distinct keys do not serialize
// against each other.
package shardmap

import (
	"hash/maphash"
	"sync"
)

type shard[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// Map is a sharded map from K to V. The zero value is not ready; use New.
type Map[K comparable, V any] struct {
	seed   maphash.Seed
	shards []shard[K, V]
	mask   uint64
}

// New returns a map with n shards, rounded up to a power of two.
// n <= 1 yields a single shard.
func New[K comparable, V any](n int) *Map[K, V] {
	size := 1
	for size < n {
		size <<= 1
	}
	m := &Map[K, V]{
		seed:   maphash.MakeSeed(),
		shards: make([]shard[K, V], size),
		mask:   uint64(size - 1),
	}
	for i := range m.shards {
		m.shards[i].items = make(map[K]V)
	}
	return m
}

func (m *Map[K, V]) shard(key K) *shard[K, V] {
	return &m.shards[maphash.Comparable(m.seed, key)&m.mask]
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.shard(key)
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	return v, ok
}

func (m *Map[K, V]) Contains(key K) bool {
	s := m.shard(key)
	s.mu.RLock()
	_, ok := s.items[key]
	s.mu.RUnlock()
	return ok
}

// Swap stores value under key and returns the previously stored value.
// The new value fully replaces the old.
func (m *Map[K, V]) Swap(key K, value V) (V, bool) {
	s := m.shard(key)
	s.mu.Lock()
	old, ok := s.items[key]
	s.items[key] = value
	s.mu.Unlock()
	return old, ok
}

// Delete removes key and returns the previously stored value.
func (m *Map[K, V]) Delete(key K) (V, bool) {
	s := m.shard(key)
	s.mu.Lock()
	old, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	s.mu.Unlock()
	return old, ok
}

// Len counts entries shard by shard. Concurrent mutations may land
// between shard reads; the result is exact once writers are quiet.
func (m *Map[K, V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// Range calls fn for every entry until fn returns false. Each shard is
// locked only while its own entries are visited.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}
