// Package keymutex serializes operations per key. Locks for different
// keys are fully independent; entries are refcounted and removed as soon
// as the last interested goroutine is done, so the set stays bounded by
// the number of in-flight operations.
package keymutex

import (
	"context"
	"sync"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// Mutex is a set of per-key mutexes. The zero value is not ready; use New.
type Mutex[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry
}

func New[K comparable]() *Mutex[K] {
	return &Mutex[K]{entries: make(map[K]*entry)}
}

// Lock acquires the mutex for key, waiting until it is free or ctx is
// done. On a ctx error the lock is NOT held.
func (m *Mutex[K]) Lock(ctx context.Context, key K) error {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		m.release(key, e)
		return ctx.Err()
	}
}

// Unlock releases the mutex for key. It must only follow a successful
// Lock of the same key.
func (m *Mutex[K]) Unlock(key K) {
	m.mu.Lock()
	e, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		panic("keymutex: unlock of unheld key")
	}
	<-e.sem
	m.release(key, e)
}

func (m *Mutex[K]) release(key K, e *entry) {
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
	m.mu.Unlock()
}
