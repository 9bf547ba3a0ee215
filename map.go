package persistmap

import (
	"context"
	"fmt"
	"time"

	be "github.com/unkn0wn-root/persistmap/backend"
	"github.com/unkn0wn-root/persistmap/internal/keymutex"
	"github.com/unkn0wn-root/persistmap/internal/shardmap"
)

const defaultShards = 64

type pmap[K comparable, V any] struct {
	backend be.Backend[K, V]
	cache   *shardmap.Map[K, V]
	keys    *keymutex.Mutex[K]
	log     Logger
	hooks   Hooks
}

func newMap[K comparable, V any](ctx context.Context, opts Options[K, V]) (*pmap[K, V], error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("persistmap: backend is required")
	}

	m := &pmap[K, V]{
		backend: opts.Backend,
		cache:   shardmap.New[K, V](coalesce(opts.Shards, defaultShards)),
		keys:    keymutex.New[K](),
	}

	// defaults
	m.log = coalesce[Logger](opts.Logger, NopLogger{})
	m.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	start := time.Now()
	all, err := m.backend.LoadAll(ctx)
	if err != nil {
		return nil, classify("load_all", err)
	}
	for k, v := range all {
		m.cache.Swap(k, v)
	}
	elapsed := time.Since(start)
	m.hooks.LoadDone(len(all), elapsed)
	m.log.Debug("loaded backend snapshot", Fields{"entries": len(all), "elapsed": elapsed})
	return m, nil
}

func (m *pmap[K, V]) ready() bool { return m != nil && m.backend != nil }

func (m *pmap[K, V]) Insert(ctx context.Context, key K, value V) (V, bool, error) {
	var zero V
	if !m.ready() {
		return zero, false, notReady("insert")
	}
	if err := m.keys.Lock(ctx, key); err != nil {
		// never reached the backend; report as a failure, cache untouched
		return zero, false, &Error{Kind: KindBackend, Op: "insert", Err: err}
	}
	defer m.keys.Unlock(key)

	if err := m.backend.Save(ctx, key, value); err != nil {
		err = classify("save", err)
		m.hooks.WriteFailed("save", err)
		m.log.Warn("save failed; cache untouched", Fields{"err": err})
		return zero, false, err
	}
	old, replaced := m.cache.Swap(key, value)
	return old, replaced, nil
}

func (m *pmap[K, V]) Get(key K) (V, bool) {
	var zero V
	if !m.ready() {
		return zero, false
	}
	return m.cache.Get(key)
}

func (m *pmap[K, V]) Remove(ctx context.Context, key K) (V, bool, error) {
	var zero V
	if !m.ready() {
		return zero, false, notReady("remove")
	}
	if err := m.keys.Lock(ctx, key); err != nil {
		return zero, false, &Error{Kind: KindBackend, Op: "remove", Err: err}
	}
	defer m.keys.Unlock(key)

	// the backend treats an absent key as a no-op success, so the delete
	// is issued unconditionally; the cache stays authoritative for the
	// returned previous value.
	if err := m.backend.Delete(ctx, key); err != nil {
		err = classify("delete", err)
		m.hooks.WriteFailed("delete", err)
		m.log.Warn("delete failed; cache untouched", Fields{"err": err})
		return zero, false, err
	}
	old, removed := m.cache.Delete(key)
	return old, removed, nil
}

func (m *pmap[K, V]) ContainsKey(key K) bool {
	if !m.ready() {
		return false
	}
	return m.cache.Contains(key)
}

func (m *pmap[K, V]) Len() int {
	if !m.ready() {
		return 0
	}
	return m.cache.Len()
}

func (m *pmap[K, V]) IsEmpty() bool { return m.Len() == 0 }

func (m *pmap[K, V]) Flush(ctx context.Context) error {
	if !m.ready() {
		return notReady("flush")
	}
	if err := m.backend.Flush(ctx); err != nil {
		err = classify("flush", err)
		m.hooks.FlushFailed(err)
		return err
	}
	return nil
}

func (m *pmap[K, V]) Close(ctx context.Context) error {
	if !m.ready() {
		return nil
	}
	ferr := m.backend.Flush(ctx)
	if c, ok := m.backend.(be.Closer); ok {
		if err := c.Close(ctx); err != nil {
			return classify("close", err)
		}
	}
	if ferr != nil {
		return classify("flush", ferr)
	}
	return nil
}

func (m *pmap[K, V]) Backend() be.Backend[K, V] { return m.backend }
