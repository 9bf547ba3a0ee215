// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/persistmap"
//	asynchook "github.com/unkn0wn-root/persistmap/hooks/async"
//	"github.com/unkn0wn-root/persistmap/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    WriteFailedEvery: 10, // sample: ~every 10th write failure
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	m, _ := persistmap.New(ctx, persistmap.Options[string, User]{
//	    Backend: backend,
//	    Hooks:   hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"time"

	"github.com/unkn0wn-root/persistmap"
)

type Hooks struct {
	inner persistmap.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ persistmap.Hooks = (*Hooks)(nil)

func New(inner persistmap.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) LoadDone(n int, d time.Duration) { h.try(func() { h.inner.LoadDone(n, d) }) }
func (h *Hooks) WriteFailed(op string, err error) {
	h.try(func() { h.inner.WriteFailed(op, err) })
}
func (h *Hooks) FlushFailed(err error) { h.try(func() { h.inner.FlushFailed(err) }) }
