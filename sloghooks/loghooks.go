package sloghooks

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/persistmap"
)

type Options struct {
	// Sampling to avoid floods when a backend is down; 0/1 = log all.
	WriteFailedEvery uint64
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	writeFailedCtr atomic.Uint64
}

var _ persistmap.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) LoadDone(entries int, elapsed time.Duration) {
	if h.l == nil {
		return
	}
	h.l.Info("persistmap.load_done",
		"entries", entries,
		"elapsed", elapsed)
}

func (h *Hooks) WriteFailed(op string, err error) {
	if h.l == nil || !sample(h.opts.WriteFailedEvery, &h.writeFailedCtr) {
		return
	}
	h.l.Warn("persistmap.write_failed",
		"op", op,
		"err", err)
}

func (h *Hooks) FlushFailed(err error) {
	if h.l == nil {
		return
	}
	h.l.Error("persistmap.flush_failed",
		"err", err)
}
