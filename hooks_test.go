package persistmap

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingHooks struct {
	mu          sync.Mutex
	loadEntries int
	writeOps    []string
	flushFails  int
}

func (h *recordingHooks) LoadDone(entries int, _ time.Duration) {
	h.mu.Lock()
	h.loadEntries = entries
	h.mu.Unlock()
}

func (h *recordingHooks) WriteFailed(op string, _ error) {
	h.mu.Lock()
	h.writeOps = append(h.writeOps, op)
	h.mu.Unlock()
}

func (h *recordingHooks) FlushFailed(error) {
	h.mu.Lock()
	h.flushFails++
	h.mu.Unlock()
}

func TestHooksObserveEvents(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	b.m["a"] = "1"
	b.m["b"] = "2"

	h := &recordingHooks{}
	m, err := New[string, string](ctx, Options[string, string]{Backend: b, Hooks: h})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if h.loadEntries != 2 {
		t.Fatalf("LoadDone entries = %d, want 2", h.loadEntries)
	}

	b.setFailSave(errors.New("down"))
	if _, _, err := m.Insert(ctx, "k", "v"); err == nil {
		t.Fatalf("Insert should fail")
	}
	b.setFailSave(nil)
	b.setFailDelete(errors.New("down"))
	if _, _, err := m.Remove(ctx, "a"); err == nil {
		t.Fatalf("Remove should fail")
	}

	if len(h.writeOps) != 2 || h.writeOps[0] != "save" || h.writeOps[1] != "delete" {
		t.Fatalf("WriteFailed ops = %v", h.writeOps)
	}
	if h.flushFails != 0 {
		t.Fatalf("unexpected FlushFailed")
	}
}
