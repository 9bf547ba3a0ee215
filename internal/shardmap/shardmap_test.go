package shardmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestSwapDeleteGet(t *testing.T) {
	m := New[string, int](8)

	if _, ok := m.Get("a"); ok {
		t.Fatalf("empty map should miss")
	}
	if old, ok := m.Swap("a", 1); ok || old != 0 {
		t.Fatalf("first Swap returned (%d, %v)", old, ok)
	}
	if old, ok := m.Swap("a", 2); !ok || old != 1 {
		t.Fatalf("second Swap returned (%d, %v)", old, ok)
	}
	if v, ok := m.Get("a"); !ok || v != 2 {
		t.Fatalf("Get = (%d, %v)", v, ok)
	}
	if !m.Contains("a") || m.Contains("b") {
		t.Fatalf("Contains wrong")
	}
	if old, ok := m.Delete("a"); !ok || old != 2 {
		t.Fatalf("Delete returned (%d, %v)", old, ok)
	}
	if old, ok := m.Delete("a"); ok || old != 0 {
		t.Fatalf("second Delete returned (%d, %v)", old, ok)
	}
	if m.Len() != 0 {
		t.Fatalf("Len = %d", m.Len())
	}
}

func TestLenAcrossShards(t *testing.T) {
	m := New[int, int](16)
	const n = 1000
	for i := 0; i < n; i++ {
		m.Swap(i, i)
	}
	if m.Len() != n {
		t.Fatalf("Len = %d, want %d", m.Len(), n)
	}

	seen := make(map[int]bool, n)
	m.Range(func(k, v int) bool {
		if k != v {
			t.Fatalf("Range pair (%d, %d)", k, v)
		}
		seen[k] = true
		return true
	})
	if len(seen) != n {
		t.Fatalf("Range visited %d entries", len(seen))
	}
}

func TestRangeEarlyStop(t *testing.T) {
	m := New[int, int](4)
	for i := 0; i < 100; i++ {
		m.Swap(i, i)
	}
	visited := 0
	m.Range(func(int, int) bool {
		visited++
		return visited < 5
	})
	if visited != 5 {
		t.Fatalf("Range visited %d entries after stop", visited)
	}
}

func TestShardCountRounding(t *testing.T) {
	for _, tc := range []struct{ in, want int }{
		{0, 1}, {1, 1}, {3, 4}, {64, 64}, {65, 128},
	} {
		m := New[int, int](tc.in)
		if len(m.shards) != tc.want {
			t.Fatalf("New(%d) => %d shards, want %d", tc.in, len(m.shards), tc.want)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[string, int](32)
	var wg sync.WaitGroup
	const workers = 8
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := fmt.Sprintf("k-%d-%d", w, i)
				m.Swap(k, i)
				if v, ok := m.Get(k); !ok || v != i {
					t.Errorf("Get(%q) = (%d, %v)", k, v, ok)
				}
				if i%3 == 0 {
					m.Delete(k)
				}
			}
		}(w)
	}
	wg.Wait()
}
