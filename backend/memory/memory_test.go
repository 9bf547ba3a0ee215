package memory

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	be "github.com/unkn0wn-root/persistmap/backend"
)

func TestSnapshotIsIndependent(t *testing.T) {
	ctx := context.Background()
	b := New[string, string]()

	if err := b.Save(ctx, "a", "1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	snap, err := b.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	// mutating the snapshot must not leak into the backend, or vice versa
	snap["a"] = "tampered"
	snap["ghost"] = "x"
	if err := b.Save(ctx, "b", "2"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, err := b.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	want := map[string]string{"a": "1", "b": "2"}
	if diff := cmp.Diff(want, again); diff != "" {
		t.Fatalf("stored pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	b := New[string, int]()
	if err := b.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
	if err := b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestFastPathQueries(t *testing.T) {
	ctx := context.Background()
	b := New[string, int]()
	_ = b.Save(ctx, "a", 1)
	_ = b.Save(ctx, "b", 2)

	// direct fast paths
	if n, err := b.Len(ctx); err != nil || n != 2 {
		t.Fatalf("Len = (%d, %v)", n, err)
	}
	if ok, err := b.ContainsKey(ctx, "a"); err != nil || !ok {
		t.Fatalf("ContainsKey(a) = (%v, %v)", ok, err)
	}

	// helpers must route to them
	if n, err := be.Count[string, int](ctx, b); err != nil || n != 2 {
		t.Fatalf("backend.Count = (%d, %v)", n, err)
	}
	if ok, err := be.Contains[string, int](ctx, b, "c"); err != nil || ok {
		t.Fatalf("backend.Contains(c) = (%v, %v)", ok, err)
	}
}
