package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/persistmap/codec"
)

// Integration tests; they need a reachable server:
//
//	PERSISTMAP_REDIS_ADDR=localhost:6379 go test ./backend/redis
func newTestBackend(t *testing.T) *Backend[string, string] {
	t.Helper()
	addr := os.Getenv("PERSISTMAP_REDIS_ADDR")
	if addr == "" {
		t.Skip("PERSISTMAP_REDIS_ADDR not set")
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	b, err := New(Config[string, string]{
		Client:      client,
		CloseClient: true,
		Hash:        fmt.Sprintf("persistmap_test_%d", time.Now().UnixNano()),
		Keys:        codec.StringKey{},
		Values:      codec.String{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		_ = client.Del(ctx, b.hash).Err()
		_ = b.Close(ctx)
	})
	return b
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config[string, string]{Keys: codec.StringKey{}, Values: codec.String{}}); err != ErrNilClient {
		t.Fatalf("nil client: got %v", err)
	}
	if _, err := New(Config[string, string]{Client: goredis.NewClient(&goredis.Options{})}); err == nil {
		t.Fatal("missing codecs accepted")
	}
}

func TestHashRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	if err := b.Save(ctx, "alpha", "1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := b.Save(ctx, "alpha", "2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := b.Save(ctx, "beta", "3"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	all, err := b.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(all) != 2 || all["alpha"] != "2" || all["beta"] != "3" {
		t.Fatalf("LoadAll = %v", all)
	}

	if n, err := b.Len(ctx); err != nil || n != 2 {
		t.Fatalf("Len = (%d, %v)", n, err)
	}
	if ok, err := b.ContainsKey(ctx, "beta"); err != nil || !ok {
		t.Fatalf("ContainsKey = (%v, %v)", ok, err)
	}

	if err := b.Delete(ctx, "beta"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := b.Delete(ctx, "beta"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
	if ok, _ := b.ContainsKey(ctx, "beta"); ok {
		t.Fatalf("field survived delete")
	}
	if err := b.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
