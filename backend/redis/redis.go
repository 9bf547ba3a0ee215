// Package redis provides a backend storing all pairs in a single Redis
// hash. LoadAll is HGETALL over that hash; Save and Delete are HSET and
// HDEL on one field, each atomic on the server. Redis acknowledges a
// write only after applying it, so Flush is a no-op.
//
// Note this is per-process durability only in the sense the server
// provides it (AOF/RDB); two processes writing through the same hash
// still violate the single-coordinator assumption.
package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/persistmap"
	be "github.com/unkn0wn-root/persistmap/backend"
	"github.com/unkn0wn-root/persistmap/codec"
)

var ErrNilClient = errors.New("redis backend: nil client")

const defaultHash = "persistmap"

// Config for New. Client and both codecs are required.
type Config[K comparable, V any] struct {
	Client goredis.UniversalClient
	// CloseClient should be true only if this backend exclusively owns
	// the client.
	CloseClient bool
	// Hash is the redis key holding all pairs; defaults to "persistmap".
	Hash string

	Keys   codec.KeyCodec[K]
	Values codec.Codec[V]
}

type Backend[K comparable, V any] struct {
	rdb         goredis.UniversalClient
	closeClient bool
	hash        string
	keys        codec.KeyCodec[K]
	values      codec.Codec[V]
}

var (
	_ be.Backend[string, string] = (*Backend[string, string])(nil)
	_ be.Closer                  = (*Backend[string, string])(nil)
	_ be.Counter                 = (*Backend[string, string])(nil)
	_ be.Checker[string]         = (*Backend[string, string])(nil)
)

func New[K comparable, V any](cfg Config[K, V]) (*Backend[K, V], error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Keys == nil || cfg.Values == nil {
		return nil, errors.New("redis backend: key and value codecs are required")
	}
	h := cfg.Hash
	if h == "" {
		h = defaultHash
	}
	return &Backend[K, V]{
		rdb:         cfg.Client,
		closeClient: cfg.CloseClient,
		hash:        h,
		keys:        cfg.Keys,
		values:      cfg.Values,
	}, nil
}

func (b *Backend[K, V]) LoadAll(ctx context.Context) (map[K]V, error) {
	fields, err := b.rdb.HGetAll(ctx, b.hash).Result()
	if err != nil {
		return nil, backendErr("load_all", err)
	}
	out := make(map[K]V, len(fields))
	for ks, vs := range fields {
		key, err := b.keys.DecodeKey(ks)
		if err != nil {
			return nil, decodeErr("load_all", err)
		}
		val, err := b.values.Decode([]byte(vs))
		if err != nil {
			return nil, decodeErr("load_all", err)
		}
		out[key] = val
	}
	return out, nil
}

func (b *Backend[K, V]) Save(ctx context.Context, key K, value V) error {
	ks, err := b.keys.EncodeKey(key)
	if err != nil {
		return encodeErr("save", err)
	}
	vb, err := b.values.Encode(value)
	if err != nil {
		return encodeErr("save", err)
	}
	if err := b.rdb.HSet(ctx, b.hash, ks, vb).Err(); err != nil {
		return backendErr("save", err)
	}
	return nil
}

func (b *Backend[K, V]) Delete(ctx context.Context, key K) error {
	ks, err := b.keys.EncodeKey(key)
	if err != nil {
		return encodeErr("delete", err)
	}
	// HDEL of a missing field returns 0, which is still success
	if err := b.rdb.HDel(ctx, b.hash, ks).Err(); err != nil {
		return backendErr("delete", err)
	}
	return nil
}

func (b *Backend[K, V]) Flush(context.Context) error { return nil }

// Len implements the optional fast-path counter via HLEN.
func (b *Backend[K, V]) Len(ctx context.Context) (int, error) {
	n, err := b.rdb.HLen(ctx, b.hash).Result()
	if err != nil {
		return 0, backendErr("len", err)
	}
	return int(n), nil
}

// ContainsKey implements the optional fast-path existence check.
func (b *Backend[K, V]) ContainsKey(ctx context.Context, key K) (bool, error) {
	ks, err := b.keys.EncodeKey(key)
	if err != nil {
		return false, encodeErr("contains", err)
	}
	ok, err := b.rdb.HExists(ctx, b.hash, ks).Result()
	if err != nil {
		return false, backendErr("contains", err)
	}
	return ok, nil
}

// Close releases the underlying client only when this backend owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (b *Backend[K, V]) Close(context.Context) error {
	if b.closeClient {
		if err := b.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return backendErr("close", err)
		}
	}
	return nil
}

func backendErr(op string, err error) error {
	return &persistmap.Error{Kind: persistmap.KindBackend, Op: "redis." + op, Err: err}
}

func encodeErr(op string, err error) error {
	return &persistmap.Error{Kind: persistmap.KindEncode, Op: "redis." + op, Err: err}
}

func decodeErr(op string, err error) error {
	return &persistmap.Error{Kind: persistmap.KindDecode, Op: "redis." + op, Err: err}
}
