// Package postgres provides a relational backend on PostgreSQL via pgx.
//
// Layout: one table with a TEXT primary key and a BYTEA value column.
// Save is an upsert (INSERT ... ON CONFLICT DO UPDATE), so it is atomic
// per key. Statements run on an autocommit pool and are durable once
// acknowledged, so Flush is a no-op.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unkn0wn-root/persistmap"
	be "github.com/unkn0wn-root/persistmap/backend"
	"github.com/unkn0wn-root/persistmap/codec"
)

const defaultTable = "persistmap"

// Config for New. Either DSN or Pool must be set, plus both codecs.
type Config[K comparable, V any] struct {
	// DSN is the PostgreSQL connection string. Ignored when Pool is set.
	DSN string
	// Pool is an existing pool to reuse. The backend closes it on Close
	// only when OwnPool is true.
	Pool    *pgxpool.Pool
	OwnPool bool
	// Table is the table name; defaults to "persistmap". Created with
	// CREATE TABLE IF NOT EXISTS at construction.
	Table string

	Keys   codec.KeyCodec[K]
	Values codec.Codec[V]
}

type Backend[K comparable, V any] struct {
	pool    *pgxpool.Pool
	ownPool bool
	table   string
	keys    codec.KeyCodec[K]
	values  codec.Codec[V]
}

var (
	_ be.Backend[string, string] = (*Backend[string, string])(nil)
	_ be.Closer                  = (*Backend[string, string])(nil)
	_ be.Counter                 = (*Backend[string, string])(nil)
	_ be.Checker[string]         = (*Backend[string, string])(nil)
)

func New[K comparable, V any](ctx context.Context, cfg Config[K, V]) (*Backend[K, V], error) {
	if cfg.Keys == nil || cfg.Values == nil {
		return nil, errors.New("postgres: key and value codecs are required")
	}
	pool, own := cfg.Pool, cfg.OwnPool
	if pool == nil {
		if cfg.DSN == "" {
			return nil, errors.New("postgres: dsn or pool is required")
		}
		p, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: create pool: %w", err)
		}
		pool, own = p, true
	}

	b := &Backend[K, V]{
		pool:    pool,
		ownPool: own,
		table:   cfg.Table,
		keys:    cfg.Keys,
		values:  cfg.Values,
	}
	if b.table == "" {
		b.table = defaultTable
	}
	if err := b.ensureSchema(ctx); err != nil {
		if own {
			pool.Close()
		}
		return nil, err
	}
	return b, nil
}

func (b *Backend[K, V]) ensureSchema(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value BYTEA NOT NULL)`, b.table))
	if err != nil {
		return backendErr("schema", err)
	}
	return nil
}

func (b *Backend[K, V]) LoadAll(ctx context.Context) (map[K]V, error) {
	rows, err := b.pool.Query(ctx, fmt.Sprintf(`SELECT key, value FROM %s`, b.table))
	if err != nil {
		return nil, backendErr("load_all", err)
	}
	defer rows.Close()

	out := make(map[K]V)
	for rows.Next() {
		var (
			ks string
			vb []byte
		)
		if err := rows.Scan(&ks, &vb); err != nil {
			return nil, backendErr("load_all", err)
		}
		key, err := b.keys.DecodeKey(ks)
		if err != nil {
			return nil, decodeErr("load_all", err)
		}
		val, err := b.values.Decode(vb)
		if err != nil {
			return nil, decodeErr("load_all", err)
		}
		out[key] = val
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr("load_all", err)
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

	_, err = b.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, b.table), ks, vb)
	if err != nil {
		return backendErr("save", err)
	}
	return nil
}

func (b *Backend[K, V]) Delete(ctx context.Context, key K) error {
	ks, err := b.keys.EncodeKey(key)
	if err != nil {
		return encodeErr("delete", err)
	}
	// deleting zero rows is still success: absent keys are a no-op
	_, err = b.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, b.table), ks)
	if err != nil {
		return backendErr("delete", err)
	}
	return nil
}

func (b *Backend[K, V]) Flush(context.Context) error { return nil }

// Len implements the optional fast-path counter via COUNT(*).
func (b *Backend[K, V]) Len(ctx context.Context) (int, error) {
	var n int
	err := b.pool.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, b.table)).Scan(&n)
	if err != nil {
		return 0, backendErr("len", err)
	}
	return n, nil
}

// ContainsKey implements the optional fast-path existence check.
func (b *Backend[K, V]) ContainsKey(ctx context.Context, key K) (bool, error) {
	ks, err := b.keys.EncodeKey(key)
	if err != nil {
		return false, encodeErr("contains", err)
	}
	var ok bool
	err = b.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT EXISTS (SELECT 1 FROM %s WHERE key = $1)`, b.table), ks).Scan(&ok)
	if err != nil {
		return false, backendErr("contains", err)
	}
	return ok, nil
}

// Close closes the pool only when this backend owns it. Safe to call
// multiple times.
func (b *Backend[K, V]) Close(context.Context) error {
	if b.ownPool && b.pool != nil {
		b.pool.Close()
	}
	return nil
}

func backendErr(op string, err error) error {
	return &persistmap.Error{Kind: persistmap.KindBackend, Op: "pg." + op, Err: err}
}

func encodeErr(op string, err error) error {
	return &persistmap.Error{Kind: persistmap.KindEncode, Op: "pg." + op, Err: err}
}

func decodeErr(op string, err error) error {
	return &persistmap.Error{Kind: persistmap.KindDecode, Op: "pg." + op, Err: err}
}
