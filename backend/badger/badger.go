// Package badger provides a backend on BadgerDB, an embedded
// log-structured (LSM) key-value store. Each Save/Delete runs in its own
// transaction, so mutations are individually atomic; Flush syncs the
// value log to disk.
package badger

import (
	"context"
	"errors"

	bdg "github.com/dgraph-io/badger/v4"

	"github.com/unkn0wn-root/persistmap"
	be "github.com/unkn0wn-root/persistmap/backend"
	"github.com/unkn0wn-root/persistmap/codec"
)

// Config for New. Either Dir or DB must be set, plus both codecs.
type Config[K comparable, V any] struct {
	// Dir is the database directory; opened with default options and
	// badger's own logger disabled. Ignored when DB is set.
	Dir string
	// DB is an existing handle to reuse. The backend closes it on Close
	// only when OwnDB is true.
	DB    *bdg.DB
	OwnDB bool
	// InMemory opens badger without any files (Dir is then unused).
	InMemory bool

	Keys   codec.KeyCodec[K]
	Values codec.Codec[V]
}

type Backend[K comparable, V any] struct {
	db     *bdg.DB
	ownDB  bool
	keys   codec.KeyCodec[K]
	values codec.Codec[V]
}

var (
	_ be.Backend[string, string] = (*Backend[string, string])(nil)
	_ be.Closer                  = (*Backend[string, string])(nil)
)

func New[K comparable, V any](cfg Config[K, V]) (*Backend[K, V], error) {
	if cfg.Keys == nil || cfg.Values == nil {
		return nil, errors.New("badger: key and value codecs are required")
	}
	db, own := cfg.DB, cfg.OwnDB
	if db == nil {
		if cfg.Dir == "" && !cfg.InMemory {
			return nil, errors.New("badger: dir or db is required")
		}
		opts := bdg.DefaultOptions(cfg.Dir).WithLogger(nil)
		if cfg.InMemory {
			opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
		}
		d, err := bdg.Open(opts)
		if err != nil {
			return nil, backendErr("open", err)
		}
		db, own = d, true
	}
	return &Backend[K, V]{db: db, ownDB: own, keys: cfg.Keys, values: cfg.Values}, nil
}

func (b *Backend[K, V]) LoadAll(context.Context) (map[K]V, error) {
	out := make(map[K]V)
	err := b.db.View(func(txn *bdg.Txn) error {
		it := txn.NewIterator(bdg.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key, err := b.keys.DecodeKey(string(item.Key()))
			if err != nil {
				return decodeErr("load_all", err)
			}
			if err := item.Value(func(raw []byte) error {
				val, err := b.values.Decode(raw)
				if err != nil {
					return decodeErr("load_all", err)
				}
				out[key] = val
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify("load_all", err)
	}
	return out, nil
}

func (b *Backend[K, V]) Save(_ context.Context, key K, value V) error {
	ks, err := b.keys.EncodeKey(key)
	if err != nil {
		return encodeErr("save", err)
	}
	vb, err := b.values.Encode(value)
	if err != nil {
		return encodeErr("save", err)
	}
	err = b.db.Update(func(txn *bdg.Txn) error {
		return txn.Set([]byte(ks), vb)
	})
	if err != nil {
		return backendErr("save", err)
	}
	return nil
}

func (b *Backend[K, V]) Delete(_ context.Context, key K) error {
	ks, err := b.keys.EncodeKey(key)
	if err != nil {
		return encodeErr("delete", err)
	}
	// badger's Delete of a missing key commits cleanly
	err = b.db.Update(func(txn *bdg.Txn) error {
		return txn.Delete([]byte(ks))
	})
	if err != nil {
		return backendErr("delete", err)
	}
	return nil
}

func (b *Backend[K, V]) Flush(context.Context) error {
	if b.db.Opts().InMemory {
		return nil
	}
	if err := b.db.Sync(); err != nil {
		return &persistmap.Error{Kind: persistmap.KindIo, Op: "badger.flush", Err: err}
	}
	return nil
}

// Close closes the database only when this backend owns it.
func (b *Backend[K, V]) Close(context.Context) error {
	if !b.ownDB {
		return nil
	}
	if err := b.db.Close(); err != nil {
		return backendErr("close", err)
	}
	return nil
}

// classify keeps already-kinded errors (decode failures raised inside a
// View) and wraps raw badger errors as backend failures.
func classify(op string, err error) error {
	var e *persistmap.Error
	if errors.As(err, &e) {
		return err
	}
	return backendErr(op, err)
}

func backendErr(op string, err error) error {
	return &persistmap.Error{Kind: persistmap.KindBackend, Op: "badger." + op, Err: err}
}

func encodeErr(op string, err error) error {
	return &persistmap.Error{Kind: persistmap.KindEncode, Op: "badger." + op, Err: err}
}

func decodeErr(op string, err error) error {
	return &persistmap.Error{Kind: persistmap.KindDecode, Op: "badger." + op, Err: err}
}
