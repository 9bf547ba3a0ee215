// Package csvfile provides a backend persisted to a headerless
// two-column delimited text file: one row per pair, key then encoded
// value.
//
// Save appends a single row, so repeated saves of one key leave multiple
// rows behind; LoadAll keeps the last row per key. Delete compacts: it
// rewrites the whole file without the key, atomically (temp file +
// rename), so a crash mid-delete never leaves a truncated file behind.
// Writes hit the file synchronously, so Flush is a no-op.
//
// Pairs best with text codecs (JSON, String); binary codec output ends
// up quoted inside CSV cells, which works but is unreadable on disk.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/unkn0wn-root/persistmap"
	be "github.com/unkn0wn-root/persistmap/backend"
	"github.com/unkn0wn-root/persistmap/codec"
)

type Backend[K comparable, V any] struct {
	mu     sync.Mutex // serializes all file access
	path   string
	keys   codec.KeyCodec[K]
	values codec.Codec[V]
}

var _ be.Backend[string, string] = (*Backend[string, string])(nil)

// New returns a backend writing to path. The file and its parent
// directories are created on first use.
func New[K comparable, V any](path string, keys codec.KeyCodec[K], values codec.Codec[V]) (*Backend[K, V], error) {
	if path == "" {
		return nil, errors.New("csvfile: path is required")
	}
	if keys == nil || values == nil {
		return nil, errors.New("csvfile: key and value codecs are required")
	}
	return &Backend[K, V]{path: path, keys: keys, values: values}, nil
}

func (b *Backend[K, V]) LoadAll(context.Context) (map[K]V, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadLocked()
}

func (b *Backend[K, V]) loadLocked() (map[K]V, error) {
	f, err := os.Open(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[K]V{}, nil
		}
		return nil, ioErr("load_all", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	out := make(map[K]V)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, decodeErr("load_all", err)
		}
		key, err := b.keys.DecodeKey(rec[0])
		if err != nil {
			return nil, decodeErr("load_all", err)
		}
		val, err := b.values.Decode([]byte(rec[1]))
		if err != nil {
			return nil, decodeErr("load_all", err)
		}
		out[key] = val // last row wins for duplicated keys
	}
	return out, nil
}

func (b *Backend[K, V]) Save(_ context.Context, key K, value V) error {
	row, err := b.encodeRow("save", key, value)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureFileLocked(); err != nil {
		return err
	}
	f, err := os.OpenFile(b.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return ioErr("save", err)
	}
	w := csv.NewWriter(f)
	werr := w.Write(row)
	w.Flush()
	if werr == nil {
		werr = w.Error()
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return ioErr("save", werr)
	}
	return nil
}

func (b *Backend[K, V]) Delete(_ context.Context, key K) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.loadLocked()
	if err != nil {
		return err
	}
	if _, ok := all[key]; !ok {
		return nil // absent key: no-op success
	}
	delete(all, key)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for k, v := range all {
		row, err := b.encodeRow("delete", k, v)
		if err != nil {
			return err
		}
		if err := w.Write(row); err != nil {
			return ioErr("delete", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return ioErr("delete", err)
	}
	if err := atomic.WriteFile(b.path, &buf); err != nil {
		return ioErr("delete", err)
	}
	return nil
}

func (b *Backend[K, V]) Flush(context.Context) error { return nil }

func (b *Backend[K, V]) encodeRow(op string, key K, value V) ([]string, error) {
	ks, err := b.keys.EncodeKey(key)
	if err != nil {
		return nil, &persistmap.Error{Kind: persistmap.KindEncode, Op: "csv." + op, Err: err}
	}
	vb, err := b.values.Encode(value)
	if err != nil {
		return nil, &persistmap.Error{Kind: persistmap.KindEncode, Op: "csv." + op, Err: err}
	}
	return []string{ks, string(vb)}, nil
}

func (b *Backend[K, V]) ensureFileLocked() error {
	_, err := os.Stat(b.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return ioErr("open", err)
	}
	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ioErr("open", err)
		}
	}
	f, err := os.OpenFile(b.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return ioErr("open", err)
	}
	return f.Close()
}

func ioErr(op string, err error) error {
	return &persistmap.Error{Kind: persistmap.KindIo, Op: "csv." + op, Err: err}
}

func decodeErr(op string, err error) error {
	return &persistmap.Error{Kind: persistmap.KindDecode, Op: "csv." + op, Err: err}
}
