// Package codec provides the (de)serialization building blocks used by
// the concrete backends. The backend contract owns encoding entirely:
// the coordinator never sees encoded bytes, so any codec can be paired
// with any backend whose medium can carry its output.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// KeyCodec renders keys as strings for backends whose storage medium is
// stringly keyed (CSV columns, SQL TEXT, redis hash fields). Encode and
// Decode must round-trip: DecodeKey(EncodeKey(k)) == k.
type KeyCodec[K comparable] interface {
	EncodeKey(K) (string, error)
	DecodeKey(string) (K, error)
}
