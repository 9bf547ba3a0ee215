// Package persistmap implements an in-memory key-value map whose writes
// are recorded through a pluggable durable backend. Reads are served
// entirely from memory; a write is visible in memory only after the
// backend has acknowledged it (write-through).
//
// Components:
//   - backend.Backend[K,V]: durable store contract (bulk load, save,
//     delete, flush). Concrete engines live under backend/ (memory,
//     csvfile, postgres, badger, redis).
//   - codec.Codec[V] / codec.KeyCodec[K]: (de)serialization, chosen per
//     backend. The coordinator never sees encoded bytes.
//   - Map[K,V]: the coordinator tying one cache to one backend.
//
// Guarantees:
//   - After a successful Insert or Remove returns, the cache holds exactly
//     what the backend durably committed for that key. A failed backend
//     call leaves the cache untouched.
//   - Construction loads the full backend snapshot before any operation is
//     accepted; there is no partially loaded state.
//   - All mutations on one key are serialized, so the cache always reflects
//     the most recently acknowledged write for that key. Distinct keys
//     never contend with each other.
//
// Get, ContainsKey, Len and IsEmpty never touch the backend and have no
// failure mode beyond "not present".
package persistmap
