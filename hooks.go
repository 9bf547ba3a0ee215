package persistmap

import "time"

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; the map calls them on
// its write paths. Keys are deliberately not passed: they may be
// sensitive and are not needed to act on any of these signals.
type Hooks interface {
	// The construction-time bulk load finished.
	LoadDone(entries int, elapsed time.Duration)

	// A backend Save or Delete failed; the cache was left untouched.
	// op ∈ {"save", "delete"}
	WriteFailed(op string, err error)

	// A backend Flush failed.
	FlushFailed(err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) LoadDone(int, time.Duration) {}
func (NopHooks) WriteFailed(string, error)   {}
func (NopHooks) FlushFailed(error)           {}
