package persistmap

import (
	"errors"
	"fmt"
)

// Kind classifies a failure into the closed taxonomy shared by the
// backend contract and the coordinator.
type Kind uint8

const (
	// KindIo: the storage medium was unreachable, unwritable or unreadable.
	KindIo Kind = iota + 1
	// KindEncode: a key or value could not be serialized for storage.
	KindEncode
	// KindDecode: stored data could not be deserialized (includes
	// structurally invalid data discovered on load).
	KindDecode
	// KindBackend: a backend-specific failure not covered above
	// (constraint violation, connection failure, ...), carried opaquely.
	KindBackend
	// KindNotReady: an operation reached a map that was never constructed.
	// Unreachable through New; defined so staged construction fails
	// loudly instead of behaving arbitrarily.
	KindNotReady
)

func (k Kind) String() string {
	switch k {
	case KindIo:
		return "io"
	case KindEncode:
		return "encode"
	case KindDecode:
		return "decode"
	case KindBackend:
		return "backend"
	case KindNotReady:
		return "not_ready"
	default:
		return "unknown"
	}
}

// Error is the concrete error type carried across the backend boundary.
// Backends construct these; the coordinator propagates them unchanged.
type Error struct {
	Kind Kind
	Op   string // e.g. "save", "delete", "load_all", "flush"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("persistmap: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("persistmap: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from anywhere in err's chain; 0 if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// classify guarantees callers always observe the closed taxonomy: errors
// already carrying a Kind pass through unchanged, anything else is
// wrapped as KindBackend.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindBackend, Op: op, Err: err}
}

func notReady(op string) error {
	return &Error{Kind: KindNotReady, Op: op, Err: errors.New("map not constructed")}
}
