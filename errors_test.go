package persistmap

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsChains(t *testing.T) {
	base := errors.New("no such file")
	kinded := &Error{Kind: KindIo, Op: "load_all", Err: base}

	if KindOf(kinded) != KindIo {
		t.Fatalf("KindOf direct = %v", KindOf(kinded))
	}
	wrapped := fmt.Errorf("constructing map: %w", kinded)
	if KindOf(wrapped) != KindIo {
		t.Fatalf("KindOf wrapped = %v", KindOf(wrapped))
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("base error lost from chain")
	}
	if KindOf(errors.New("bare")) != 0 {
		t.Fatalf("bare error should have no kind")
	}
}

func TestClassifyPreservesKinds(t *testing.T) {
	kinded := &Error{Kind: KindEncode, Op: "save", Err: errors.New("bad value")}
	if got := classify("save", kinded); got != kinded {
		t.Fatalf("classify rewrapped an already-kinded error")
	}

	bare := errors.New("boom")
	got := classify("save", bare)
	if KindOf(got) != KindBackend {
		t.Fatalf("bare error classified as %v", KindOf(got))
	}
	if !errors.Is(got, bare) {
		t.Fatalf("classify dropped the cause")
	}
	if classify("save", nil) != nil {
		t.Fatalf("classify(nil) should be nil")
	}
}

func TestErrorStrings(t *testing.T) {
	e := &Error{Kind: KindDecode, Op: "load_all", Err: errors.New("bad row")}
	want := "persistmap: load_all: decode: bad row"
	if e.Error() != want {
		t.Fatalf("Error() = %q, want %q", e.Error(), want)
	}
	for k, s := range map[Kind]string{
		KindIo: "io", KindEncode: "encode", KindDecode: "decode",
		KindBackend: "backend", KindNotReady: "not_ready", Kind(0): "unknown",
	} {
		if k.String() != s {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, k.String(), s)
		}
	}
}
