package nrt

import (
	"testing"

	"github.com/numforge/nrt-go/mem"
)

func TestVarsizeResize(t *testing.T) {
	Init()
	mi := NewVarsize(16)
	if mi == nil {
		t.Fatalf("NewVarsize returned nil")
	}
	if mi.Size() != 16 {
		t.Fatalf("Size=%d, want 16", mi.Size())
	}
	copy(mi.Data(), "0123456789abcdef")
	before := &mi.Data()[0]

	data := mi.VarsizeRealloc(64)
	if data == nil {
		t.Fatalf("VarsizeRealloc returned nil")
	}
	if mi.Size() != 64 || len(mi.Data()) != 64 {
		t.Fatalf("Size=%d len=%d, want 64/64", mi.Size(), len(mi.Data()))
	}
	if &data[0] == before {
		t.Fatalf("expected a fresh block after growth")
	}
	if string(data[:16]) != "0123456789abcdef" {
		t.Fatalf("contents not preserved: %q", data[:16])
	}

	mi.Release()
	if err := CheckLeaks(); err != nil {
		t.Fatalf("CheckLeaks: %v", err)
	}
}

func TestVarsizeAllocReplacesPayload(t *testing.T) {
	Init()
	mi := NewVarsize(16)
	old := mi.Data()
	mi.VarsizeFree(old)
	if mi.Data() != nil {
		t.Fatalf("VarsizeFree did not empty the handle")
	}
	data := mi.VarsizeAlloc(32)
	if data == nil || mi.Size() != 32 {
		t.Fatalf("VarsizeAlloc failed: data=%v size=%d", data, mi.Size())
	}
	mi.Release()
	if err := CheckLeaks(); err != nil {
		t.Fatalf("CheckLeaks: %v", err)
	}
}

func TestVarsizeFreeForeignPointerKeepsPayload(t *testing.T) {
	Init()
	mi := NewVarsize(16)
	other := Allocate(8)
	mi.VarsizeFree(other)
	if mi.Data() == nil {
		t.Fatalf("freeing an unrelated pointer must not empty the handle")
	}
	mi.Release()
	if err := CheckLeaks(); err != nil {
		t.Fatalf("CheckLeaks: %v", err)
	}
}

func TestVarsizeOnPlainHandleIsFatal(t *testing.T) {
	Init()
	mi := Alloc(16)
	expectFatal(t, func() {
		mi.VarsizeAlloc(32)
	})
	expectFatal(t, func() {
		mi.VarsizeRealloc(32)
	})
	expectFatal(t, func() {
		mi.VarsizeFree(mi.Data())
	})
	mi.Release()
	Init()
}

func TestVarsizeFailedResizeKeepsPriorPayload(t *testing.T) {
	Init()
	rec := mem.NewRecordingAllocator(nil)
	SetAllocator(rec)

	mi := NewVarsize(16)
	copy(mi.Data(), "0123456789abcdef")
	prior := mi.Data()

	rec.FailNext.Store(1)
	if data := mi.VarsizeRealloc(64); data != nil {
		t.Fatalf("expected nil on failed resize")
	}
	if mi.Size() != 16 || &mi.Data()[0] != &prior[0] {
		t.Fatalf("failed resize disturbed the handle: size=%d", mi.Size())
	}
	if string(mi.Data()) != "0123456789abcdef" {
		t.Fatalf("payload corrupted: %q", mi.Data())
	}

	mi.Release()
	SetAllocator(mem.GoAllocator{})
	Init()
}

func TestVarsizeElementDtor(t *testing.T) {
	Init()
	var dtorData []byte
	mi := NewVarsizeDtor(16, func(data []byte) {
		dtorData = data
	})
	payload := mi.Data()
	mi.Release()
	if &dtorData[0] != &payload[0] {
		t.Fatalf("element destructor did not receive the payload")
	}
	if err := CheckLeaks(); err != nil {
		t.Fatalf("CheckLeaks: %v", err)
	}
}
