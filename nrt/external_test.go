package nrt

import "testing"

func TestExternalAllocatorTokenAccepted(t *testing.T) {
	Init()
	ea := SampleExternalAllocator()

	mi := AllocExternal(32, ea)
	if mi == nil {
		t.Fatalf("allocation through the correct token failed")
	}
	if mi.External() != ea {
		t.Fatalf("handle does not record its external allocator")
	}
	s := ReadStats()
	if s.Alloc != 0 || s.Free != 0 {
		t.Fatalf("external traffic moved the global byte counters: %+v", s)
	}
	if s.MiAlloc != 1 {
		t.Fatalf("handle counter %d, want 1", s.MiAlloc)
	}

	mi.Release()
	s = ReadStats()
	if s.MiFree != 1 {
		t.Fatalf("handles freed %d, want 1", s.MiFree)
	}
	if s.Alloc != 0 || s.Free != 0 {
		t.Fatalf("external release moved the global byte counters: %+v", s)
	}
}

func TestExternalAllocatorTokenRejected(t *testing.T) {
	Init()
	good := SampleExternalAllocator()
	bad := &ExternalAllocator{
		Malloc:  good.Malloc,
		Realloc: good.Realloc,
		Free:    good.Free,
		Opaque:  &struct{ _ int }{},
	}
	if mi := AllocExternal(32, bad); mi != nil {
		t.Fatalf("allocation through a mismatched token must fail")
	}
	s := ReadStats()
	if s.Alloc != 0 || s.MiAlloc != 0 {
		t.Fatalf("counters moved for rejected allocation: %+v", s)
	}
}

func TestExternalTwoHandles(t *testing.T) {
	Init()
	ea := SampleExternalAllocator()
	a := AllocExternal(16, ea)
	b := AllocExternal(16, ea)
	if a == nil || b == nil {
		t.Fatalf("external allocations failed")
	}
	a.Release()
	b.Release()
	s := ReadStats()
	if s.MiAlloc != 2 || s.MiFree != 2 {
		t.Fatalf("handle counters %d/%d, want 2/2", s.MiAlloc, s.MiFree)
	}
}

func TestExternalSafeAligned(t *testing.T) {
	Init()
	ea := SampleExternalAllocator()
	mi := AllocSafeAlignedExternal(64, 16, ea)
	if mi == nil {
		t.Fatalf("AllocSafeAlignedExternal returned nil")
	}
	if addr := dataAddr(mi); addr%16 != 0 {
		t.Fatalf("data address %#x not 16-byte aligned", addr)
	}
	for i, b := range mi.Data() {
		if b != 0xCB {
			t.Fatalf("byte %d=%#x, want 0xCB", i, b)
		}
	}
	mi.Release()
	if err := CheckLeaks(); err != nil {
		t.Fatalf("CheckLeaks: %v", err)
	}
}
