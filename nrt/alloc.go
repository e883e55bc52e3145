package nrt

import "unsafe"

const (
	// fillCreate marks freshly allocated safe payload bytes.
	fillCreate byte = 0xCB
	// fillDestroy marks destroyed safe payload bytes.
	fillDestroy byte = 0xDE
	// fillLimit caps the debug fill to a couple of cachelines so large
	// buffers do not pay for it. Corruption past this prefix goes
	// undetected; that is the accepted trade-off.
	fillLimit = 256
)

func safeFill(buf []byte, pattern byte) {
	n := len(buf)
	if n > fillLimit {
		n = fillLimit
	}
	for i := 0; i < n; i++ {
		buf[i] = pattern
	}
}

// internalDtorSafe stamps the destruction pattern over the payload prefix
// so use-after-free reads are recognizable in test harnesses.
func internalDtorSafe(data []byte, _ int, _ DtorInfo) {
	safeFill(data, fillDestroy)
}

// internalCustomDtorSafe runs the caller's destructor first, then applies
// the safe destruction fill, composing both behaviors.
func internalCustomDtorSafe(data []byte, size int, info DtorInfo) {
	if info.Dtor != nil {
		info.Dtor(data, size, DtorInfo{})
	}
	safeFill(data, fillDestroy)
}

// allocData obtains a single block for a handle's payload from the given
// external allocator or the global binding. Returns nil on failure.
func allocData(size int, allocator *ExternalAllocator) []byte {
	debugf("allocData size=%d external=%p", size, allocator)
	return AllocateExternal(size, allocator)
}

// allocDataAligned over-allocates by 2*align and advances to the first
// address that is a multiple of align. Only the payload view is aligned,
// not the underlying block.
func allocDataAligned(size, align int, allocator *ExternalAllocator) (data, raw []byte) {
	raw = AllocateExternal(size+2*align, allocator)
	if raw == nil {
		return nil, nil
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	offset := 0
	if remainder := int(addr % uintptr(align)); remainder != 0 {
		offset = align - remainder
	}
	return raw[offset : offset+size], raw
}

// Alloc creates a handle over a fresh uninitialized payload of size bytes.
// Returns nil when the underlying allocation fails.
func Alloc(size int) *MemInfo {
	return AllocExternal(size, nil)
}

// AllocExternal is Alloc with the payload obtained from an external
// allocator, which the handle records for release routing.
func AllocExternal(size int, allocator *ExternalAllocator) *MemInfo {
	raw := allocData(size, allocator)
	if raw == nil {
		return nil
	}
	mi := &MemInfo{}
	mi.init(raw, raw, size, nil, DtorInfo{}, allocator)
	return mi
}

// AllocSafe creates a handle whose payload prefix carries the creation
// fill pattern and is re-stamped with the destruction pattern on destroy.
func AllocSafe(size int) *MemInfo {
	return AllocDtorSafe(size, nil)
}

// AllocDtorSafe is AllocSafe with a caller-supplied destructor that runs
// before the destruction fill.
func AllocDtorSafe(size int, dtor DtorFunc) *MemInfo {
	raw := allocData(size, nil)
	if raw == nil {
		return nil
	}
	safeFill(raw, fillCreate)
	info := DtorInfo{}
	if dtor != nil {
		info = DtorInfo{Kind: DtorInfoDtor, Dtor: dtor}
	}
	mi := &MemInfo{}
	mi.init(raw, raw, size, internalCustomDtorSafe, info, nil)
	return mi
}

// AllocAligned creates a handle whose payload start is a multiple of
// align. The handle record itself carries no alignment guarantee.
func AllocAligned(size, align int) *MemInfo {
	data, raw := allocDataAligned(size, align, nil)
	if raw == nil {
		return nil
	}
	mi := &MemInfo{}
	mi.init(data, raw, size, nil, DtorInfo{}, nil)
	return mi
}

// AllocSafeAligned combines the aligned and safe-fill variants.
func AllocSafeAligned(size, align int) *MemInfo {
	return AllocSafeAlignedExternal(size, align, nil)
}

// AllocSafeAlignedExternal is AllocSafeAligned backed by an external
// allocator.
func AllocSafeAlignedExternal(size, align int, allocator *ExternalAllocator) *MemInfo {
	data, raw := allocDataAligned(size, align, allocator)
	if raw == nil {
		return nil
	}
	safeFill(data, fillCreate)
	mi := &MemInfo{}
	mi.init(data, raw, size, internalDtorSafe, DtorInfo{Kind: DtorInfoSize, Size: size}, allocator)
	return mi
}
