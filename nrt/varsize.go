package nrt

// varsizeDtor is the fixed destructor of variable-size handles: it runs
// the optional element destructor, then returns the payload to the global
// binding. The payload is allocated separately from the handle record, so
// destroy has nothing further to free.
func varsizeDtor(data []byte, _ int, info DtorInfo) {
	debugf("varsizeDtor len=%d", len(data))
	if info.ElemDtor != nil {
		info.ElemDtor(data)
	}
	Free(data)
}

// NewVarsize creates a handle whose payload may later be replaced in
// place through VarsizeAlloc/VarsizeRealloc. Returns nil when the initial
// allocation fails.
func NewVarsize(size int) *MemInfo {
	data := Allocate(size)
	if data == nil {
		return nil
	}
	mi := New(data, size, varsizeDtor, DtorInfo{})
	mi.varsize = true
	debugf("NewVarsize size=%d -> mi=%p", size, mi)
	return mi
}

// NewVarsizeDtor is NewVarsize with an element destructor that runs over
// the payload before it is freed.
func NewVarsizeDtor(size int, elem ManagedDtor) *MemInfo {
	mi := NewVarsize(size)
	if mi != nil && elem != nil {
		mi.dtorInfo = DtorInfo{Kind: DtorInfoDtor, ElemDtor: elem}
	}
	return mi
}

func (mi *MemInfo) requireVarsize(op string) {
	if !mi.varsize {
		fatalf("%s called with a non varsize-allocated meminfo", op)
	}
}

// VarsizeAlloc gives the handle a fresh payload of size bytes, discarding
// the previous payload pointer without freeing it (callers release it
// first through VarsizeFree). On allocation failure it returns nil and
// leaves the handle's prior payload untouched. Fatal on a handle that was
// not constructed through the varsize path.
func (mi *MemInfo) VarsizeAlloc(size int) []byte {
	mi.requireVarsize("VarsizeAlloc")
	data := Allocate(size)
	if data == nil {
		return nil
	}
	mi.data = data
	mi.size = size
	debugf("VarsizeAlloc mi=%p size=%d", mi, size)
	return data
}

// VarsizeRealloc resizes the payload in place, preserving its contents up
// to the smaller of the old and new sizes. Failure semantics and the
// varsize restriction match VarsizeAlloc.
func (mi *MemInfo) VarsizeRealloc(size int) []byte {
	mi.requireVarsize("VarsizeRealloc")
	data := Reallocate(mi.data, size)
	if data == nil {
		return nil
	}
	mi.data = data
	mi.size = size
	debugf("VarsizeRealloc mi=%p size=%d", mi, size)
	return data
}

// VarsizeFree returns ptr to the global binding immediately. When ptr is
// the handle's current payload the handle is left empty, signalling the
// released state while the record itself stays valid.
func (mi *MemInfo) VarsizeFree(ptr []byte) {
	mi.requireVarsize("VarsizeFree")
	Free(ptr)
	if len(ptr) > 0 && len(mi.data) > 0 && &ptr[0] == &mi.data[0] {
		mi.data = nil
	}
}
