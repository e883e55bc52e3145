package nrt

import (
	"fmt"
	"io"

	"go.uber.org/atomic"
)

// DtorFunc is the full-signature destructor attached to a handle. It runs
// on the release call that drops the refcount to zero and may itself
// acquire or release other handles; no runtime lock is held across it.
type DtorFunc func(data []byte, size int, info DtorInfo)

// ManagedDtor is the single-argument destructor used for foreign memory
// wrapped through the stable API table and for varsize element cleanup.
type ManagedDtor func(data []byte)

// DtorInfoKind tags the meaning of a handle's destructor context.
type DtorInfoKind uint8

const (
	// DtorInfoNone marks an empty destructor context.
	DtorInfoNone DtorInfoKind = iota
	// DtorInfoParent marks a context carrying the owning parent handle.
	DtorInfoParent
	// DtorInfoSize marks a context carrying the payload size.
	DtorInfoSize
	// DtorInfoDtor marks a context carrying a secondary destructor.
	DtorInfoDtor
)

// DtorInfo is the destructor context carried by a handle. The C runtime
// overloaded a single opaque pointer for all of these; the tag makes each
// allocation variant's meaning explicit.
type DtorInfo struct {
	Kind     DtorInfoKind
	Parent   *MemInfo
	Size     int
	Dtor     DtorFunc    // full-signature secondary destructor
	ElemDtor ManagedDtor // single-argument secondary destructor
}

// RefcountInvalid is returned by Refcount for a handle that is nil or has
// no payload. Defensive only, never authoritative.
const RefcountInvalid int64 = -1

// MemInfo pairs an atomic reference count with a payload, its destructor,
// and the allocator the payload must be returned to. The refcount starts
// at 1 on construction; the release that takes it to zero is observed by
// exactly one goroutine, which alone destroys the handle.
type MemInfo struct {
	refct    atomic.Int64
	dtor     DtorFunc
	dtorInfo DtorInfo
	data     []byte // payload view handed to callers
	// raw is the block exactly as returned by the allocator (it includes
	// alignment padding); nil when the payload is foreign or separately
	// allocated, in which case the destructor owns its cleanup.
	raw      []byte
	size     int // only meaningful for runtime-managed payloads
	external *ExternalAllocator
	varsize  bool
}

func (mi *MemInfo) init(data, raw []byte, size int, dtor DtorFunc, info DtorInfo, allocator *ExternalAllocator) {
	mi.refct.Store(1)
	mi.dtor = dtor
	mi.dtorInfo = info
	mi.data = data
	mi.raw = raw
	mi.size = size
	mi.external = allocator
	theMSys.statsMiAlloc.Inc()
	debugf("MemInfo init mi=%p external=%p", mi, allocator)
}

// New wraps already-allocated memory in a fresh handle with refcount 1.
// The handle does not own raw storage beyond data; the destructor is
// responsible for whatever cleanup data needs.
func New(data []byte, size int, dtor DtorFunc, info DtorInfo) *MemInfo {
	mi := &MemInfo{}
	mi.init(data, nil, size, dtor, info, nil)
	return mi
}

// Acquire atomically takes an additional reference.
func (mi *MemInfo) Acquire() {
	if mi.refct.Load() <= 0 {
		fatalf("Acquire on a dead MemInfo (refcount must be positive)")
	}
	mi.refct.Inc()
}

// Release atomically drops a reference. The caller that takes the count
// to zero runs the destructor (unless the runtime is shutting down) and
// returns the storage to its originating allocator.
func (mi *MemInfo) Release() {
	if mi.refct.Load() <= 0 {
		fatalf("Release on a dead MemInfo (refcount must be positive)")
	}
	if mi.refct.Dec() == 0 {
		mi.callDtor()
	}
}

func (mi *MemInfo) callDtor() {
	debugf("MemInfo callDtor mi=%p", mi)
	if mi.dtor != nil && !theMSys.shutting.Load() {
		mi.dtor(mi.data, mi.size, mi.dtorInfo)
	}
	mi.destroy()
}

// destroy returns the handle's storage to whichever allocator produced it
// and retires the handle. Runs exactly once, from the zero transition.
func (mi *MemInfo) destroy() {
	if mi.raw != nil {
		if mi.external != nil {
			mi.external.Free(mi.raw, mi.external.Opaque)
		} else {
			Free(mi.raw)
		}
	}
	mi.data = nil
	mi.raw = nil
	theMSys.statsMiFree.Inc()
}

// Refcount returns the current reference count, or RefcountInvalid when
// the handle is nil or holds no payload.
func (mi *MemInfo) Refcount() int64 {
	if mi == nil || mi.data == nil {
		return RefcountInvalid
	}
	return mi.refct.Load()
}

// Data returns the payload.
func (mi *MemInfo) Data() []byte {
	return mi.data
}

// Size returns the payload size recorded at construction or resize.
func (mi *MemInfo) Size() int {
	return mi.size
}

// Parent returns the owning handle recorded in the destructor context, or
// nil when the context carries something else.
func (mi *MemInfo) Parent() *MemInfo {
	if mi.dtorInfo.Kind != DtorInfoParent {
		return nil
	}
	return mi.dtorInfo.Parent
}

// Info returns the handle's destructor context.
func (mi *MemInfo) Info() DtorInfo {
	return mi.dtorInfo
}

// External returns the external allocator backing this handle, if any.
func (mi *MemInfo) External() *ExternalAllocator {
	debugf("MemInfo external mi=%p external=%p", mi, mi.external)
	return mi.external
}

// Dump renders the handle's address and refcount to a caller-supplied
// sink. Debugging aid only, not part of the stable surface.
func (mi *MemInfo) Dump(out io.Writer) {
	fmt.Fprintf(out, "MemInfo %p refcount %d\n", mi, mi.refct.Load())
}
