package nrt

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/atomic"

	"github.com/numforge/nrt-go/mem"
)

// MemSys is the process-wide allocator binding: the raw allocator every
// runtime allocation routes through, the shutdown flag, and the global
// statistics counters.
type MemSys struct {
	shutting atomic.Bool

	statsAlloc   atomic.Uint64 // bytes obtained through the binding
	statsFree    atomic.Uint64 // bytes returned through the binding
	statsMiAlloc atomic.Uint64 // handles created
	statsMiFree  atomic.Uint64 // handles destroyed

	// allocator is deliberately not lock-protected. SetAllocator guards
	// against swapping over live blocks, not against concurrent traffic
	// during the swap itself; callers must quiesce first.
	allocator mem.Allocator
}

// theMSys is the singleton binding shared by all handles.
var theMSys = MemSys{allocator: mem.GoAllocator{}}

// Stats is a snapshot of the four global counters.
type Stats struct {
	Alloc   uint64
	Free    uint64
	MiAlloc uint64
	MiFree  uint64
}

// Init binds the runtime to the Go allocator and zeroes all counters and
// the shutdown flag. Called once at process start; tests use it to reset
// global state between scenarios.
func Init() {
	theMSys.shutting.Store(false)
	theMSys.statsAlloc.Store(0)
	theMSys.statsFree.Store(0)
	theMSys.statsMiAlloc.Store(0)
	theMSys.statsMiFree.Store(0)
	theMSys.allocator = mem.GoAllocator{}
}

// Shutdown marks the runtime as shutting down. Irreversible for the
// process lifetime: destructors are skipped from now on, while storage
// reclamation and the counters keep running.
func Shutdown() {
	theMSys.shutting.Store(true)
}

// SetAllocator swaps the global allocator binding. Changing the binding
// while outstanding allocation counts are unbalanced is a fatal error:
// live blocks would be returned to an allocator that never produced them.
func SetAllocator(a mem.Allocator) {
	if a != theMSys.allocator &&
		(theMSys.statsAlloc.Load() != theMSys.statsFree.Load() ||
			theMSys.statsMiAlloc.Load() != theMSys.statsMiFree.Load()) {
		fatalf("cannot change allocator while blocks are allocated")
	}
	theMSys.allocator = a
}

// ReadStats returns a snapshot of the global counters.
func ReadStats() Stats {
	return Stats{
		Alloc:   theMSys.statsAlloc.Load(),
		Free:    theMSys.statsFree.Load(),
		MiAlloc: theMSys.statsMiAlloc.Load(),
		MiFree:  theMSys.statsMiFree.Load(),
	}
}

// CheckLeaks reports an error when the allocation counters are unbalanced.
// At a clean shutdown both byte and handle counters must match.
func CheckLeaks() error {
	s := ReadStats()
	if s.Alloc == s.Free && s.MiAlloc == s.MiFree {
		return nil
	}
	return errors.Newf("memory runtime imbalance: bytes allocated=%d freed=%d, handles allocated=%d freed=%d",
		s.Alloc, s.Free, s.MiAlloc, s.MiFree)
}

// Allocate obtains size bytes from the global binding, or nil on failure.
func Allocate(size int) []byte {
	return AllocateExternal(size, nil)
}

// AllocateExternal obtains size bytes from the given external allocator,
// falling back to the global binding when allocator is nil. Only traffic
// through the global binding moves the byte counters, and only on success.
func AllocateExternal(size int, allocator *ExternalAllocator) []byte {
	if allocator != nil {
		buf := allocator.Malloc(size, allocator.Opaque)
		debugf("AllocateExternal custom bytes=%d ok=%t", size, buf != nil)
		return buf
	}
	buf := theMSys.allocator.Allocate(size)
	if buf == nil {
		return nil
	}
	theMSys.statsAlloc.Add(uint64(len(buf)))
	debugf("AllocateExternal bytes=%d", size)
	return buf
}

// Reallocate resizes buf through the global binding, preserving the common
// prefix. Returns nil on failure, leaving buf valid.
func Reallocate(buf []byte, size int) []byte {
	newBuf := theMSys.allocator.Reallocate(buf, size)
	if newBuf == nil {
		return nil
	}
	theMSys.statsFree.Add(uint64(len(buf)))
	theMSys.statsAlloc.Add(uint64(len(newBuf)))
	debugf("Reallocate bytes=%d", size)
	return newBuf
}

// Free returns buf to the global binding.
func Free(buf []byte) {
	debugf("Free bytes=%d", len(buf))
	theMSys.statsFree.Add(uint64(len(buf)))
	theMSys.allocator.Free(buf)
}
