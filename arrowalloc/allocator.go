// Package arrowalloc adapts the memory runtime to Apache Arrow's
// allocator interface, so Arrow buffers built by host-side glue share the
// runtime's global binding and show up in its leak accounting.
package arrowalloc

import (
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/numforge/nrt-go/nrt"
)

// Allocator implements arrow/memory.Allocator over the runtime's global
// allocator binding. All traffic moves the runtime's byte counters.
type Allocator struct{}

// NewAllocator returns an Arrow allocator bound to the runtime.
func NewAllocator() *Allocator { return &Allocator{} }

func (*Allocator) Allocate(size int) []byte {
	return nrt.Allocate(size)
}

func (*Allocator) Reallocate(size int, b []byte) []byte {
	return nrt.Reallocate(b, size)
}

func (*Allocator) Free(b []byte) {
	nrt.Free(b)
}

var _ memory.Allocator = (*Allocator)(nil)
