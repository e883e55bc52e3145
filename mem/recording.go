package mem

import "go.uber.org/atomic"

// RecordingAllocator wraps a base allocator and tracks byte traffic with
// atomic counters. With DeferFrees set it holds freed buffers instead of
// returning them to the base allocator, which lets tests inspect freed
// memory (e.g. destruction fill patterns) before it is recycled.
type RecordingAllocator struct {
	Base Allocator

	// DeferFrees keeps freed buffers in Freed instead of forwarding them.
	DeferFrees bool
	// FailNext makes the next Allocate/Reallocate calls return nil.
	FailNext atomic.Int64

	BytesAllocated atomic.Int64
	BytesFreed     atomic.Int64

	Freed [][]byte
}

// NewRecordingAllocator wraps base, defaulting to GoAllocator when nil.
func NewRecordingAllocator(base Allocator) *RecordingAllocator {
	if base == nil {
		base = GoAllocator{}
	}
	return &RecordingAllocator{Base: base}
}

func (a *RecordingAllocator) Allocate(size int) []byte {
	if a.FailNext.Load() > 0 {
		a.FailNext.Dec()
		return nil
	}
	buf := a.Base.Allocate(size)
	if buf != nil {
		a.BytesAllocated.Add(int64(len(buf)))
	}
	return buf
}

func (a *RecordingAllocator) Reallocate(buf []byte, size int) []byte {
	if a.FailNext.Load() > 0 {
		a.FailNext.Dec()
		return nil
	}
	newBuf := a.Base.Reallocate(buf, size)
	if newBuf != nil {
		a.BytesAllocated.Add(int64(len(newBuf)))
		a.BytesFreed.Add(int64(len(buf)))
	}
	return newBuf
}

func (a *RecordingAllocator) Free(buf []byte) {
	if buf == nil {
		return
	}
	a.BytesFreed.Add(int64(len(buf)))
	if a.DeferFrees {
		a.Freed = append(a.Freed, buf)
		return
	}
	a.Base.Free(buf)
}

// Flush forwards any deferred buffers to the base allocator.
func (a *RecordingAllocator) Flush() {
	for _, buf := range a.Freed {
		a.Base.Free(buf)
	}
	a.Freed = nil
}
