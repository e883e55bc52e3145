package mem

import (
	"math/bits"
	"sync"
)

const (
	minClassShift = 5  // smallest pooled block: 32 bytes
	maxClassShift = 17 // largest pooled block: 128 KiB
	numClasses    = maxClassShift - minClassShift + 1
)

// PoolAllocator recycles fixed-size blocks through per-class sync.Pools.
// Requests above the largest class fall through to the Go heap. Buffers
// returned by Allocate have the exact requested length but are backed by
// the full class-sized block, so Free can route them back by capacity.
type PoolAllocator struct {
	classes [numClasses]sync.Pool
}

// NewPoolAllocator creates a pool allocator with empty class pools.
func NewPoolAllocator() *PoolAllocator {
	p := &PoolAllocator{}
	for i := range p.classes {
		blockSize := 1 << (minClassShift + i)
		p.classes[i].New = func() any {
			return make([]byte, blockSize)
		}
	}
	return p
}

// classIndex returns the class for a request, or -1 when it is unpooled.
func classIndex(size int) int {
	if size <= 0 {
		return 0
	}
	shift := bits.Len(uint(size - 1))
	if shift < minClassShift {
		return 0
	}
	if shift > maxClassShift {
		return -1
	}
	return shift - minClassShift
}

func (p *PoolAllocator) Allocate(size int) []byte {
	if size < 0 {
		return nil
	}
	idx := classIndex(size)
	if idx < 0 {
		return make([]byte, size)
	}
	buf := p.classes[idx].Get().([]byte)
	return buf[:size]
}

func (p *PoolAllocator) Reallocate(buf []byte, size int) []byte {
	if size < 0 {
		return nil
	}
	if size <= cap(buf) {
		return buf[:size]
	}
	newBuf := p.Allocate(size)
	copy(newBuf, buf)
	p.Free(buf)
	return newBuf
}

func (p *PoolAllocator) Free(buf []byte) {
	if buf == nil {
		return
	}
	// Only full class-sized blocks go back into a pool.
	c := cap(buf)
	if c&(c-1) != 0 {
		return
	}
	shift := bits.Len(uint(c)) - 1
	if shift < minClassShift || shift > maxClassShift {
		return
	}
	p.classes[shift-minClassShift].Put(buf[:c])
}
