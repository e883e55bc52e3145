package mem

// Allocator defines the raw allocation contract the runtime binds to.
// Reallocate must preserve the common prefix of the previous contents and
// may return the same buffer when it already has sufficient capacity.
type Allocator interface {
	Allocate(size int) []byte
	Reallocate(buf []byte, size int) []byte
	Free(buf []byte)
}

// GoAllocator delegates to the Go runtime and keeps Free as a no-op.
type GoAllocator struct{}

func (GoAllocator) Allocate(size int) []byte {
	if size < 0 {
		return nil
	}
	return make([]byte, size)
}

func (GoAllocator) Reallocate(buf []byte, size int) []byte {
	if size < 0 {
		return nil
	}
	if size <= cap(buf) {
		return buf[:size]
	}
	newBuf := make([]byte, size)
	copy(newBuf, buf)
	return newBuf
}

func (GoAllocator) Free([]byte) {}
