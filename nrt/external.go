package nrt

// ExternalAllocator redirects a single allocation's backing store away
// from the global binding: a capability set of three functions plus an
// opaque context, bound at allocation time and recorded per handle. The
// runtime never owns it; callers keep it valid for as long as any handle
// references it.
type ExternalAllocator struct {
	Malloc  func(size int, opaque any) []byte
	Realloc func(buf []byte, size int, opaque any) []byte
	Free    func(buf []byte, opaque any)
	Opaque  any
}

// sampleToken is the opaque context the sample allocator expects back.
type sampleToken struct{ _ int }

var sampleOpaque = &sampleToken{}

// SampleExternalAllocator returns an allocator that services requests
// only when handed its own opaque token, rejecting any other context with
// a nil result. Conformance fixture: it verifies the runtime hands each
// allocation back to the allocator instance that produced it. Traffic is
// routed straight to the bound low-level allocator, bypassing the global
// byte counters like any external allocator.
func SampleExternalAllocator() *ExternalAllocator {
	return &ExternalAllocator{
		Malloc: func(size int, opaque any) []byte {
			if opaque != sampleOpaque {
				return nil
			}
			return theMSys.allocator.Allocate(size)
		},
		Realloc: func(buf []byte, size int, opaque any) []byte {
			if opaque != sampleOpaque {
				return nil
			}
			return theMSys.allocator.Reallocate(buf, size)
		},
		Free: func(buf []byte, _ any) {
			theMSys.allocator.Free(buf)
		},
		Opaque: sampleOpaque,
	}
}
