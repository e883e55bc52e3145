package nrt

// APIVersion identifies the layout of APIFunctions. The table's field
// order and count are frozen; independently compiled callers bind to it
// once and must keep working across runtime releases.
const APIVersion = 1

// APIFunctions is the stable external API table: the minimal function set
// exposed to callers that never recompile against the runtime internals.
// Richer functionality (varsize buffers, aligned/safe variants, stats) is
// reached only through the full package interface.
type APIFunctions struct {
	// Alloc allocates size bytes of runtime-managed memory.
	Alloc func(size int) *MemInfo
	// AllocExternal allocates size bytes from the given allocator.
	AllocExternal func(size int, allocator *ExternalAllocator) *MemInfo
	// ManageMemory wraps externally allocated memory; dtor is its
	// deallocator.
	ManageMemory func(data []byte, dtor ManagedDtor) *MemInfo
	// Acquire takes a reference.
	Acquire func(mi *MemInfo)
	// Release drops a reference.
	Release func(mi *MemInfo)
	// Data returns the payload.
	Data func(mi *MemInfo) []byte
}

// managedDtor adapts a single-argument deallocator to the full destructor
// signature.
func managedDtor(data []byte, _ int, info DtorInfo) {
	if info.ElemDtor != nil {
		info.ElemDtor(data)
	}
}

// ManageMemory converts externally allocated memory into a handle whose
// destructor is the supplied single-argument deallocator. The recorded
// size is zero: the runtime did not produce the block and cannot size it.
func ManageMemory(data []byte, dtor ManagedDtor) *MemInfo {
	return New(data, 0, managedDtor, DtorInfo{Kind: DtorInfoDtor, ElemDtor: dtor})
}

var apiTable = APIFunctions{
	Alloc:         Alloc,
	AllocExternal: AllocExternal,
	ManageMemory:  ManageMemory,
	Acquire:       (*MemInfo).Acquire,
	Release:       (*MemInfo).Release,
	Data:          (*MemInfo).Data,
}

// GetAPI returns the shared stable API table.
func GetAPI() *APIFunctions {
	return &apiTable
}
