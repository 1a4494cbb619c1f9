package mem

import "unsafe"

// Allocator is the host memory provider the buffer handles delegate to.
// Implementations hand out raw blocks identified by address, byte size
// and alignment; they never look inside a block and never retry a failed
// request.
type Allocator interface {
	// Allocate returns a block of size bytes whose address is a multiple
	// of align, or nil if the request cannot be satisfied. size must be
	// positive and align a power of two.
	Allocate(size, align uintptr) unsafe.Pointer
	// Reallocate resizes a block previously returned by Allocate or
	// Reallocate. The first min(oldSize, newSize) bytes keep their
	// contents. The returned block may live at a different address, and
	// the old pointer must not be used after the call. Returns nil on
	// failure, in which case the old block is left untouched.
	Reallocate(ptr unsafe.Pointer, oldSize, newSize, align uintptr) unsafe.Pointer
	// Free returns a block to the allocator. size and align must match
	// the values the block was allocated with.
	Free(ptr unsafe.Pointer, size, align uintptr)
}

// Default is the allocator used when no other is configured.
var Default Allocator = NewHeapAllocator()

func invalidRequest(size, align uintptr) bool {
	return size == 0 || align == 0 || align&(align-1) != 0
}
