package membuf

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/fagongzi/membuf/mem"
	"go.uber.org/zap"
)

var (
	// ErrCapacityOverflow returned by the Try variants when the byte size
	// of the requested capacity cannot be represented.
	ErrCapacityOverflow = errors.New("membuf: capacity overflow")
	// ErrOutOfMemory returned by the Try variants when the host allocator
	// cannot satisfy a well formed request.
	ErrOutOfMemory = errors.New("membuf: out of memory")
)

// emptyBase backs the empty sentinel. Its address never comes from a
// host allocator and is never dereferenced.
var emptyBase byte

// Empty returns the sentinel address shared by every capacity-0 buffer
// and by every buffer of a zero-sized element type. It is non-nil, never
// a real allocation, and must never be dereferenced.
func Empty() unsafe.Pointer {
	return unsafe.Pointer(&emptyBase)
}

// RawAllocate allocates a region with room for capacity elements of T,
// which must be > 0. Zero-sized element types never reach the host
// allocator and get the Empty sentinel regardless of capacity.
//
// Capacity overflow and allocation failure both panic, they are never
// returned as errors. There is no safe way for a container to continue
// after either.
func RawAllocate[T any](a mem.Allocator, capacity int) unsafe.Pointer {
	if sizeOf[T]() == 0 {
		return Empty()
	}

	size := allocationSize[T](capacity)
	ptr := a.Allocate(size, alignOf[T]())
	if ptr == nil {
		oom(size)
	}
	return ptr
}

// RawReallocate resizes a region created by RawAllocate or a previous
// RawReallocate from oldCapacity to newCapacity elements, both > 0. The
// returned pointer may differ from ptr; the old pointer must be treated
// as invalid as soon as the call returns. Same fault policy as
// RawAllocate.
func RawReallocate[T any](a mem.Allocator, ptr unsafe.Pointer, oldCapacity, newCapacity int) unsafe.Pointer {
	if sizeOf[T]() == 0 {
		return Empty()
	}

	// The old region already exists at this size, overflow is impossible
	// there.
	oldSize := uncheckedAllocationSize[T](oldCapacity)
	newSize := allocationSize[T](newCapacity)

	newPtr := a.Reallocate(ptr, oldSize, newSize, alignOf[T]())
	if newPtr == nil {
		oom(newSize)
	}
	return newPtr
}

// RawDeallocate returns a region created by RawAllocate or RawReallocate
// to the host allocator. capacity must be > 0 and match the region's
// current capacity. Zero-sized element types are a no-op.
func RawDeallocate[T any](a mem.Allocator, ptr unsafe.Pointer, capacity int) {
	if sizeOf[T]() == 0 {
		return
	}
	a.Free(ptr, uncheckedAllocationSize[T](capacity), alignOf[T]())
}

// allocationSize returns the byte size of a region holding capacity
// elements of T, panicking when the multiplication cannot be
// represented.
func allocationSize[T any](capacity int) uintptr {
	size, ok := checkedAllocationSize[T](capacity)
	if !ok {
		panic(fmt.Sprintf("membuf: capacity overflow, capacity %d, element size %d",
			capacity, sizeOf[T]()))
	}
	return size
}

func checkedAllocationSize[T any](capacity int) (uintptr, bool) {
	size := sizeOf[T]()
	if uintptr(capacity) > ^uintptr(0)/size {
		return 0, false
	}
	return size * uintptr(capacity), true
}

func uncheckedAllocationSize[T any](capacity int) uintptr {
	return sizeOf[T]() * uintptr(capacity)
}

func sizeOf[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

func alignOf[T any]() uintptr {
	var zero T
	return unsafe.Alignof(zero)
}

func oom(size uintptr) {
	logger.Error("allocation failed",
		zap.Uint64("size", uint64(size)))
	panic(fmt.Sprintf("membuf: out of memory, requested %d bytes", size))
}
