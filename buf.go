package membuf

import (
	"fmt"
	"unsafe"

	"github.com/fagongzi/membuf/mem"
)

// Buf is a handle to a heap region with room for Capacity elements of T,
// tracking capacity only. Buf makes no promises about the contents of
// the region: elements are never initialized and nothing runs for them
// when the region is released, that is all up to the caller.
//
// Buf is freely copyable and has no automatic cleanup. Copies alias the
// same region, the caller is responsible for exactly one Deallocate
// across all of them, and Reallocate or Deallocate through one copy
// invalidates the pointer held by every other. Buf is the unsafe,
// flexible building block; UniqueBuf is the owning, safe variant.
type Buf[T any] struct {
	ptr   unsafe.Pointer
	cap   int
	alloc mem.Allocator
}

// New creates an empty Buf with capacity 0 and the Empty sentinel as its
// pointer. No host allocator interaction happens.
func New[T any](opts ...Option) Buf[T] {
	o := newOptions(opts...)
	return Buf[T]{ptr: Empty(), alloc: o.alloc}
}

// Allocate creates a Buf with space for capacity elements of T. Unlike
// the raw routines, capacity 0 is allowed and behaves like New.
func Allocate[T any](capacity int, opts ...Option) Buf[T] {
	if capacity < 0 {
		panic(fmt.Sprintf("membuf: invalid capacity %d", capacity))
	}

	o := newOptions(opts...)
	if capacity == 0 {
		return Buf[T]{ptr: Empty(), alloc: o.alloc}
	}
	return Buf[T]{
		ptr:   RawAllocate[T](o.alloc, capacity),
		cap:   capacity,
		alloc: o.alloc,
	}
}

// TryAllocate is the fallible variant of Allocate for the rare caller
// that must survive allocation failure. It reports capacity overflow and
// out of memory as ErrCapacityOverflow and ErrOutOfMemory instead of
// panicking.
func TryAllocate[T any](capacity int, opts ...Option) (Buf[T], error) {
	if capacity < 0 {
		return Buf[T]{}, fmt.Errorf("membuf: invalid capacity %d", capacity)
	}

	o := newOptions(opts...)
	if capacity == 0 || sizeOf[T]() == 0 {
		return Buf[T]{ptr: Empty(), cap: capacity, alloc: o.alloc}, nil
	}

	size, ok := checkedAllocationSize[T](capacity)
	if !ok {
		return Buf[T]{}, ErrCapacityOverflow
	}
	ptr := o.alloc.Allocate(size, alignOf[T]())
	if ptr == nil {
		return Buf[T]{}, ErrOutOfMemory
	}
	return Buf[T]{ptr: ptr, cap: capacity, alloc: o.alloc}, nil
}

// FromRaw adopts an externally obtained region. The caller attests that
// ptr and capacity describe a live allocation made through the same
// allocator with the size and alignment of T, or the Empty sentinel with
// capacity 0. Nothing is checked; a mismatched pointer or capacity is
// undefined behavior, not a detected error.
func FromRaw[T any](ptr unsafe.Pointer, capacity int, opts ...Option) Buf[T] {
	o := newOptions(opts...)
	return Buf[T]{ptr: ptr, cap: capacity, alloc: o.alloc}
}

// Capacity returns the number of elements the buffer has room for, not a
// byte count.
func (b Buf[T]) Capacity() int {
	return b.cap
}

// UnsafePointer returns the address of the start of the region. For
// capacity-0 buffers and zero-sized element types this is the Empty
// sentinel and must not be dereferenced.
func (b Buf[T]) UnsafePointer() unsafe.Pointer {
	return b.ptr
}

// Reallocate resizes the buffer to hold newCapacity elements, preserving
// the contents of the first min(old, new) element slots. The region may
// move; the previous pointer is invalid as soon as the call returns.
//
// Reallocate requires exclusive access to the region: the pointer held
// by every other copy of this Buf is silently invalidated, and a stale
// copy that later calls Deallocate is a double free. UniqueBuf.Reallocate
// has no such hazard.
func (b *Buf[T]) Reallocate(newCapacity int) {
	if newCapacity < 0 {
		panic(fmt.Sprintf("membuf: invalid capacity %d", newCapacity))
	}

	if b.cap == 0 || newCapacity == 0 {
		// Either no region exists yet or the region is going away. A
		// fresh handle covers both, and the raw reallocate routine never
		// sees a zero capacity.
		old := *b
		*b = Allocate[T](newCapacity, WithAllocator(b.allocator()))
		old.Deallocate()
		return
	}

	// Empty the handle before the host call so a capacity-overflow or
	// out-of-memory unwind never leaves it claiming a region whose
	// allocation failed.
	ptr, oldCap := b.ptr, b.cap
	b.ptr, b.cap = Empty(), 0

	b.ptr = RawReallocate[T](b.allocator(), ptr, oldCap, newCapacity)
	b.cap = newCapacity
}

// Deallocate returns the region to the host allocator. Only the memory
// is released, nothing runs for the elements inside it. Deallocate
// consumes the handle: the value must not be used again, and calling it
// through more than one copy is a double free. Capacity-0 buffers are a
// no-op.
func (b Buf[T]) Deallocate() {
	if b.cap == 0 {
		return
	}
	RawDeallocate[T](b.allocator(), b.ptr, b.cap)
}

// Slice returns the region viewed as a []T of length Capacity. The slice
// aliases the buffer and is invalidated by Reallocate and Deallocate.
func (b Buf[T]) Slice() []T {
	if b.cap == 0 {
		return nil
	}
	return unsafe.Slice((*T)(b.ptr), b.cap)
}

// Get reads the element slot at index i. The slot's contents are
// whatever was last stored there; freshly allocated slots are not
// initialized.
func (b Buf[T]) Get(i int) T {
	b.checkIndex(i)
	return *(*T)(unsafe.Add(b.ptr, uintptr(i)*sizeOf[T]()))
}

// Set writes v to the element slot at index i.
func (b Buf[T]) Set(i int, v T) {
	b.checkIndex(i)
	*(*T)(unsafe.Add(b.ptr, uintptr(i)*sizeOf[T]())) = v
}

func (b Buf[T]) checkIndex(i int) {
	if i < 0 || i >= b.cap {
		panic(fmt.Sprintf("membuf: index %d out of range, capacity %d", i, b.cap))
	}
}

func (b Buf[T]) allocator() mem.Allocator {
	if b.alloc == nil {
		// Zero-value Buf, treat as New with defaults.
		return mem.Default
	}
	return b.alloc
}
