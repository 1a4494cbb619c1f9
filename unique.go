package membuf

import (
	"runtime"
	"unsafe"
)

// UniqueBuf is the owning variant of Buf. At most one UniqueBuf ever
// owns a given region, so its Reallocate is safe: there is no aliasing
// copy to invalidate. The region is released exactly once, either by an
// explicit Close or, if the owner never calls it, when the handle
// becomes unreachable.
//
// A UniqueBuf must not be copied. Pass the *UniqueBuf around, or give up
// ownership with Detach.
type UniqueBuf[T any] struct {
	inner  Buf[T]
	closed bool
}

// NewUnique creates an empty UniqueBuf with capacity 0.
func NewUnique[T any](opts ...Option) *UniqueBuf[T] {
	return newUnique(New[T](opts...))
}

// AllocateUnique creates a UniqueBuf with space for capacity elements of
// T. Capacity 0 is allowed.
func AllocateUnique[T any](capacity int, opts ...Option) *UniqueBuf[T] {
	return newUnique(Allocate[T](capacity, opts...))
}

// UniqueFromRaw adopts buf as an owned buffer. The caller attests that
// buf is the only live handle to its region; any copy kept around breaks
// the uniqueness this type is built on.
func UniqueFromRaw[T any](buf Buf[T]) *UniqueBuf[T] {
	return newUnique(buf)
}

func newUnique[T any](buf Buf[T]) *UniqueBuf[T] {
	u := &UniqueBuf[T]{inner: buf}
	// Release the region on collection if the owner never calls Close.
	runtime.SetFinalizer(u, (*UniqueBuf[T]).Close)
	return u
}

// Capacity returns the number of elements the buffer has room for.
func (u *UniqueBuf[T]) Capacity() int {
	return u.inner.Capacity()
}

// UnsafePointer returns the address of the start of the region, see
// Buf.UnsafePointer.
func (u *UniqueBuf[T]) UnsafePointer() unsafe.Pointer {
	return u.inner.UnsafePointer()
}

// Reallocate resizes the buffer to hold capacity elements, preserving
// the contents of the first min(old, new) element slots. Safe, unlike
// Buf.Reallocate: no other handle can reference the region.
func (u *UniqueBuf[T]) Reallocate(capacity int) {
	u.panicIfClosed()
	u.inner.Reallocate(capacity)
}

// Slice returns the region viewed as a []T of length Capacity. The slice
// aliases the buffer and is invalidated by Reallocate and Close.
func (u *UniqueBuf[T]) Slice() []T {
	return u.inner.Slice()
}

// Get reads the element slot at index i.
func (u *UniqueBuf[T]) Get(i int) T {
	return u.inner.Get(i)
}

// Set writes v to the element slot at index i.
func (u *UniqueBuf[T]) Set(i int, v T) {
	u.inner.Set(i, v)
}

// Close releases the region. Later calls, and the collection-time
// cleanup, are no-ops: the region is freed exactly once. Capacity-0
// handles never touch the host allocator.
func (u *UniqueBuf[T]) Close() {
	if u.closed {
		return
	}
	u.closed = true
	runtime.SetFinalizer(u, nil)

	buf := u.inner
	u.inner = New[T](WithAllocator(buf.allocator()))
	buf.Deallocate()
}

// Detach gives up ownership, returning the inner Buf. The UniqueBuf is
// closed without releasing the region; the caller now carries the
// exactly-one-Deallocate responsibility.
func (u *UniqueBuf[T]) Detach() Buf[T] {
	u.panicIfClosed()
	u.closed = true
	runtime.SetFinalizer(u, nil)

	buf := u.inner
	u.inner = New[T](WithAllocator(buf.allocator()))
	return buf
}

func (u *UniqueBuf[T]) panicIfClosed() {
	if u.closed {
		panic("membuf: use of closed UniqueBuf")
	}
}
