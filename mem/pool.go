package mem

import (
	"sync"
	"unsafe"
)

const (
	// minPoolClass smallest pooled block size
	minPoolClass = 128
	// maxPoolClass largest pooled block size, 64kb
	maxPoolClass = 64 * 1024
	// poolAlign alignment every pooled block satisfies
	poolAlign = 16
)

// PoolAllocator reuses freed blocks grouped into power-of-two size
// classes. Requests are rounded up to their class, so a freed block can
// serve any later request in the same class. Requests larger than the
// biggest class, or with an alignment the pool cannot honor, pass
// through to the backing allocator untouched.
type PoolAllocator struct {
	sync.Mutex
	backing Allocator
	classes map[uintptr][]unsafe.Pointer
}

// NewPoolAllocator creates a PoolAllocator on top of backing. A nil
// backing uses Default.
func NewPoolAllocator(backing Allocator) *PoolAllocator {
	if backing == nil {
		backing = Default
	}
	return &PoolAllocator{
		backing: backing,
		classes: make(map[uintptr][]unsafe.Pointer),
	}
}

func (p *PoolAllocator) Allocate(size, align uintptr) unsafe.Pointer {
	if invalidRequest(size, align) {
		return nil
	}
	if !p.pooled(size, align) {
		return p.backing.Allocate(size, align)
	}

	cls := sizeClass(size)
	p.Lock()
	free := p.classes[cls]
	if n := len(free); n > 0 {
		ptr := free[n-1]
		p.classes[cls] = free[:n-1]
		p.Unlock()
		return ptr
	}
	p.Unlock()

	return p.backing.Allocate(cls, poolAlign)
}

func (p *PoolAllocator) Reallocate(ptr unsafe.Pointer, oldSize, newSize, align uintptr) unsafe.Pointer {
	if p.pooled(oldSize, align) && p.pooled(newSize, align) &&
		sizeClass(oldSize) == sizeClass(newSize) {
		// Same class, the block already has room.
		return ptr
	}

	newPtr := p.Allocate(newSize, align)
	if newPtr == nil {
		return nil
	}

	n := oldSize
	if newSize < n {
		n = newSize
	}
	copy(unsafe.Slice((*byte)(newPtr), n), unsafe.Slice((*byte)(ptr), n))

	p.Free(ptr, oldSize, align)
	return newPtr
}

func (p *PoolAllocator) Free(ptr unsafe.Pointer, size, align uintptr) {
	if !p.pooled(size, align) {
		p.backing.Free(ptr, size, align)
		return
	}

	cls := sizeClass(size)
	p.Lock()
	p.classes[cls] = append(p.classes[cls], ptr)
	p.Unlock()
}

// Drain releases every pooled block back to the backing allocator.
func (p *PoolAllocator) Drain() {
	p.Lock()
	classes := p.classes
	p.classes = make(map[uintptr][]unsafe.Pointer)
	p.Unlock()

	for cls, free := range classes {
		for _, ptr := range free {
			p.backing.Free(ptr, cls, poolAlign)
		}
	}
}

func (p *PoolAllocator) pooled(size, align uintptr) bool {
	return align <= poolAlign && size <= maxPoolClass
}

// sizeClass rounds size up to the next power of two, at least
// minPoolClass.
func sizeClass(size uintptr) uintptr {
	cls := uintptr(minPoolClass)
	for cls < size {
		cls <<= 1
	}
	return cls
}
