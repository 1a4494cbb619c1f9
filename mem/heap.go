package mem

import (
	"fmt"
	"sync"
	"unsafe"
)

// heapAllocator serves blocks from the Go heap. Blocks are handed out as
// raw addresses, so every live block keeps its backing slice in a
// registry to stop the GC from reclaiming memory that is only reachable
// through an unsafe.Pointer.
type heapAllocator struct {
	sync.Mutex
	blocks map[unsafe.Pointer][]byte
}

// NewHeapAllocator creates an Allocator backed by the Go heap.
func NewHeapAllocator() Allocator {
	return &heapAllocator{blocks: make(map[unsafe.Pointer][]byte)}
}

func (h *heapAllocator) Allocate(size, align uintptr) (ptr unsafe.Pointer) {
	if invalidRequest(size, align) {
		return nil
	}

	// make panics when the runtime cannot represent the slice; the
	// Allocator contract wants nil for a request that cannot be
	// satisfied.
	defer func() {
		if recover() != nil {
			ptr = nil
		}
	}()

	// Over-allocate and shift the base up to the next align boundary.
	raw := make([]byte, size+align)
	base := uintptr(unsafe.Pointer(&raw[0]))
	aligned := (base + align - 1) &^ (align - 1)
	ptr = unsafe.Add(unsafe.Pointer(&raw[0]), aligned-base)

	h.Lock()
	h.blocks[ptr] = raw
	h.Unlock()
	return ptr
}

func (h *heapAllocator) Reallocate(ptr unsafe.Pointer, oldSize, newSize, align uintptr) unsafe.Pointer {
	newPtr := h.Allocate(newSize, align)
	if newPtr == nil {
		return nil
	}

	n := oldSize
	if newSize < n {
		n = newSize
	}
	copy(unsafe.Slice((*byte)(newPtr), n), unsafe.Slice((*byte)(ptr), n))

	h.Free(ptr, oldSize, align)
	return newPtr
}

func (h *heapAllocator) Free(ptr unsafe.Pointer, size, align uintptr) {
	h.Lock()
	defer h.Unlock()
	if _, ok := h.blocks[ptr]; !ok {
		panic(fmt.Sprintf("mem: free of unknown block %p, size %d", ptr, size))
	}
	delete(h.blocks, ptr)
}
