package mem

import (
	"fmt"
	"sync"
	"unsafe"
)

// Stats aggregates allocation accounting for a CheckedAllocator.
type Stats struct {
	// Allocs count of blocks handed out, reallocations included
	Allocs int64
	// Frees count of blocks returned
	Frees int64
	// InUse bytes currently held by live blocks
	InUse int64
}

// CheckedAllocator wraps another Allocator and accounts for every block
// it hands out. It panics on a free of a pointer it does not know about,
// which catches double frees and frees of foreign memory. Intended for
// tests and debug builds.
type CheckedAllocator struct {
	mu      sync.Mutex
	backing Allocator
	live    map[unsafe.Pointer]uintptr
	stats   Stats
}

// NewCheckedAllocator creates a CheckedAllocator on top of backing. A
// nil backing uses Default.
func NewCheckedAllocator(backing Allocator) *CheckedAllocator {
	if backing == nil {
		backing = Default
	}
	return &CheckedAllocator{
		backing: backing,
		live:    make(map[unsafe.Pointer]uintptr),
	}
}

func (c *CheckedAllocator) Allocate(size, align uintptr) unsafe.Pointer {
	ptr := c.backing.Allocate(size, align)
	if ptr == nil {
		return nil
	}

	c.mu.Lock()
	c.live[ptr] = size
	c.stats.Allocs++
	c.stats.InUse += int64(size)
	c.mu.Unlock()
	return ptr
}

func (c *CheckedAllocator) Reallocate(ptr unsafe.Pointer, oldSize, newSize, align uintptr) unsafe.Pointer {
	c.mu.Lock()
	size, ok := c.live[ptr]
	c.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("mem: reallocate of untracked block %p", ptr))
	}
	if size != oldSize {
		panic(fmt.Sprintf("mem: reallocate of block %p with size %d, allocated with %d",
			ptr, oldSize, size))
	}

	newPtr := c.backing.Reallocate(ptr, oldSize, newSize, align)
	if newPtr == nil {
		return nil
	}

	c.mu.Lock()
	delete(c.live, ptr)
	c.live[newPtr] = newSize
	c.stats.Allocs++
	c.stats.Frees++
	c.stats.InUse += int64(newSize) - int64(oldSize)
	c.mu.Unlock()
	return newPtr
}

func (c *CheckedAllocator) Free(ptr unsafe.Pointer, size, align uintptr) {
	c.mu.Lock()
	allocated, ok := c.live[ptr]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("mem: free of untracked block %p, double free?", ptr))
	}
	if allocated != size {
		c.mu.Unlock()
		panic(fmt.Sprintf("mem: free of block %p with size %d, allocated with %d",
			ptr, size, allocated))
	}
	delete(c.live, ptr)
	c.stats.Frees++
	c.stats.InUse -= int64(size)
	c.mu.Unlock()

	c.backing.Free(ptr, size, align)
}

// Stats returns a snapshot of the accounting counters.
func (c *CheckedAllocator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// AssertEmpty panics unless every allocated block has been freed.
func (c *CheckedAllocator) AssertEmpty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.live); n > 0 {
		panic(fmt.Sprintf("mem: %d blocks leaked, %d bytes in use", n, c.stats.InUse))
	}
}
