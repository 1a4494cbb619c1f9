//go:build linux
// +build linux

package mem

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapAllocator serves blocks from anonymous private mappings, keeping
// large buffers out of the Go heap entirely. Page alignment satisfies
// any smaller power-of-two align.
type mmapAllocator struct {
	sync.Mutex
	blocks map[unsafe.Pointer][]byte
}

// NewMmapAllocator creates an Allocator backed by anonymous mmap.
func NewMmapAllocator() Allocator {
	return &mmapAllocator{blocks: make(map[unsafe.Pointer][]byte)}
}

func (m *mmapAllocator) Allocate(size, align uintptr) unsafe.Pointer {
	if invalidRequest(size, align) || align > uintptr(unix.Getpagesize()) {
		return nil
	}

	data, err := unix.Mmap(-1, 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil
	}

	ptr := unsafe.Pointer(&data[0])
	m.Lock()
	m.blocks[ptr] = data
	m.Unlock()
	return ptr
}

func (m *mmapAllocator) Reallocate(ptr unsafe.Pointer, oldSize, newSize, align uintptr) unsafe.Pointer {
	newPtr := m.Allocate(newSize, align)
	if newPtr == nil {
		return nil
	}

	n := oldSize
	if newSize < n {
		n = newSize
	}
	copy(unsafe.Slice((*byte)(newPtr), n), unsafe.Slice((*byte)(ptr), n))

	m.Free(ptr, oldSize, align)
	return newPtr
}

func (m *mmapAllocator) Free(ptr unsafe.Pointer, size, align uintptr) {
	m.Lock()
	data, ok := m.blocks[ptr]
	delete(m.blocks, ptr)
	m.Unlock()
	if !ok {
		panic("mem: free of unknown mapping")
	}
	if err := unix.Munmap(data); err != nil {
		panic(err)
	}
}
