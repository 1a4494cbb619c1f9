//go:build !linux
// +build !linux

package mem

// NewMmapAllocator falls back to the Go heap on platforms where the
// anonymous-mapping allocator is not wired up.
func NewMmapAllocator() Allocator {
	return NewHeapAllocator()
}
