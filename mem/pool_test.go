package mem

import (
	"testing"

	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeClass(t *testing.T) {
	assert.Equal(t, uintptr(minPoolClass), sizeClass(1))
	assert.Equal(t, uintptr(minPoolClass), sizeClass(minPoolClass))
	assert.Equal(t, uintptr(256), sizeClass(minPoolClass+1))
	assert.Equal(t, uintptr(1024), sizeClass(1000))
	assert.Equal(t, uintptr(maxPoolClass), sizeClass(maxPoolClass))
}

func TestPoolReuse(t *testing.T) {
	defer leaktest.AfterTest(t)()

	checked := NewCheckedAllocator(NewHeapAllocator())
	p := NewPoolAllocator(checked)
	defer p.Drain()

	ptr := p.Allocate(200, 8)
	require.NotNil(t, ptr)
	require.Equal(t, int64(1), checked.Stats().Allocs)

	p.Free(ptr, 200, 8)
	// same class, served from the free list without touching the backing
	// allocator
	again := p.Allocate(256, 8)
	assert.Equal(t, ptr, again)
	assert.Equal(t, int64(1), checked.Stats().Allocs)

	p.Free(again, 256, 8)
}

func TestPoolSameClassReallocate(t *testing.T) {
	checked := NewCheckedAllocator(NewHeapAllocator())
	p := NewPoolAllocator(checked)
	defer p.Drain()

	ptr := p.Allocate(130, 8)
	require.NotNil(t, ptr)

	// 130 and 250 both land in the 256 class, the block stays put
	moved := p.Reallocate(ptr, 130, 250, 8)
	assert.Equal(t, ptr, moved)
	assert.Equal(t, int64(1), checked.Stats().Allocs)

	p.Free(moved, 250, 8)
}

func TestPoolOversizePassthrough(t *testing.T) {
	checked := NewCheckedAllocator(NewHeapAllocator())
	p := NewPoolAllocator(checked)

	ptr := p.Allocate(maxPoolClass+1, 8)
	require.NotNil(t, ptr)
	assert.Equal(t, int64(maxPoolClass+1), checked.Stats().InUse)

	p.Free(ptr, maxPoolClass+1, 8)
	checked.AssertEmpty()
}

func TestPoolLargeAlignPassthrough(t *testing.T) {
	checked := NewCheckedAllocator(NewHeapAllocator())
	p := NewPoolAllocator(checked)

	ptr := p.Allocate(64, 64)
	require.NotNil(t, ptr)
	assert.Equal(t, uintptr(0), uintptr(ptr)%64)

	p.Free(ptr, 64, 64)
	checked.AssertEmpty()
}

func TestPoolDrain(t *testing.T) {
	checked := NewCheckedAllocator(NewHeapAllocator())
	p := NewPoolAllocator(checked)

	ptr := p.Allocate(1024, 8)
	require.NotNil(t, ptr)
	p.Free(ptr, 1024, 8)

	// the block sits in the pool, still allocated from the backing's
	// point of view
	assert.Equal(t, int64(0), checked.Stats().Frees)

	p.Drain()
	checked.AssertEmpty()
}
