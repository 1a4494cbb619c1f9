package membuf

import (
	"runtime"
	"testing"
	"time"

	"github.com/fagongzi/membuf/mem"
	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueNew(t *testing.T) {
	buf := NewUnique[uint64]()
	defer buf.Close()
	assert.Equal(t, 0, buf.Capacity())
	assert.Equal(t, Empty(), buf.UnsafePointer())
}

func TestUniqueAllocate(t *testing.T) {
	buf := AllocateUnique[uint64](128)
	defer buf.Close()
	assert.Equal(t, 128, buf.Capacity())

	buf.Set(127, 11)
	assert.Equal(t, uint64(11), buf.Get(127))
}

func TestUniqueReallocate(t *testing.T) {
	buf := AllocateUnique[uint64](128)
	defer buf.Close()

	buf.Set(0, 8)
	buf.Set(100, 4)

	buf.Reallocate(1024)
	assert.Equal(t, 1024, buf.Capacity())
	assert.Equal(t, uint64(8), buf.Get(0))
	assert.Equal(t, uint64(4), buf.Get(100))
}

func TestUniqueCloseFreesExactlyOnce(t *testing.T) {
	checked := mem.NewCheckedAllocator(nil)
	buf := AllocateUnique[uint64](8, WithAllocator(checked))
	require.Equal(t, int64(8*8), checked.Stats().InUse)

	buf.Close()
	assert.Equal(t, int64(1), checked.Stats().Frees)
	checked.AssertEmpty()

	// later calls are no-ops
	buf.Close()
	assert.Equal(t, int64(1), checked.Stats().Frees)
}

func TestUniqueCloseEmpty(t *testing.T) {
	checked := mem.NewCheckedAllocator(nil)
	buf := NewUnique[uint64](WithAllocator(checked))
	buf.Close()
	assert.Equal(t, mem.Stats{}, checked.Stats())
}

func TestUniqueUseAfterClose(t *testing.T) {
	buf := AllocateUnique[uint64](8)
	buf.Close()
	assert.Panics(t, func() { buf.Reallocate(16) })
	assert.Panics(t, func() { buf.Get(0) })
}

func TestUniqueCollected(t *testing.T) {
	defer leaktest.AfterTest(t)()

	checked := mem.NewCheckedAllocator(nil)
	func() {
		buf := AllocateUnique[int64](64, WithAllocator(checked))
		buf.Set(0, 1)
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return checked.Stats().Frees == 1
	}, 5*time.Second, 10*time.Millisecond)
	checked.AssertEmpty()
}

func TestUniqueCollectedEmpty(t *testing.T) {
	defer leaktest.AfterTest(t)()

	checked := mem.NewCheckedAllocator(nil)
	func() {
		_ = NewUnique[int64](WithAllocator(checked))
	}()

	for i := 0; i < 3; i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, mem.Stats{}, checked.Stats())
}

func TestUniqueDetach(t *testing.T) {
	checked := mem.NewCheckedAllocator(nil)
	buf := AllocateUnique[uint64](8, WithAllocator(checked))
	buf.Set(2, 5)

	raw := buf.Detach()
	assert.Equal(t, 8, raw.Capacity())
	assert.Equal(t, uint64(5), raw.Get(2))

	// ownership moved to raw, Close must not free it
	buf.Close()
	assert.Equal(t, int64(0), checked.Stats().Frees)

	raw.Deallocate()
	checked.AssertEmpty()
}

func TestUniqueFromRaw(t *testing.T) {
	checked := mem.NewCheckedAllocator(nil)
	raw := Allocate[uint64](256, WithAllocator(checked))

	buf := UniqueFromRaw(raw)
	assert.Equal(t, 256, buf.Capacity())

	buf.Close()
	checked.AssertEmpty()
}
