package slab

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNode struct {
	value uint32
	left  unsafe.Pointer
	right unsafe.Pointer
}

func newTestPool(t *testing.T, blockSize int) *Pool {
	t.Helper()
	cfg, err := NewConfig(blockSize, int(unsafe.Sizeof(testNode{})))
	require.NoError(t, err)
	p, err := NewPool(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, p.Destroy()) })
	return p
}

func TestPoolStartsWithOneBlock(t *testing.T) {
	p := newTestPool(t, 256)
	assert.Equal(t, 1, p.NumBlocks())
	assert.Equal(t, 256, p.BlockSize())
	assert.Equal(t, 256, p.Remaining())
}

func TestPoolGrowsAtBoundary(t *testing.T) {
	p := newTestPool(t, 256)

	for i := 0; i < 256; i++ {
		addr, ok := p.Get()
		require.True(t, ok)
		require.NotZero(t, addr)
	}
	assert.Equal(t, 1, p.NumBlocks())

	addr, ok := p.Get()
	require.True(t, ok)
	assert.NotZero(t, addr)
	assert.Equal(t, 2, p.NumBlocks())
}

func TestPoolReleaseIsLIFO(t *testing.T) {
	p := newTestPool(t, 256)

	for i := 0; i < 256; i++ {
		_, ok := p.Get()
		require.True(t, ok)
	}

	n1, ok := p.Get()
	require.True(t, ok)
	n2, ok := p.Get()
	require.True(t, ok)
	n3, ok := p.Get()
	require.True(t, ok)
	_ = n3

	p.Release(n2)
	p.Release(n1)

	got1, ok := p.Get()
	require.True(t, ok)
	assert.Equal(t, n1, got1)

	got2, ok := p.Get()
	require.True(t, ok)
	assert.Equal(t, n2, got2)

	_, ok = p.Get()
	require.True(t, ok)
	assert.Equal(t, p.BlockSize()-4, p.Remaining())
}

func TestNewPoolRejectsNonPowerOfTwoBlockSize(t *testing.T) {
	_, err := NewConfig(100, int(unsafe.Sizeof(testNode{})))
	assert.ErrorIs(t, err, ErrBlockSizeNotPowerOfTwo)

	cfg, err := NewConfig(256, int(unsafe.Sizeof(testNode{})))
	require.NoError(t, err)
	p, err := NewPool(cfg)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NoError(t, p.Destroy())
}

func TestPoolFreeListDisjointFromLiveSlots(t *testing.T) {
	p := newTestPool(t, 256)

	live := map[uintptr]struct{}{}
	for i := 0; i < 10; i++ {
		addr, ok := p.Get()
		require.True(t, ok)
		live[addr] = struct{}{}
	}

	released := []uintptr{}
	i := 0
	for addr := range live {
		if i >= 4 {
			break
		}
		released = append(released, addr)
		delete(live, addr)
		i++
	}
	for _, addr := range released {
		p.Release(addr)
	}

	assert.Equal(t, len(released), p.FreeListLen())
	for addr := range live {
		_, inFree := findInFreeList(p, addr)
		assert.False(t, inFree, "live slot must not appear in the free list")
	}
}

func findInFreeList(p *Pool, target uintptr) (uintptr, bool) {
	for addr := p.freeHead; addr != 0; addr = readNextAddr(addr) {
		if addr == target {
			return addr, true
		}
	}
	return 0, false
}

func TestPoolDestroyEmptiesChain(t *testing.T) {
	cfg, err := NewConfig(256, int(unsafe.Sizeof(testNode{})))
	require.NoError(t, err)
	p, err := NewPool(cfg)
	require.NoError(t, err)

	for i := 0; i < 300; i++ {
		_, ok := p.Get()
		require.True(t, ok)
	}
	require.Equal(t, 2, p.NumBlocks())

	require.NoError(t, p.Destroy())
	assert.Nil(t, p.head)
	assert.Equal(t, 0, p.NumBlocks())
}
