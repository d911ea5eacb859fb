package slabpool

import (
	"unsafe"

	"github.com/fmstephe/slabpool/internal/slab"
)

// ConcurrentPool is a slab allocator specialized to T, safe for unlimited
// concurrent callers of Get and Release. Its fast paths are lock-free; only
// growing the block chain briefly holds a spinlock.
type ConcurrentPool[T any] struct {
	inner *slab.ConcurrentPool
}

// NewConcurrent creates a concurrent pool with the default block size. It
// returns nil if the first block cannot be allocated.
func NewConcurrent[T any]() *ConcurrentPool[T] {
	p, err := NewConcurrentSize[T](slab.DefaultBlockSize, int(unsafe.Sizeof(*new(T))))
	if err != nil {
		return nil
	}
	return p
}

// NewConcurrentSize creates a concurrent pool with blockSize slots per
// block, each reserving room for a T. blockSize must be a power of two;
// typeSize is the minimum number of bytes each slot reserves, raised to the
// size of T when smaller. Panics if T contains anything the garbage
// collector would need to track (see the package doc).
func NewConcurrentSize[T any](blockSize, typeSize int) (*ConcurrentPool[T], error) {
	containsNoPointers[T]()

	if size := int(unsafe.Sizeof(*new(T))); typeSize < size {
		typeSize = size
	}

	cfg, err := slab.NewConfig(blockSize, typeSize)
	if err != nil {
		return nil, err
	}

	inner, err := slab.NewConcurrentPool(cfg)
	if err != nil {
		return nil, err
	}

	return &ConcurrentPool[T]{inner: inner}, nil
}

// Get acquires a slot. Every slot address is returned to at most one caller
// until it is released; concurrent acquires are not ordered with respect to
// one another beyond that. Returns nil only on allocation failure.
func (p *ConcurrentPool[T]) Get() *T {
	addr, ok := p.inner.Get()
	if !ok {
		return nil
	}
	return (*T)(unsafe.Pointer(addr))
}

// Release returns t to the pool's free list. A release happens-before any
// subsequent acquire that returns the same slot. Returns false only if p or
// t is nil.
func (p *ConcurrentPool[T]) Release(t *T) bool {
	if p == nil || t == nil {
		return false
	}
	p.inner.Release(uintptr(unsafe.Pointer(t)))
	return true
}

// Destroy releases every block back to the operating system. Must not run
// concurrently with any other operation on this pool.
func (p *ConcurrentPool[T]) Destroy() error {
	if p == nil {
		return nil
	}
	return p.inner.Destroy()
}

// NumBlocks is the current length of the block chain.
func (p *ConcurrentPool[T]) NumBlocks() int { return p.inner.NumBlocks() }

// BlockSize is the number of slots per block.
func (p *ConcurrentPool[T]) BlockSize() int { return p.inner.BlockSize() }

// Remaining is a point-in-time snapshot of the head block's unclaimed slot
// count; under concurrent use it is immediately stale.
func (p *ConcurrentPool[T]) Remaining() int { return p.inner.Remaining() }

// FreeListLen walks the free list and counts its nodes. Intended for tests
// and diagnostics; gives no consistent snapshot under concurrent mutation.
func (p *ConcurrentPool[T]) FreeListLen() int { return p.inner.FreeListLen() }

// Stats reports this pool's allocation accounting.
func (p *ConcurrentPool[T]) Stats() Stats {
	return Stats{
		Allocs: p.inner.Allocs(),
		Frees:  p.inner.Frees(),
		Reused: p.inner.Reused(),
		Live:   p.inner.Allocs() - p.inner.Frees(),
		Slabs:  p.inner.NumBlocks(),
	}
}
