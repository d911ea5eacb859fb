package slabpool

import (
	"unsafe"

	"github.com/fmstephe/slabpool/internal/slab"
)

// Pool is a single-threaded slab allocator specialized to T. It has no
// internal synchronization; callers must serialize their own access.
type Pool[T any] struct {
	inner *slab.Pool
}

// New creates a pool with the default block size (slab.DefaultBlockSize
// slots per block). It returns nil if the first block cannot be allocated;
// use NewSize to see the allocation error itself.
func New[T any]() *Pool[T] {
	p, err := NewSize[T](slab.DefaultBlockSize, int(unsafe.Sizeof(*new(T))))
	if err != nil {
		return nil
	}
	return p
}

// NewSize creates a pool with blockSize slots per block, each reserving
// room for a T. blockSize must be a power of two; typeSize is the minimum
// number of bytes of storage each slot reserves, raised to the size of T
// when smaller.
//
// NewSize panics if T contains anything the garbage collector would need to
// track (see the package doc).
func NewSize[T any](blockSize, typeSize int) (*Pool[T], error) {
	containsNoPointers[T]()

	if size := int(unsafe.Sizeof(*new(T))); typeSize < size {
		typeSize = size
	}

	cfg, err := slab.NewConfig(blockSize, typeSize)
	if err != nil {
		return nil, err
	}

	inner, err := slab.NewPool(cfg)
	if err != nil {
		return nil, err
	}

	return &Pool[T]{inner: inner}, nil
}

// Get acquires a slot, preferring the free list and falling back to the
// block chain's bump cursor, growing it if necessary. It returns nil only
// on allocation failure; the slot's contents are uninitialized, never
// zeroed.
func (p *Pool[T]) Get() *T {
	addr, ok := p.inner.Get()
	if !ok {
		return nil
	}
	return (*T)(unsafe.Pointer(addr))
}

// Release returns t to the pool's free list. It returns false only if p or
// t is nil. Releasing a slot not obtained from this pool, or releasing the
// same slot twice, is undefined behaviour -- the caller's responsibility,
// not checked here.
func (p *Pool[T]) Release(t *T) bool {
	if p == nil || t == nil {
		return false
	}
	p.inner.Release(uintptr(unsafe.Pointer(t)))
	return true
}

// Destroy releases every block back to the operating system. The pool must
// not be used again afterward, and Destroy must not run concurrently with
// any other call on this pool.
func (p *Pool[T]) Destroy() error {
	if p == nil {
		return nil
	}
	return p.inner.Destroy()
}

// NumBlocks is the current length of the block chain.
func (p *Pool[T]) NumBlocks() int { return p.inner.NumBlocks() }

// BlockSize is the number of slots per block.
func (p *Pool[T]) BlockSize() int { return p.inner.BlockSize() }

// Remaining is the head block's unclaimed slot count, at or above the bump
// cursor.
func (p *Pool[T]) Remaining() int { return p.inner.Remaining() }

// FreeListLen walks the free list and counts its nodes. Intended for tests
// and diagnostics.
func (p *Pool[T]) FreeListLen() int { return p.inner.FreeListLen() }

// Stats reports this pool's allocation accounting.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Allocs: p.inner.Allocs(),
		Frees:  p.inner.Frees(),
		Reused: p.inner.Reused(),
		Live:   p.inner.Allocs() - p.inner.Frees(),
		Slabs:  p.inner.NumBlocks(),
	}
}
