// Package slabpool is a typed slab allocator: a fixed-size-slot pool for a
// single Go type, backed by a chain of mmap'd blocks and an intrusive
// free list.
//
// Pool[T] is single-threaded and requires external serialization. Get an
// object, use it, and Release it back when you're done e.g.
//
//	pool := slabpool.New[Node]()
//	n := pool.Get()
//	n.Value = 7
//	pool.Release(n)
//	// n must never be used again
//
// ConcurrentPool[T] exposes the same surface but is safe for unlimited
// concurrent callers of Get and Release on the same pool e.g.
//
//	pool := slabpool.NewConcurrent[Node]()
//	n := pool.Get()
//	pool.Release(n)
//
// Neither variant constructs or finalizes T: Get hands back uninitialized
// storage, and Release does not zero it. Callers who store values that need
// finalizing must do so themselves before releasing.
//
// T must not contain anything the Go garbage collector would need to scan
// (pointers, slices, maps, strings, interfaces, channels, funcs). Both
// variants allocate slot storage via mmap outside the Go heap, so a T
// containing a live pointer would leave it unscanned; New/NewSize/
// NewConcurrent/NewConcurrentSize panic if T fails this check.
//
// Neither variant shrinks: blocks are kept for the pool's lifetime so that
// a slot address handed out once remains valid until Destroy. There is no
// per-slot reference counting, no thread-local caching, and no size-class
// multiplexing -- one Pool or ConcurrentPool manages exactly one element
// type and one slot size.
package slabpool
