package slab

import "sync/atomic"

// ConcurrentPool is the lock-free slab engine safe for unbounded concurrent
// acquire/release. It only ever blocks a goroutine for the duration of one
// block allocation, via the growth arbiter spinlock -- the fast paths are
// lock-free: CAS loops for free-list pop/push, one atomic add for the bump
// cursor.
type ConcurrentPool struct {
	cfg Config

	head       atomic.Pointer[ConcurrentBlock]
	growthLock spinLock

	freeList concurrentFreeList

	numBlocks atomic.Int64

	allocs atomic.Int64
	frees  atomic.Int64
	reused atomic.Int64
}

// NewConcurrentPool allocates a pool with one block pre-installed.
func NewConcurrentPool(cfg Config) (*ConcurrentPool, error) {
	head, err := newConcurrentBlock(cfg)
	if err != nil {
		return nil, err
	}

	p := &ConcurrentPool{cfg: cfg}
	p.head.Store(head)
	p.numBlocks.Store(1)
	return p, nil
}

// Get tries the free-list fast path, then the bump-pointer path,
// arbitrating growth on overflow.
func (p *ConcurrentPool) Get() (uintptr, bool) {
	if addr, ok := p.freeList.pop(); ok {
		p.allocs.Add(1)
		p.reused.Add(1)
		return addr, true
	}

	for {
		head := p.head.Load()

		// fetch_add: claim a unique index in the current head block.
		idx := head.blockIndex.Add(1) - 1
		if idx < uint64(p.cfg.BlockSize) {
			p.allocs.Add(1)
			return head.slotAddr(int(idx)), true
		}

		// Head is exhausted. Exactly one goroutine must install the
		// next block; losers of the try-lock fall back to the block
		// path and retry against whatever head they find there.
		if !p.growthLock.TryLock() {
			continue
		}

		addr, ok, handled := p.growLocked(head)
		if handled {
			if ok {
				p.allocs.Add(1)
			}
			return addr, ok
		}
		// Another goroutine grew the pool between our failed
		// fetch_add and acquiring the lock; retry the bump path.
	}
}

// growLocked runs with growthLock held. handled=false means another
// goroutine already installed a new head between this one's failed
// fetch_add and its successful TryLock: the caller must release the lock (done via defer) and retry the
// bump path rather than allocate again.
func (p *ConcurrentPool) growLocked(observedHead *ConcurrentBlock) (addr uintptr, ok bool, handled bool) {
	defer p.growthLock.Unlock()

	current := p.head.Load()
	if current != observedHead || current.blockIndex.Load() < uint64(p.cfg.BlockSize) {
		return 0, false, false
	}

	next, err := newConcurrentBlock(p.cfg)
	if err != nil {
		// Allocation failure inside the critical section: release
		// the lock (via defer) and report failure. No partial state
		// is left: the new head was never published.
		return 0, false, true
	}

	// Pre-claim slot 0 for this goroutine before publishing the block,
	// so no other goroutine can observe an index-0-unclaimed head.
	next.blockIndex.Store(1)
	next.next.Store(current)

	p.head.Store(next)
	p.numBlocks.Add(1)

	return next.slotAddr(0), true, true
}

// Release pushes addr onto the lock-free free list.
func (p *ConcurrentPool) Release(addr uintptr) {
	p.freeList.push(addr)
	p.frees.Add(1)
}

// Destroy releases every block in the chain. Must not run concurrently with
// any other operation; the caller's responsibility.
func (p *ConcurrentPool) Destroy() error {
	for b := p.head.Load(); b != nil; {
		next := b.next.Load()
		if err := b.free(); err != nil {
			return err
		}
		b = next
	}
	p.head.Store(nil)
	p.numBlocks.Store(0)
	return nil
}

func (p *ConcurrentPool) NumBlocks() int { return int(p.numBlocks.Load()) }
func (p *ConcurrentPool) BlockSize() int { return p.cfg.BlockSize }
func (p *ConcurrentPool) Allocs() int    { return int(p.allocs.Load()) }
func (p *ConcurrentPool) Frees() int     { return int(p.frees.Load()) }
func (p *ConcurrentPool) Reused() int    { return int(p.reused.Load()) }

// FreeListLen walks the free list and counts its nodes. Test/diagnostic use
// only: it gives no consistent snapshot under concurrent mutation.
func (p *ConcurrentPool) FreeListLen() int { return p.freeList.len() }

// Remaining is an approximation of the head block's unclaimed slot count.
// Under concurrent use this is a point-in-time snapshot, not a guarantee.
func (p *ConcurrentPool) Remaining() int {
	head := p.head.Load()
	idx := head.blockIndex.Load()
	if idx > uint64(p.cfg.BlockSize) {
		idx = uint64(p.cfg.BlockSize)
	}
	return p.cfg.BlockSize - int(idx)
}
