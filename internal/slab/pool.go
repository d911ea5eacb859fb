package slab

// Pool is the single-threaded slab engine. It has no internal
// synchronization and requires external serialization.
type Pool struct {
	cfg Config

	head   *Block
	cursor int // bump cursor into head block; next unused slot index

	freeHead uintptr // 0 means the free list is empty

	numBlocks int

	allocs int
	frees  int
	reused int
}

// NewPool allocates a pool with one block pre-allocated, an empty free
// list, and the bump cursor at 0.
func NewPool(cfg Config) (*Pool, error) {
	head, err := newBlock(cfg, nil)
	if err != nil {
		return nil, err
	}
	return &Pool{
		cfg:       cfg,
		head:      head,
		numBlocks: 1,
	}, nil
}

// Get tries the free list first, then the bump cursor, growing the block
// chain on overflow. Returns ok=false only on allocation failure, leaving no
// partial state visible: the cursor and free list are only mutated after a
// new block is confirmed installed.
func (p *Pool) Get() (uintptr, bool) {
	if p.freeHead != 0 {
		addr := p.freeHead
		p.freeHead = readNextAddr(addr)
		p.allocs++
		p.reused++
		return addr, true
	}

	if p.cursor == p.cfg.BlockSize {
		next, err := newBlock(p.cfg, p.head)
		if err != nil {
			return 0, false
		}
		p.head = next
		p.cursor = 0
		p.numBlocks++
	}

	addr := p.head.slotAddr(p.cursor)
	p.cursor++
	p.allocs++
	return addr, true
}

// Release pushes addr onto the free list. Callers are responsible for addr
// having come from this pool and not currently being released; double
// release is undefined behaviour, not checked here.
func (p *Pool) Release(addr uintptr) {
	writeNextAddr(addr, p.freeHead)
	p.freeHead = addr
	p.frees++
}

// Destroy releases every block in the chain. After Destroy returns, no
// memory from the pool is reachable.
func (p *Pool) Destroy() error {
	for b := p.head; b != nil; {
		next := b.next
		if err := b.free(); err != nil {
			return err
		}
		b = next
	}
	p.head = nil
	p.numBlocks = 0
	return nil
}

func (p *Pool) NumBlocks() int { return p.numBlocks }
func (p *Pool) BlockSize() int { return p.cfg.BlockSize }
func (p *Pool) Allocs() int    { return p.allocs }
func (p *Pool) Frees() int     { return p.frees }
func (p *Pool) Reused() int    { return p.reused }

// Remaining is the head block's unclaimed slot count, at or above the bump
// cursor.
func (p *Pool) Remaining() int { return p.cfg.BlockSize - p.cursor }

// FreeListLen walks the free list and counts its nodes. Test/diagnostic
// use only.
func (p *Pool) FreeListLen() int {
	n := 0
	for addr := p.freeHead; addr != 0; addr = readNextAddr(addr) {
		n++
	}
	return n
}
