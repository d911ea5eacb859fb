package slab

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// slotSlab is the raw, mmap'd storage backing one block: a contiguous run of
// Config.BlockSize slots, each Config.SlotSize bytes, aligned to
// Config.BlockSize bytes. BlockSize does double duty as both the slot count
// and the byte alignment, the same overload aligned_alloc(size, alignment)
// takes in C.
type slotSlab struct {
	mmapBase  uintptr // address actually returned by mmap, for Munmap
	mmapLen   int     // length actually passed to mmap, for Munmap
	slotsBase uintptr // aligned base of the slot array, >= mmapBase
	slotSize  int
}

// newSlotSlab allocates and aligns one block's backing storage. Allocation
// failure is returned, never panicked: acquire and construction must fail
// gracefully with a sentinel, not crash the process.
func newSlotSlab(cfg Config) (slotSlab, error) {
	alignment := cfg.BlockSize
	want := cfg.SlotSize * cfg.BlockSize

	// Over-allocate by (alignment-1) bytes so we can always carve an
	// aligned region out of whatever address mmap hands back. When
	// alignment <= the platform page size (the common case; the default
	// BlockSize of 256 always qualifies) mmap's own page alignment
	// already satisfies the request and this is a no-op in practice,
	// because a page-aligned address is automatically a multiple of any
	// smaller power-of-two alignment.
	total := want + alignment - 1

	data, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return slotSlab{}, fmt.Errorf("slab: cannot mmap %d bytes for %d slots sized %d: %w", total, cfg.BlockSize, cfg.SlotSize, err)
	}

	raw := uintptr(unsafe.Pointer(&data[0]))
	aligned := alignUp(raw, uintptr(alignment))

	return slotSlab{
		mmapBase:  raw,
		mmapLen:   total,
		slotsBase: aligned,
		slotSize:  cfg.SlotSize,
	}, nil
}

func alignUp(addr uintptr, alignment uintptr) uintptr {
	return (addr + alignment - 1) &^ (alignment - 1)
}

// slotAddr returns the address of slot i within this block.
func (s *slotSlab) slotAddr(i int) uintptr {
	return s.slotsBase + uintptr(i*s.slotSize)
}

// free unmaps the storage backing this block.
func (s *slotSlab) free() error {
	b := pointerToBytes(s.mmapBase, s.mmapLen)
	return unix.Munmap(b)
}

func pointerToBytes(ptr uintptr, size int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size)
}
