package slab

import (
	"errors"
	"unsafe"

	"github.com/fmstephe/flib/fmath"
)

// ErrBlockSizeNotPowerOfTwo is returned when a requested block size (the
// number of slots per block) is not a power of two. block_size doubles as
// the byte alignment handed to the underlying aligned allocation (see
// mmap.go), so it must be.
var ErrBlockSizeNotPowerOfTwo = errors.New("slab: block size must be a power of two")

// DefaultBlockSize is the slot count used by New() when no sizing is given.
const DefaultBlockSize = 256

// PointerSize is the width of the machine word an intrusive free-list next
// pointer needs.
const PointerSize = unsafe.Sizeof(uintptr(0))

// Config describes the fixed sizing of one pool's blocks.
type Config struct {
	// BlockSize is the number of slots per block. Must be a power of two.
	BlockSize int
	// SlotSize is the number of bytes reserved per slot. It is always at
	// least PointerSize, because a free slot's leading bytes are
	// reinterpreted as the intrusive free-list's next pointer and must
	// overlay storage wide enough to hold one.
	SlotSize int
}

// NewConfig validates blockSize and widens typeSize, if necessary, to make
// room for the free-list's intrusive next pointer.
func NewConfig(blockSize, typeSize int) (Config, error) {
	if !isPowerOfTwo(blockSize) {
		return Config{}, ErrBlockSizeNotPowerOfTwo
	}
	if typeSize <= 0 {
		typeSize = 1
	}
	slotSize := typeSize
	if slotSize < int(PointerSize) {
		slotSize = int(PointerSize)
	}
	// Round up to a power of two, so every slot's offset from the aligned
	// block base is a multiple of the slot's own size.
	slotSize = int(fmath.NxtPowerOfTwo(int64(slotSize)))
	return Config{BlockSize: blockSize, SlotSize: slotSize}, nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
