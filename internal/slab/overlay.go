package slab

import "unsafe"

// A free slot's leading machine word is reinterpreted as the intrusive
// free-list's next-slot address; an allocated slot's same bytes belong to
// the caller's value. The two never coexist: the next field and the value
// field overlay the same storage, rather than sitting beside it in a
// wrapper struct.

func readNextAddr(addr uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(addr))
}

func writeNextAddr(addr, next uintptr) {
	*(*uintptr)(unsafe.Pointer(addr)) = next
}
