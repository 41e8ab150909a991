package arena

import (
	"unsafe"
)

// PointerFree lists element types that may live in arena chunks. Chunks are
// plain byte memory, so the garbage collector never scans them for pointers.
type PointerFree interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 |
		~int64 | ~uint64 | ~float32 | ~float64 | ~uintptr
}

// AllocSlice allocates a slice of n elements of type T inside the arena.
// The slice elements are not initialized (contain garbage data).
// Returns nil if n <= 0.
func AllocSlice[T PointerFree](a *Arena, n int) []T {
	if n <= 0 {
		return nil
	}
	layout := sliceLayout[T](n)
	b := a.Alloc(layout)
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}

// AllocSliceZeroed allocates a slice of n elements of type T with zeroed memory.
func AllocSliceZeroed[T PointerFree](a *Arena, n int) []T {
	s := AllocSlice[T](a, n)
	clear(s)
	return s
}

// ResizeSlice resizes s, previously allocated on a, to n elements. Elements
// past the old length are zeroed. s must not be used after the call.
func ResizeSlice[T PointerFree](a *Arena, s []T, n int) []T {
	if n <= 0 {
		return nil
	}
	old := len(s)
	var raw []byte
	if old > 0 {
		raw = unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), old*int(unsafe.Sizeof(s[0])))
	}
	b := a.Resize(raw, sliceLayout[T](old), sliceLayout[T](n))
	out := unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
	if n > old {
		clear(out[old:])
	}
	return out
}

// CopyBytes copies b into the arena and returns the arena-owned copy.
// The copy stays valid until the arena is freed.
func (a *Arena) CopyBytes(b []byte) []byte {
	if len(b) == 0 {
		a.panicIfFreed()
		return nil
	}
	out := a.Malloc(len(b))
	copy(out, b)
	return out[:len(b):len(b)]
}

// CopyString copies s into the arena and returns a string backed by arena memory.
func (a *Arena) CopyString(s string) string {
	if len(s) == 0 {
		a.panicIfFreed()
		return ""
	}
	out := a.Malloc(len(s))
	copy(out, s)
	return unsafe.String(&out[0], len(s))
}

func sliceLayout[T any](n int) Layout {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if n > 0 && size > MaxAllocSize/n {
		handleAllocError(Layout{Size: MaxAllocSize, Align: int(unsafe.Alignof(zero))})
	}
	return Layout{Size: size * n, Align: int(unsafe.Alignof(zero))}
}
