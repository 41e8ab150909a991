package arena

import (
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/pavanmanishd/protoarena/internal/logging"
)

// DefaultChunkSize is the default chunk size for new arenas (64 KiB).
const DefaultChunkSize = 1 << 16

// MallocAlign is the alignment of every block handed out by an arena.
const MallocAlign = 8

// MaxAllocSize bounds a single allocation. Larger requests are treated as
// allocator exhaustion.
const MaxAllocSize = math.MaxInt32

var defaultChunkSize atomic.Int64

func init() {
	defaultChunkSize.Store(DefaultChunkSize)
}

// SetDefaultChunkSize changes the chunk size used by New. Values <= 0
// restore DefaultChunkSize.
func SetDefaultChunkSize(n int) {
	if n <= 0 {
		n = DefaultChunkSize
	}
	defaultChunkSize.Store(int64(n))
}

// Layout describes the size and alignment of an allocation.
type Layout struct {
	Size  int
	Align int
}

// LayoutOf returns the layout of a single T.
func LayoutOf[T any]() Layout {
	var zero T
	return Layout{Size: int(unsafe.Sizeof(zero)), Align: int(unsafe.Alignof(zero))}
}

// chunk represents a single memory chunk within an arena.
type chunk struct {
	buf    []byte  // backing memory
	offset uintptr // allocation offset within buf
	last   uintptr // offset of the most recent allocation, for in-place Resize
}

// Arena is a chunked bump allocator. It is owned by exactly one handle and is
// not safe for concurrent mutation.
type Arena struct {
	chunks       []chunk
	chunkSize    int
	currentChunk *chunk
	freed        bool
}

// New obtains a fresh arena using the process default chunk size.
func New() *Arena {
	return NewArena(int(defaultChunkSize.Load()))
}

// NewArena creates a new Arena with the specified chunk size.
// If chunkSize <= 0, DefaultChunkSize is used.
func NewArena(chunkSize int) *Arena {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkSize > MaxAllocSize {
		arenaNewFailed(chunkSize)
	}
	a := &Arena{chunkSize: chunkSize}
	a.grow(chunkSize)
	l := logging.For("arena")
	l.Trace().Int("chunk_size", chunkSize).Msg("arena created")
	return a
}

// Malloc returns n bytes of uninitialized storage valid until Free.
// Returns nil if n <= 0.
func (a *Arena) Malloc(n int) []byte {
	if n <= 0 {
		a.panicIfFreed()
		return nil
	}
	if n > MaxAllocSize {
		handleAllocError(Layout{Size: n, Align: MallocAlign})
	}

	// Fast path: use cached current chunk
	c := a.currentChunk
	if c != nil {
		off := alignPtr(c.offset)
		if off+uintptr(n) <= uintptr(len(c.buf)) {
			c.last = off
			c.offset = off + uintptr(n)
			return unsafe.Slice((*byte)(unsafe.Pointer(&c.buf[off])), n)
		}
	}

	// Slow path: need new chunk
	return a.mallocSlow(n)
}

// mallocSlow handles allocation when fast path fails
func (a *Arena) mallocSlow(n int) []byte {
	a.panicIfFreed()
	a.grow(n)

	c := a.currentChunk
	off := alignPtr(c.offset)
	c.last = off
	c.offset = off + uintptr(n)
	return unsafe.Slice((*byte)(unsafe.Pointer(&c.buf[off])), n)
}

// Alloc returns storage for layout. The alignment must not exceed MallocAlign.
func (a *Arena) Alloc(layout Layout) []byte {
	if layout.Align > MallocAlign {
		panic(fmt.Sprintf("arena: alignment %d exceeds %d", layout.Align, MallocAlign))
	}
	return a.Malloc(layout.Size)
}

// Resize grows or shrinks a block previously returned by Malloc, Alloc or
// Resize on a. The old slice must not be used after the call, whatever the
// outcome; the returned slice holds the first min(from, to) bytes.
func (a *Arena) Resize(ptr []byte, from, to Layout) []byte {
	if to.Align > MallocAlign {
		panic(fmt.Sprintf("arena: alignment %d exceeds %d", to.Align, MallocAlign))
	}
	a.panicIfFreed()
	if to.Size <= 0 {
		return nil
	}
	if len(ptr) == 0 || from.Size <= 0 {
		return a.Malloc(to.Size)
	}
	if to.Size > MaxAllocSize {
		handleAllocError(to)
	}

	// The most recent allocation of the current chunk can move its end.
	if c := a.currentChunk; c != nil && a.isLast(c, ptr) {
		if c.last+uintptr(to.Size) <= uintptr(len(c.buf)) {
			c.offset = c.last + uintptr(to.Size)
			return unsafe.Slice((*byte)(unsafe.Pointer(&c.buf[c.last])), to.Size)
		}
	}

	keep := min(from.Size, len(ptr))
	if to.Size <= keep {
		return ptr[:to.Size:to.Size]
	}
	out := a.Malloc(to.Size)
	copy(out, ptr[:keep])
	return out
}

func (a *Arena) isLast(c *chunk, ptr []byte) bool {
	if c.offset == 0 || int(c.last) >= len(c.buf) {
		return false
	}
	return unsafe.Pointer(&c.buf[c.last]) == unsafe.Pointer(unsafe.SliceData(ptr))
}

// Free drops all chunks and makes the arena unusable. Calling Free more
// than once is a no-op. Any later allocation panics.
func (a *Arena) Free() {
	if a.freed {
		return
	}
	l := logging.For("arena")
	if e := l.Trace(); e.Enabled() {
		e.Object("metrics", a.Metrics()).Msg("arena freed")
	}
	a.chunks = nil
	a.currentChunk = nil
	a.freed = true
}

// IsFreed reports whether Free has been called.
func (a *Arena) IsFreed() bool {
	return a.freed
}

// grow appends a new chunk of at least min bytes.
func (a *Arena) grow(min int) {
	size := a.chunkSize
	if min > size {
		size = min
	}
	buf := make([]byte, size)
	a.chunks = append(a.chunks, chunk{buf: buf, offset: 0})
	a.currentChunk = &a.chunks[len(a.chunks)-1]
}

// panicIfFreed panics if the arena has been freed.
func (a *Arena) panicIfFreed() {
	if a.freed {
		panic("arena: use after Free()")
	}
}

// alignPtr aligns the offset up to MallocAlign.
func alignPtr(off uintptr) uintptr {
	const mask = MallocAlign - 1
	return (off + mask) & ^uintptr(mask)
}

func arenaNewFailed(size int) {
	l := logging.For("arena")
	l.Error().Int("chunk_size", size).Msg("could not create arena")
	panic("arena: could not create a new arena")
}

// handleAllocError is the single exhaustion path. It never returns.
func handleAllocError(layout Layout) {
	l := logging.For("arena")
	l.Error().Int("size", layout.Size).Int("align", layout.Align).Msg("allocation failed")
	panic(fmt.Sprintf("arena: allocation of %d bytes failed", layout.Size))
}
