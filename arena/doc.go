// Package arena implements the chunked bump allocator that owns every
// message, repeated field and map of the runtime.
//
// # Overview
//
// An arena hands out portions of large chunks on demand and releases all of
// them in one operation. Every block stays valid until the arena is freed;
// nothing is ever freed individually.
//
// # Basic Usage
//
//	a := arena.New()  // process default chunk size
//	defer a.Free()    // idempotent
//
//	buf := a.Malloc(1024)
//	s := a.CopyString(userInput) // caller memory is no longer referenced
//
//	// Pointer-free element storage, growable in place
//	xs := arena.AllocSlice[int32](a, 4)
//	xs = arena.ResizeSlice(a, xs, 16)
//
// # Memory Layout
//
// Chunks default to 64 KiB. Blocks are aligned to MallocAlign (8 bytes).
// Resize extends the most recent block of the current chunk in place and
// otherwise copies into a fresh block; the old block must not be used after
// a Resize in either case.
//
// # Failure
//
// Allocation failure is not recoverable: an impossible size or exhaustion
// panics, and so does any allocation after Free.
//
// # Thread Safety
//
// An Arena is not safe for concurrent mutation. Memory already handed out
// may be read from several goroutines.
//
// # Metrics and Monitoring
//
//	m := a.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)
package arena
