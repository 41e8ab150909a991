package arena

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"unsafe"

	"github.com/pavanmanishd/protoarena/internal/logging"
)

func TestNewArena(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		expected  int
	}{
		{"default chunk size", 0, DefaultChunkSize},
		{"negative chunk size", -1, DefaultChunkSize},
		{"custom chunk size", 8192, 8192},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArena(tt.chunkSize)
			if a.chunkSize != tt.expected {
				t.Errorf("NewArena(%d) chunk size = %d, want %d", tt.chunkSize, a.chunkSize, tt.expected)
			}
			if len(a.chunks) != 1 {
				t.Errorf("NewArena(%d) chunks = %d, want 1", tt.chunkSize, len(a.chunks))
			}
		})
	}
}

func TestNewUsesProcessDefault(t *testing.T) {
	defer SetDefaultChunkSize(0)

	SetDefaultChunkSize(4096)
	if got := New().ChunkSize(); got != 4096 {
		t.Errorf("New() chunk size = %d, want 4096", got)
	}

	SetDefaultChunkSize(-5)
	if got := New().ChunkSize(); got != DefaultChunkSize {
		t.Errorf("New() after reset chunk size = %d, want %d", got, DefaultChunkSize)
	}
}

func TestArenaMalloc(t *testing.T) {
	a := NewArena(1024)

	b1 := a.Malloc(100)
	if len(b1) != 100 {
		t.Errorf("Malloc(100) length = %d, want 100", len(b1))
	}

	if b := a.Malloc(0); b != nil {
		t.Errorf("Malloc(0) = %v, want nil", b)
	}
	if b := a.Malloc(-1); b != nil {
		t.Errorf("Malloc(-1) = %v, want nil", b)
	}

	// Larger than the chunk size forces a dedicated chunk.
	b4 := a.Malloc(2000)
	if len(b4) != 2000 {
		t.Errorf("Malloc(2000) length = %d, want 2000", len(b4))
	}
	if a.NumChunks() != 2 {
		t.Errorf("NumChunks after large allocation = %d, want 2", a.NumChunks())
	}
}

func TestMallocAlignment(t *testing.T) {
	a := NewArena(1024)

	sizes := []int{1, 2, 3, 4, 5, 7, 8, 9, 15, 16, 17}
	for _, size := range sizes {
		buf := a.Malloc(size)
		if len(buf) != size {
			t.Errorf("Malloc(%d) length = %d", size, len(buf))
		}
		addr := uintptr(unsafe.Pointer(&buf[0]))
		if addr%MallocAlign != 0 {
			t.Errorf("Malloc(%d) not aligned to %d: %x", size, MallocAlign, addr)
		}
	}
}

func TestMallocDoesNotOverlap(t *testing.T) {
	a := NewArena(256)

	var blocks [][]byte
	for i := 0; i < 64; i++ {
		b := a.Malloc(24)
		for j := range b {
			b[j] = byte(i)
		}
		blocks = append(blocks, b)
	}

	for i, b := range blocks {
		for j, v := range b {
			if v != byte(i) {
				t.Fatalf("block %d byte %d = %d, want %d", i, j, v, i)
			}
		}
	}
}

func TestAllocRejectsOverAlignment(t *testing.T) {
	a := NewArena(1024)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for alignment 16")
		}
	}()
	a.Alloc(Layout{Size: 16, Align: 16})
}

func TestLayoutOf(t *testing.T) {
	tests := []struct {
		name   string
		got    Layout
		expect Layout
	}{
		{"uint8", LayoutOf[uint8](), Layout{Size: 1, Align: 1}},
		{"int32", LayoutOf[int32](), Layout{Size: 4, Align: 4}},
		{"float64", LayoutOf[float64](), Layout{Size: 8, Align: 8}},
		{"pair", LayoutOf[struct{ A, B uint32 }](), Layout{Size: 8, Align: 4}},
	}
	for _, tt := range tests {
		if tt.got != tt.expect {
			t.Errorf("LayoutOf[%s]() = %+v, want %+v", tt.name, tt.got, tt.expect)
		}
	}
}

func TestResizeInPlace(t *testing.T) {
	a := NewArena(1024)

	b := a.Malloc(16)
	copy(b, "0123456789abcdef")
	grown := a.Resize(b, Layout{Size: 16, Align: 8}, Layout{Size: 64, Align: 8})

	if len(grown) != 64 {
		t.Fatalf("Resize length = %d, want 64", len(grown))
	}
	if &grown[0] != &b[0] {
		t.Error("Resize of the last block should extend it in place")
	}
	if string(grown[:16]) != "0123456789abcdef" {
		t.Errorf("Resize lost contents: %q", grown[:16])
	}
	if a.SizeInUse() != 64 {
		t.Errorf("SizeInUse after in-place grow = %d, want 64", a.SizeInUse())
	}
}

func TestResizeCopies(t *testing.T) {
	a := NewArena(1024)

	b := a.Malloc(8)
	copy(b, "abcdefgh")
	a.Malloc(8) // b is no longer the last block

	grown := a.Resize(b, Layout{Size: 8, Align: 8}, Layout{Size: 32, Align: 8})
	if len(grown) != 32 {
		t.Fatalf("Resize length = %d, want 32", len(grown))
	}
	if &grown[0] == &b[0] {
		t.Error("Resize of an inner block must not reuse it when growing")
	}
	if string(grown[:8]) != "abcdefgh" {
		t.Errorf("Resize lost contents: %q", grown[:8])
	}
}

func TestResizeShrink(t *testing.T) {
	a := NewArena(1024)

	b := a.Malloc(32)
	a.Malloc(8)
	small := a.Resize(b, Layout{Size: 32, Align: 8}, Layout{Size: 4, Align: 8})
	if len(small) != 4 || cap(small) != 4 {
		t.Errorf("Resize shrink len=%d cap=%d, want 4/4", len(small), cap(small))
	}
	if &small[0] != &b[0] {
		t.Error("shrinking an inner block should keep its address")
	}
}

func TestResizeAcrossChunks(t *testing.T) {
	a := NewArena(64)

	b := a.Malloc(48)
	for i := range b {
		b[i] = byte(i)
	}
	grown := a.Resize(b, Layout{Size: 48, Align: 8}, Layout{Size: 200, Align: 8})
	if len(grown) != 200 {
		t.Fatalf("Resize length = %d, want 200", len(grown))
	}
	for i := 0; i < 48; i++ {
		if grown[i] != byte(i) {
			t.Fatalf("byte %d = %d after cross-chunk Resize", i, grown[i])
		}
	}
	if a.NumChunks() != 2 {
		t.Errorf("NumChunks = %d, want 2", a.NumChunks())
	}
}

func TestResizeFromEmpty(t *testing.T) {
	a := NewArena(1024)

	b := a.Resize(nil, Layout{}, Layout{Size: 10, Align: 1})
	if len(b) != 10 {
		t.Errorf("Resize(nil) length = %d, want 10", len(b))
	}
	if z := a.Resize(b, Layout{Size: 10, Align: 1}, Layout{}); z != nil {
		t.Errorf("Resize to zero = %v, want nil", z)
	}
}

func TestFreeIsIdempotent(t *testing.T) {
	a := NewArena(1024)
	a.Malloc(100)

	a.Free()
	a.Free()

	if !a.IsFreed() {
		t.Error("IsFreed() = false after Free")
	}
	if a.NumChunks() != 0 {
		t.Errorf("NumChunks after Free = %d, want 0", a.NumChunks())
	}
	if a.SizeInUse() != 0 {
		t.Errorf("SizeInUse after Free = %d, want 0", a.SizeInUse())
	}
}

func TestUseAfterFree(t *testing.T) {
	ops := []struct {
		name string
		fn   func(a *Arena)
	}{
		{"Malloc", func(a *Arena) { a.Malloc(10) }},
		{"MallocZero", func(a *Arena) { a.Malloc(0) }},
		{"Alloc", func(a *Arena) { a.Alloc(Layout{Size: 8, Align: 8}) }},
		{"Resize", func(a *Arena) { a.Resize(nil, Layout{}, Layout{Size: 8, Align: 8}) }},
		{"CopyString", func(a *Arena) { a.CopyString("x") }},
		{"CopyBytes", func(a *Arena) { a.CopyBytes(nil) }},
		{"AllocSlice", func(a *Arena) { AllocSlice[int64](a, 4) }},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			a := NewArena(1024)
			a.Free()

			defer func() {
				if r := recover(); r == nil {
					t.Errorf("expected panic for %s after Free", op.name)
				}
			}()
			op.fn(a)
		})
	}
}

func TestAllocationFailurePanics(t *testing.T) {
	a := NewArena(1024)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for oversized allocation")
		}
		want := fmt.Sprintf("arena: allocation of %d bytes failed", MaxAllocSize+1)
		if r != want {
			t.Errorf("panic = %v, want %q", r, want)
		}
	}()
	a.Malloc(MaxAllocSize + 1)
}

func TestNewArenaFailurePanics(t *testing.T) {
	defer func() {
		if r := recover(); r != "arena: could not create a new arena" {
			t.Errorf("panic = %v", r)
		}
	}()
	NewArena(MaxAllocSize + 1)
}

func BenchmarkMalloc(b *testing.B) {
	sizes := []int{8, 64, 512, 4096}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			a := NewArena(DefaultChunkSize)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				a.Malloc(size)
			}
		})
	}
}

func BenchmarkResizeAppend(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		a := NewArena(DefaultChunkSize)
		var xs []int32
		for j := 0; j < 256; j++ {
			xs = ResizeSlice(a, xs, j+1)
			xs[j] = int32(j)
		}
		a.Free()
	}
}

func TestArenaFreeLogsMetricsOnlyWhenEnabled(t *testing.T) {
	t.Setenv(logging.EnvLogLevel, "")
	defer logging.Configure(logging.Config{Level: "disabled"})

	var buf bytes.Buffer
	logging.Configure(logging.Config{Level: "disabled", Output: &buf})
	NewArena(64).Free()
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}

	logging.Configure(logging.Config{Level: "trace", Output: &buf})
	a := NewArena(64)
	a.Malloc(8)
	a.Free()
	out := buf.String()
	if !strings.Contains(out, `"message":"arena freed"`) || !strings.Contains(out, `"size_in_use":8`) {
		t.Errorf("trace log = %s, want the freed arena's metrics", out)
	}
}
