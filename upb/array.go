package upb

import (
	"fmt"
	"iter"
	"slices"
	"unsafe"

	"github.com/pavanmanishd/protoarena/arena"
)

// Array is the storage of a repeated field. Fixed-width scalars are packed
// into arena memory; strings, bytes and messages are kept as Values whose
// payloads live in the arena.
type Array struct {
	_      noCopy
	arena  *arena.Arena
	typ    CType
	n      int
	packed []byte // capacity * typ.Size() bytes of arena memory
	vals   []Value
	frozen bool
	ex     Exclusive
}

// NewArray creates an empty array of element type t on a.
func NewArray(a *arena.Arena, t CType) *Array {
	if !t.IsElement() {
		panic(fmt.Sprintf("upb: %v is not an array element type", t))
	}
	return &Array{arena: a, typ: t}
}

// Arena, Type and Size report the owning arena, the element type and the
// number of elements.
func (a *Array) Arena() *arena.Arena { return a.arena }
func (a *Array) Type() CType         { return a.typ }
func (a *Array) Size() int           { return a.n }

// Exclusive returns the guard for mutators of a standalone array.
func (a *Array) Exclusive() *Exclusive { return &a.ex }

// Freeze makes every later mutation panic.
func (a *Array) Freeze()        { a.frozen = true }
func (a *Array) IsFrozen() bool { return a.frozen }

// Get returns element i. It panics if i is out of range.
func (a *Array) Get(i int) Value {
	a.checkIndex(i)
	return a.get(i)
}

// GetUnchecked returns element i. The caller guarantees 0 <= i < Size().
func (a *Array) GetUnchecked(i int) Value {
	return a.get(i)
}

// Set replaces element i. It panics if i is out of range.
func (a *Array) Set(i int, v Value) {
	a.checkMutable()
	a.checkIndex(i)
	a.checkValue(v)
	a.set(i, v)
}

// SetUnchecked replaces element i. The caller guarantees 0 <= i < Size().
func (a *Array) SetUnchecked(i int, v Value) {
	a.checkMutable()
	a.checkValue(v)
	a.set(i, v)
}

// Append adds v at the end.
func (a *Array) Append(v Value) {
	a.checkMutable()
	a.checkValue(v)
	if a.typ.Packable() {
		a.reserve(a.n + 1)
		a.n++
		a.set(a.n-1, v)
		return
	}
	a.vals = append(a.vals, v)
	a.n++
}

// Resize changes the length to n. New elements hold the zero value of the
// element type; capacity is kept when shrinking.
func (a *Array) Resize(n int) {
	a.checkMutable()
	if n < 0 {
		panic(fmt.Sprintf("upb: negative array size %d", n))
	}
	old := a.n
	if size := a.typ.Size(); size > 0 {
		a.reserve(n)
		if n > old {
			clear(a.packed[old*size : n*size])
		}
		a.n = n
		return
	}
	if n < old {
		clear(a.vals[n:old])
		a.vals = a.vals[:n]
	} else {
		zero := ZeroValue(a.typ)
		for i := old; i < n; i++ {
			a.vals = append(a.vals, zero)
		}
	}
	a.n = n
}

// Delete removes count elements starting at i.
func (a *Array) Delete(i, count int) {
	a.checkMutable()
	if i < 0 || count < 0 || i+count > a.n {
		panic(fmt.Sprintf("upb: delete [%d:%d] out of range [0:%d]", i, i+count, a.n))
	}
	if size := a.typ.Size(); size > 0 {
		copy(a.packed[i*size:], a.packed[(i+count)*size:a.n*size])
	} else {
		a.vals = slices.Delete(a.vals, i, i+count)
	}
	a.n -= count
}

// Clear empties the array without releasing its capacity.
func (a *Array) Clear() {
	a.Resize(0)
}

// CopyFrom replaces the contents of a with a deep copy of src. Strings and
// bytes are copied into a's arena and messages are cloned there.
func (a *Array) CopyFrom(src *Array) {
	a.checkMutable()
	if src == a {
		return
	}
	if src.n > 0 && src.typ != a.typ {
		panic(fmt.Sprintf("upb: copy of %v array into %v array", src.typ, a.typ))
	}
	if size := a.typ.Size(); size > 0 {
		a.reserve(src.n)
		copy(a.packed, src.packed[:src.n*size])
		a.n = src.n
		return
	}
	clear(a.vals)
	a.vals = a.vals[:0]
	for i := 0; i < src.n; i++ {
		a.vals = append(a.vals, copyValue(src.vals[i], a.arena))
	}
	a.n = src.n
}

// DeepClone returns a copy of a allocated on dst.
func (a *Array) DeepClone(dst *arena.Arena) *Array {
	out := &Array{arena: dst, typ: a.typ}
	out.CopyFrom(a)
	return out
}

// All iterates over the elements in order.
func (a *Array) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i := 0; i < a.n; i++ {
			if !yield(i, a.get(i)) {
				return
			}
		}
	}
}

func (a *Array) get(i int) Value {
	if size := a.typ.Size(); size > 0 {
		return fromRaw(a.typ, loadRaw(a.packed[i*size:], size))
	}
	return a.vals[i]
}

func (a *Array) set(i int, v Value) {
	if size := a.typ.Size(); size > 0 {
		storeRaw(a.packed[i*size:], size, v.raw())
		return
	}
	a.vals[i] = v
}

// reserve grows packed storage to hold at least n elements.
func (a *Array) reserve(n int) {
	size := a.typ.Size()
	have := len(a.packed) / size
	if n <= have {
		return
	}
	want := max(n, 2*have, 4)
	a.packed = a.arena.Resize(a.packed,
		arena.Layout{Size: have * size, Align: arena.MallocAlign},
		arena.Layout{Size: want * size, Align: arena.MallocAlign})
}

func (a *Array) checkIndex(i int) {
	if i < 0 || i >= a.n {
		panic(fmt.Sprintf("upb: index %d out of range [0:%d]", i, a.n))
	}
}

func (a *Array) checkMutable() {
	if a.frozen {
		panic("upb: mutation of a frozen array")
	}
}

func (a *Array) checkValue(v Value) {
	if v.typ != a.typ {
		panic(fmt.Sprintf("upb: %v value stored in %v array", v.typ, a.typ))
	}
	if v.typ == CTypeMessage {
		checkSameArena(a.arena, v)
	}
}

func loadRaw(b []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 4:
		return uint64(*(*uint32)(unsafe.Pointer(&b[0])))
	default:
		return *(*uint64)(unsafe.Pointer(&b[0]))
	}
}

func storeRaw(b []byte, size int, raw uint64) {
	switch size {
	case 1:
		b[0] = byte(raw)
	case 4:
		*(*uint32)(unsafe.Pointer(&b[0])) = uint32(raw)
	default:
		*(*uint64)(unsafe.Pointer(&b[0])) = raw
	}
}
