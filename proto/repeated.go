package proto

import (
	"fmt"
	"iter"

	"github.com/pavanmanishd/protoarena/arena"
	"github.com/pavanmanishd/protoarena/upb"
)

// Repeated is an owned, arena-backed sequence of T. Its elements are reached
// only through RepeatedView and RepeatedMut.
type Repeated[T any] struct {
	arena *arena.Arena
	arr   *upb.Array
	conv  Conv[T]
}

// NewRepeated creates an empty sequence on its own arena.
func NewRepeated[T any](c Conv[T]) *Repeated[T] {
	a := arena.New()
	return &Repeated[T]{arena: a, arr: upb.NewArray(a, c.CType()), conv: c}
}

// AsView returns a read-only view of r.
func (r *Repeated[T]) AsView() RepeatedView[T] {
	return RepeatedView[T]{arr: r.arr, conv: r.conv}
}

// AsMut returns a mutator and retires every earlier one.
func (r *Repeated[T]) AsMut() RepeatedMut[T] {
	return RepeatedMut[T]{
		RepeatedView: r.AsView(),
		ticket:       r.arr.Exclusive().Acquire(),
	}
}

// Free releases the arena. The sequence must not be used afterwards.
func (r *Repeated[T]) Free() { r.arena.Free() }

// RepeatedView is a read-only view of a repeated field.
type RepeatedView[T any] struct {
	arr  *upb.Array
	conv Conv[T]
}

func (v RepeatedView[T]) AsView() RepeatedView[T]   { return v }
func (v RepeatedView[T]) IntoView() RepeatedView[T] { return v }

func (v RepeatedView[T]) Len() int      { return v.arr.Size() }
func (v RepeatedView[T]) IsEmpty() bool { return v.arr.Size() == 0 }

// Get returns the element at i, or false when i is out of range.
func (v RepeatedView[T]) Get(i int) (T, bool) {
	if i < 0 || i >= v.arr.Size() {
		var zero T
		return zero, false
	}
	return v.GetUnchecked(i), true
}

// GetUnchecked returns the element at i. The caller guarantees
// 0 <= i < Len().
func (v RepeatedView[T]) GetUnchecked(i int) T {
	return v.conv.Unpack(v.arr.GetUnchecked(i))
}

// Iter returns an iterator positioned at the first element.
func (v RepeatedView[T]) Iter() *RepeatedIter[T] {
	return &RepeatedIter[T]{view: v}
}

// All yields index and element pairs.
func (v RepeatedView[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < v.arr.Size(); i++ {
			if !yield(i, v.GetUnchecked(i)) {
				return
			}
		}
	}
}

// SetOn replaces the contents of m with a copy of v.
func (v RepeatedView[T]) SetOn(m RepeatedMut[T]) { m.CopyFrom(v) }

func (v RepeatedView[T]) String() string {
	return fmt.Sprintf("RepeatedView[%v](len=%d)", v.conv.CType(), v.Len())
}

// RepeatedIter walks a repeated field front to back.
type RepeatedIter[T any] struct {
	view RepeatedView[T]
	next int
}

// Next returns the next element, or false once the end is reached.
func (it *RepeatedIter[T]) Next() (T, bool) {
	v, ok := it.view.Get(it.next)
	if ok {
		it.next++
	}
	return v, ok
}

// Len is the number of elements not yet returned.
func (it *RepeatedIter[T]) Len() int {
	return max(it.view.Len()-it.next, 0)
}

// RepeatedMut is the exclusive mutator of a repeated field.
type RepeatedMut[T any] struct {
	RepeatedView[T]
	ticket upb.Ticket
}

func (m RepeatedMut[T]) AsView() RepeatedView[T]   { return m.RepeatedView }
func (m RepeatedMut[T]) IntoView() RepeatedView[T] { return m.RepeatedView }
func (m RepeatedMut[T]) AsMut() RepeatedMut[T]     { return m }
func (m RepeatedMut[T]) IntoMut() RepeatedMut[T]   { return m }

// Push appends v, copying its payload into the field's arena.
func (m RepeatedMut[T]) Push(v T) {
	m.ticket.Check()
	m.arr.Append(m.conv.PackCopy(m.arr.Arena(), v))
}

// Set replaces the element at i. It panics when i is out of range.
func (m RepeatedMut[T]) Set(i int, v T) {
	if n := m.Len(); i < 0 || i >= n {
		panic(fmt.Sprintf("proto: index %d >= repeated len %d", i, n))
	}
	m.SetUnchecked(i, v)
}

// SetUnchecked replaces the element at i. The caller guarantees
// 0 <= i < Len().
func (m RepeatedMut[T]) SetUnchecked(i int, v T) {
	m.ticket.Check()
	m.arr.SetUnchecked(i, m.conv.PackCopy(m.arr.Arena(), v))
}

// CopyFrom replaces the contents with a deep copy of src. The storage types
// may differ when T is int32, as for an enum field cast with CastEnumMut
// filled from a plain int32 field; elements are then converted one by one.
func (m RepeatedMut[T]) CopyFrom(src RepeatedView[T]) {
	m.ticket.Check()
	if src.arr == m.arr {
		return
	}
	if src.arr.Type() == m.arr.Type() {
		m.arr.CopyFrom(src.arr)
		return
	}
	m.arr.Clear()
	a := m.arr.Arena()
	for _, v := range src.arr.All() {
		m.arr.Append(m.conv.PackCopy(a, src.conv.Unpack(v)))
	}
}

// Clear truncates the field to zero length. Capacity is kept.
func (m RepeatedMut[T]) Clear() {
	m.ticket.Check()
	m.arr.Clear()
}

// CastEnumView views a repeated enum field as its int32 numbers.
func CastEnumView[E ~int32](v RepeatedView[E]) RepeatedView[int32] {
	return RepeatedView[int32]{arr: v.arr, conv: Enum[int32]()}
}

// CastEnumMut mutates a repeated enum field through its int32 numbers. The
// result shares m's exclusivity.
func CastEnumMut[E ~int32](m RepeatedMut[E]) RepeatedMut[int32] {
	return RepeatedMut[int32]{RepeatedView: CastEnumView(m.RepeatedView), ticket: m.ticket}
}

func emptyRepeatedView[T any](c Conv[T]) RepeatedView[T] {
	return RepeatedView[T]{arr: upb.EmptyArray(), conv: c}
}
