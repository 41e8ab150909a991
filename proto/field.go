package proto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/pavanmanishd/protoarena/upb"
)

// Field handles are what generated accessors call. They are built once per
// message type and panic at construction when the declared field does not
// match the requested shape.

func lookup(t *upb.MiniTable, num protowire.Number) *upb.Field {
	f := t.FieldByNumber(num)
	if f == nil {
		panic(fmt.Sprintf("proto: %s has no field %d", t.Name(), num))
	}
	return f
}

func mustType(f *upb.Field, want, got upb.CType) {
	if want != got {
		panic(fmt.Sprintf("proto: %v holds %v, not %v", f, want, got))
	}
}

// ScalarField accesses a singular scalar, enum, string or bytes field.
type ScalarField[T any] struct {
	f    *upb.Field
	conv Conv[T]
}

// NewScalarField binds field num of t to conversion c.
func NewScalarField[T any](t *upb.MiniTable, num protowire.Number, c Conv[T]) ScalarField[T] {
	f := lookup(t, num)
	if !f.IsSingular() || f.CType() == upb.CTypeMessage {
		panic(fmt.Sprintf("proto: %v is not a singular scalar field", f))
	}
	mustType(f, f.CType(), c.CType())
	return ScalarField[T]{f: f, conv: c}
}

// Field is the bound field descriptor.
func (s ScalarField[T]) Field() *upb.Field { return s.f }

// Get returns the value, or the default when unset.
func (s ScalarField[T]) Get(m MessageView) T {
	return s.conv.Unpack(m.raw.Get(s.f))
}

// Has reports whether the field is set.
func (s ScalarField[T]) Has(m MessageView) bool { return m.raw.Has(s.f) }

// Mut returns a mutator of the field and retires every earlier one.
func (s ScalarField[T]) Mut(m MessageMut) PrimitiveMut[T] {
	m.check()
	return PrimitiveMut[T]{msg: m.raw, f: s.f, conv: s.conv, ticket: m.raw.Exclusive(s.f).Acquire()}
}

// Opt returns the value together with its presence.
func (s ScalarField[T]) Opt(m MessageView) Optional[T] {
	s.mustHavePresence()
	if m.raw.Has(s.f) {
		return Present(s.Get(m))
	}
	return Absent(s.conv.Default())
}

// Entry returns the presence-aware mutator of the field.
func (s ScalarField[T]) Entry(m MessageMut) FieldEntry[T] {
	s.mustHavePresence()
	return FieldEntry[T]{mut: s.Mut(m)}
}

// ClearPresentField unsets the field behind p.
func (s ScalarField[T]) ClearPresentField(p PresentField[T]) AbsentField[T] { return p.Clear() }

// SetAbsentToDefault marks the field behind a present with its default.
func (s ScalarField[T]) SetAbsentToDefault(a AbsentField[T]) PresentField[T] {
	return a.SetDefault()
}

func (s ScalarField[T]) mustHavePresence() {
	if !s.f.HasPresence() {
		panic(fmt.Sprintf("proto: %v does not track presence", s.f))
	}
}

// RepeatedField accesses a repeated field of T.
type RepeatedField[T any] struct {
	f    *upb.Field
	conv Conv[T]
}

// NewRepeatedField binds repeated field num of t to conversion c.
func NewRepeatedField[T any](t *upb.MiniTable, num protowire.Number, c Conv[T]) RepeatedField[T] {
	f := lookup(t, num)
	if !f.IsRepeated() {
		panic(fmt.Sprintf("proto: %v is not a repeated field", f))
	}
	mustType(f, f.CType(), c.CType())
	return RepeatedField[T]{f: f, conv: c}
}

// Field is the bound field descriptor.
func (r RepeatedField[T]) Field() *upb.Field { return r.f }

// Get returns a view of the field. Unset fields read as the shared empty
// array.
func (r RepeatedField[T]) Get(m MessageView) RepeatedView[T] {
	if arr := m.raw.GetArray(r.f); arr != nil {
		return RepeatedView[T]{arr: arr, conv: r.conv}
	}
	return emptyRepeatedView(r.conv)
}

// Mut returns a mutator of the field, creating its storage, and retires
// every earlier one.
func (r RepeatedField[T]) Mut(m MessageMut) RepeatedMut[T] {
	m.check()
	ticket := m.raw.Exclusive(r.f).Acquire()
	arr := m.raw.GetOrCreateMutableArray(r.f)
	return RepeatedMut[T]{RepeatedView: RepeatedView[T]{arr: arr, conv: r.conv}, ticket: ticket}
}

// MapField accesses a map field from K to V.
type MapField[K, V any] struct {
	f   *upb.Field
	key Conv[K]
	val Conv[V]
}

// NewMapField binds map field num of t to conversions k and v.
func NewMapField[K, V any](t *upb.MiniTable, num protowire.Number, k Conv[K], v Conv[V]) MapField[K, V] {
	f := lookup(t, num)
	if !f.IsMap() {
		panic(fmt.Sprintf("proto: %v is not a map field", f))
	}
	mustType(f, f.KeyType(), k.CType())
	mustType(f, f.ValueType(), v.CType())
	return MapField[K, V]{f: f, key: k, val: v}
}

// Field is the bound field descriptor.
func (mf MapField[K, V]) Field() *upb.Field { return mf.f }

// Get returns a view of the field. Unset fields read as the shared empty
// map.
func (mf MapField[K, V]) Get(m MessageView) MapView[K, V] {
	if mp := m.raw.GetMap(mf.f); mp != nil {
		return MapView[K, V]{m: mp, key: mf.key, val: mf.val}
	}
	return emptyMapView(mf.key, mf.val)
}

// Mut returns a mutator of the field, creating its storage, and retires
// every earlier one.
func (mf MapField[K, V]) Mut(m MessageMut) MapMut[K, V] {
	m.check()
	ticket := m.raw.Exclusive(mf.f).Acquire()
	mp := m.raw.GetOrCreateMutableMap(mf.f)
	return MapMut[K, V]{MapView: MapView[K, V]{m: mp, key: mf.key, val: mf.val}, ticket: ticket}
}

// MessageField accesses a singular sub-message field.
type MessageField struct {
	f *upb.Field
}

// NewMessageField binds message field num of t.
func NewMessageField(t *upb.MiniTable, num protowire.Number) MessageField {
	f := lookup(t, num)
	if !f.IsSingular() || f.CType() != upb.CTypeMessage {
		panic(fmt.Sprintf("proto: %v is not a singular message field", f))
	}
	return MessageField{f: f}
}

// Field is the bound field descriptor.
func (mf MessageField) Field() *upb.Field { return mf.f }

// Get returns the sub-message, or an empty read-only view when unset.
func (mf MessageField) Get(m MessageView) MessageView {
	if sub := m.raw.GetMessage(mf.f); sub != nil {
		return MessageView{raw: sub, table: mf.f.Sub}
	}
	return emptyMessageView(mf.f.Sub)
}

// Has reports whether the sub-message is set, even when it is empty.
func (mf MessageField) Has(m MessageView) bool { return m.raw.Has(mf.f) }

// Mut returns a mutator of the sub-message, creating it when unset, and
// retires every earlier one.
func (mf MessageField) Mut(m MessageMut) MessageMut {
	m.check()
	return mf.mut(m)
}

// Entry returns the presence-aware mutator of the field.
func (mf MessageField) Entry(m MessageMut) MessageEntry {
	m.check()
	return MessageEntry{field: mf, parent: m}
}

// Clear unsets the sub-message and retires its outstanding mutators.
func (mf MessageField) Clear(m MessageMut) {
	m.check()
	mf.clear(m)
}

func (mf MessageField) mut(m MessageMut) MessageMut {
	ticket := m.raw.Exclusive(mf.f).Acquire()
	sub := m.raw.GetOrCreateMutableMessage(mf.f)
	return MessageMut{MessageView: MessageView{raw: sub, table: mf.f.Sub}, ticket: ticket}
}

func (mf MessageField) clear(m MessageMut) {
	m.raw.Exclusive(mf.f).Invalidate()
	m.raw.ClearField(mf.f)
}
