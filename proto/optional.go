package proto

import "fmt"

// Optional is the value of a field with presence together with whether it is
// set. An unset Optional carries the field's default.
type Optional[T any] struct {
	val T
	set bool
}

// Present returns a set Optional holding v.
func Present[T any](v T) Optional[T] { return Optional[T]{val: v, set: true} }

// Absent returns an unset Optional carrying the default def.
func Absent[T any](def T) Optional[T] { return Optional[T]{val: def} }

// IsSet reports whether the field was present.
func (o Optional[T]) IsSet() bool { return o.set }

// Get returns the value, or the default when unset.
func (o Optional[T]) Get() T { return o.val }

// Unwrap returns the value and whether it is set.
func (o Optional[T]) Unwrap() (T, bool) { return o.val, o.set }

func (o Optional[T]) String() string {
	if o.set {
		return fmt.Sprintf("Present(%v)", o.val)
	}
	return fmt.Sprintf("Absent(%v)", o.val)
}

// FieldEntry is the mutator of a field with presence, in whichever state the
// field is.
type FieldEntry[T any] struct {
	mut PrimitiveMut[T]
}

func (e FieldEntry[T]) AsView() T   { return e.mut.Get() }
func (e FieldEntry[T]) IntoView() T { return e.mut.Get() }

// IsSet and IsUnset report the field's current presence.
func (e FieldEntry[T]) IsSet() bool   { return e.mut.msg.Has(e.mut.f) }
func (e FieldEntry[T]) IsUnset() bool { return !e.IsSet() }

// Get returns the value, or the default when unset.
func (e FieldEntry[T]) Get() T { return e.mut.Get() }

// Set stores v and marks the field present.
func (e FieldEntry[T]) Set(v T) { e.mut.Set(v) }

// Clear marks the field absent.
func (e FieldEntry[T]) Clear() { e.mut.Clear() }

// OrDefault sets the field to its default when absent and returns its
// mutator.
func (e FieldEntry[T]) OrDefault() PrimitiveMut[T] {
	if a, ok := e.Absent(); ok {
		return a.SetDefault().PrimitiveMut
	}
	return e.mut
}

// Present returns the present mutator when the field is set.
func (e FieldEntry[T]) Present() (PresentField[T], bool) {
	if !e.IsSet() {
		return PresentField[T]{}, false
	}
	return PresentField[T]{e.mut}, true
}

// Absent returns the absent mutator when the field is unset.
func (e FieldEntry[T]) Absent() (AbsentField[T], bool) {
	if e.IsSet() {
		return AbsentField[T]{}, false
	}
	return AbsentField[T]{e.mut}, true
}

// PresentField mutates a field known to be set.
type PresentField[T any] struct {
	PrimitiveMut[T]
}

func (p PresentField[T]) AsMut() PresentField[T]   { return p }
func (p PresentField[T]) IntoMut() PresentField[T] { return p }

// Clear unsets the field and returns its absent mutator.
func (p PresentField[T]) Clear() AbsentField[T] {
	p.PrimitiveMut.Clear()
	return AbsentField[T]{p.PrimitiveMut}
}

// AbsentField is the mutator of a field known to be unset. It reads as the
// default.
type AbsentField[T any] struct {
	mut PrimitiveMut[T]
}

func (a AbsentField[T]) AsView() T   { return a.mut.conv.Default() }
func (a AbsentField[T]) IntoView() T { return a.mut.conv.Default() }

// SetDefault marks the field present with its default value.
func (a AbsentField[T]) SetDefault() PresentField[T] {
	a.mut.ticket.Check()
	c := a.mut.conv
	a.mut.msg.Set(a.mut.f, c.Pack(c.Default()))
	return PresentField[T]{a.mut}
}

// Set stores v and returns the present mutator.
func (a AbsentField[T]) Set(v T) PresentField[T] {
	a.mut.Set(v)
	return PresentField[T]{a.mut}
}

// MessageEntry is the mutator of a sub-message field, set or not.
type MessageEntry struct {
	field  MessageField
	parent MessageMut
}

// IsSet reports whether the sub-message is present.
func (e MessageEntry) IsSet() bool { return e.parent.raw.Has(e.field.f) }

// Get returns the sub-message, or the empty view when unset.
func (e MessageEntry) Get() MessageView { return e.field.Get(e.parent.MessageView) }

// OrDefault creates the sub-message when unset and returns its mutator.
func (e MessageEntry) OrDefault() MessageMut {
	e.parent.check()
	return e.field.mut(e.parent)
}

// Set replaces the sub-message with a deep copy of v.
func (e MessageEntry) Set(v MessageView) { e.OrDefault().CopyFrom(v) }

// Clear unsets the sub-message and retires its outstanding mutators.
func (e MessageEntry) Clear() {
	e.parent.check()
	e.field.clear(e.parent)
}
