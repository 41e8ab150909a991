package proto

import "github.com/pavanmanishd/protoarena/upb"

// PrimitiveMut is the exclusive mutator of a singular scalar, string or bytes
// field. Its view type is the value itself.
type PrimitiveMut[T any] struct {
	msg    *upb.Message
	f      *upb.Field
	conv   Conv[T]
	ticket upb.Ticket
}

// BytesMut and StrMut mutate bytes and string fields.
type (
	BytesMut = PrimitiveMut[[]byte]
	StrMut   = PrimitiveMut[string]
)

func (p PrimitiveMut[T]) AsView() T                { return p.Get() }
func (p PrimitiveMut[T]) IntoView() T              { return p.Get() }
func (p PrimitiveMut[T]) AsMut() PrimitiveMut[T]   { return p }
func (p PrimitiveMut[T]) IntoMut() PrimitiveMut[T] { return p }

// Get returns the current value, or the default when unset.
func (p PrimitiveMut[T]) Get() T {
	return p.conv.Unpack(p.msg.Get(p.f))
}

// Set stores v. Strings and bytes are copied into the message's arena.
func (p PrimitiveMut[T]) Set(v T) {
	p.ticket.Check()
	p.msg.Set(p.f, p.conv.PackCopy(p.msg.Arena(), v))
}

// Clear resets the field to unset.
func (p PrimitiveMut[T]) Clear() {
	p.ticket.Check()
	p.msg.ClearField(p.f)
}

// Field is the field being mutated.
func (p PrimitiveMut[T]) Field() *upb.Field { return p.f }
