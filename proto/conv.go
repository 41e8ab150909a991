package proto

import (
	"github.com/pavanmanishd/protoarena/arena"
	"github.com/pavanmanishd/protoarena/upb"
)

// Conv translates between a Go value and the kernel's tagged-union Value.
type Conv[T any] interface {
	// CType is the kernel storage type of T.
	CType() upb.CType
	// Pack wraps v without copying. The result may alias caller memory and
	// must not be stored.
	Pack(v T) upb.Value
	// PackCopy wraps v after copying its payload into a. Messages are
	// deep-cloned.
	PackCopy(a *arena.Arena, v T) upb.Value
	// Unpack returns the Go value of v. Strings and bytes alias the arena.
	Unpack(v upb.Value) T
	// Default is the value of an unset field.
	Default() T
}

type conv[T any] struct {
	ctype  upb.CType
	pack   func(T) upb.Value
	unpack func(upb.Value) T
	def    func() T
	copy   func(*arena.Arena, T) upb.Value
}

func (c conv[T]) CType() upb.CType     { return c.ctype }
func (c conv[T]) Pack(v T) upb.Value   { return c.pack(v) }
func (c conv[T]) Unpack(v upb.Value) T { return c.unpack(v) }

func (c conv[T]) PackCopy(a *arena.Arena, v T) upb.Value {
	if c.copy != nil {
		return c.copy(a, v)
	}
	return upb.CopyValue(c.pack(v), a)
}

func (c conv[T]) Default() T {
	if c.def != nil {
		return c.def()
	}
	return c.unpack(upb.ZeroValue(c.ctype))
}

var (
	Bool   Conv[bool]    = conv[bool]{ctype: upb.CTypeBool, pack: upb.ValueOfBool, unpack: upb.Value.Bool}
	Int32  Conv[int32]   = conv[int32]{ctype: upb.CTypeInt32, pack: upb.ValueOfInt32, unpack: upb.Value.Int32}
	Uint32 Conv[uint32]  = conv[uint32]{ctype: upb.CTypeUint32, pack: upb.ValueOfUint32, unpack: upb.Value.Uint32}
	Int64  Conv[int64]   = conv[int64]{ctype: upb.CTypeInt64, pack: upb.ValueOfInt64, unpack: upb.Value.Int64}
	Uint64 Conv[uint64]  = conv[uint64]{ctype: upb.CTypeUint64, pack: upb.ValueOfUint64, unpack: upb.Value.Uint64}
	Float  Conv[float32] = conv[float32]{ctype: upb.CTypeFloat, pack: upb.ValueOfFloat, unpack: upb.Value.Float}
	Double Conv[float64] = conv[float64]{ctype: upb.CTypeDouble, pack: upb.ValueOfDouble, unpack: upb.Value.Double}
	String Conv[string]  = conv[string]{ctype: upb.CTypeString, pack: upb.ValueOfString, unpack: upb.Value.String}
	Bytes  Conv[[]byte]  = conv[[]byte]{ctype: upb.CTypeBytes, pack: upb.ValueOfBytes, unpack: upb.Value.Bytes}
)

// Enum returns the conversion of an enum type E. Unknown numbers are kept
// as is.
func Enum[E ~int32]() Conv[E] {
	return conv[E]{
		ctype:  upb.CTypeEnum,
		pack:   func(e E) upb.Value { return upb.ValueOfEnum(int32(e)) },
		unpack: func(v upb.Value) E { return E(v.Enum()) },
	}
}

// MessageOf returns the conversion of messages laid out by t.
func MessageOf(t *upb.MiniTable) Conv[MessageView] {
	return conv[MessageView]{
		ctype: upb.CTypeMessage,
		pack:  func(m MessageView) upb.Value { return upb.ValueOfMessage(m.raw) },
		unpack: func(v upb.Value) MessageView {
			if !v.IsValid() {
				return emptyMessageView(t)
			}
			return MessageView{raw: v.Message(), table: t}
		},
		def: func() MessageView { return emptyMessageView(t) },
		copy: func(a *arena.Arena, m MessageView) upb.Value {
			switch {
			case m.raw == upb.EmptyMessage():
				// The empty singleton stands in for an unset message of type t.
				return upb.ValueOfMessage(upb.NewMessage(t, a))
			case m.raw.Table() != t:
				panic("proto: message of type " + m.raw.Table().Name() + " used as " + t.Name())
			}
			return upb.ValueOfMessage(m.raw.DeepClone(a))
		},
	}
}
