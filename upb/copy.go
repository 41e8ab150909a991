package upb

import (
	"unsafe"

	"github.com/pavanmanishd/protoarena/arena"
)

// DeepClone returns a copy of m allocated on dst. Every sub-message, array,
// map, string and bytes payload is copied; nothing aliases m afterwards.
func (m *Message) DeepClone(dst *arena.Arena) *Message {
	out := &Message{table: m.table, arena: dst}
	out.alloc()
	copy(out.hasbits, m.hasbits)
	copy(out.cases, m.cases)
	for i, v := range m.slots {
		out.slots[i] = copyValue(v, dst)
	}
	if len(m.unknown) > 0 {
		out.unknown = dst.CopyBytes(m.unknown)
	}
	return out
}

// DeepCopy replaces the contents of dst with a deep copy of src. Both must
// be of the same type.
func DeepCopy(dst, src *Message) {
	if dst == src {
		return
	}
	if dst.table != src.table {
		panic("upb: DeepCopy between messages of different types")
	}
	dst.ReplaceFrom(src.DeepClone(dst.arena))
}

// copyValue copies the payload of v into dst. Scalars are returned as is.
func copyValue(v Value, dst *arena.Arena) Value {
	switch v.typ {
	case CTypeString:
		if v.num == 0 {
			return v
		}
		return ValueOfString(dst.CopyString(unsafe.String((*byte)(v.ptr), int(v.num))))
	case CTypeBytes:
		if v.num == 0 {
			return ValueOfBytes(nil)
		}
		return ValueOfBytes(dst.CopyBytes(v.data()))
	case CTypeMessage:
		if v.ptr == nil {
			return v
		}
		return ValueOfMessage(v.Message().DeepClone(dst))
	case CTypeArray:
		return ValueOfArray(v.Array().DeepClone(dst))
	case CTypeMap:
		return ValueOfMap(v.Map().DeepClone(dst))
	default:
		return v
	}
}

// CopyValue copies the payload of v into dst, deep-cloning messages. It is
// the step that makes a value safe to install in a field owned by dst.
func CopyValue(v Value, dst *arena.Arena) Value {
	return copyValue(v, dst)
}
