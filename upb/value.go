package upb

import (
	"bytes"
	"fmt"
	"math"
	"unsafe"
)

// Value is a single field value of any storage type. The zero Value is
// invalid and stands for "no value".
//
// Scalars live in num. 32-bit types are stored zero-extended. String and
// bytes values keep their data pointer in ptr and their length in num;
// messages, arrays and maps keep their pointer in ptr.
type Value struct {
	typ CType
	num uint64
	ptr unsafe.Pointer
}

// ValueOfBool returns a bool Value.
func ValueOfBool(v bool) Value {
	if v {
		return Value{typ: CTypeBool, num: 1}
	}
	return Value{typ: CTypeBool}
}

// ValueOfInt32 returns an int32 Value.
func ValueOfInt32(v int32) Value { return Value{typ: CTypeInt32, num: uint64(uint32(v))} }

// ValueOfUint32 returns a uint32 Value.
func ValueOfUint32(v uint32) Value { return Value{typ: CTypeUint32, num: uint64(v)} }

// ValueOfInt64 returns an int64 Value.
func ValueOfInt64(v int64) Value { return Value{typ: CTypeInt64, num: uint64(v)} }

// ValueOfUint64 returns a uint64 Value.
func ValueOfUint64(v uint64) Value { return Value{typ: CTypeUint64, num: v} }

// ValueOfEnum returns an enum Value holding the number v, known or not.
func ValueOfEnum(v int32) Value { return Value{typ: CTypeEnum, num: uint64(uint32(v))} }

// ValueOfFloat returns a float Value.
func ValueOfFloat(v float32) Value {
	return Value{typ: CTypeFloat, num: uint64(math.Float32bits(v))}
}

// ValueOfDouble returns a double Value.
func ValueOfDouble(v float64) Value {
	return Value{typ: CTypeDouble, num: math.Float64bits(v)}
}

// ValueOfString stores s without copying it.
func ValueOfString(s string) Value {
	return Value{typ: CTypeString, num: uint64(len(s)), ptr: unsafe.Pointer(unsafe.StringData(s))}
}

// ValueOfBytes stores b without copying it.
func ValueOfBytes(b []byte) Value {
	return Value{typ: CTypeBytes, num: uint64(len(b)), ptr: unsafe.Pointer(unsafe.SliceData(b))}
}

// ValueOfMessage wraps m. Installing it in a field requires m to live on
// the field's arena.
func ValueOfMessage(m *Message) Value {
	return Value{typ: CTypeMessage, ptr: unsafe.Pointer(m)}
}

// ValueOfArray wraps a.
func ValueOfArray(a *Array) Value {
	return Value{typ: CTypeArray, ptr: unsafe.Pointer(a)}
}

// ValueOfMap wraps m.
func ValueOfMap(m *Map) Value {
	return Value{typ: CTypeMap, ptr: unsafe.Pointer(m)}
}

// ZeroValue returns the default value of t: false, zero, the empty string,
// empty bytes, or an invalid Value for messages, arrays and maps.
func ZeroValue(t CType) Value {
	switch t {
	case CTypeMessage, CTypeArray, CTypeMap:
		return Value{}
	default:
		return Value{typ: t}
	}
}

// Type returns the discriminant of v.
func (v Value) Type() CType { return v.typ }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.typ != 0 }

// IsZero reports whether v is the default for its type. Messages, arrays and
// maps are zero only when nil.
func (v Value) IsZero() bool {
	switch v.typ {
	case 0:
		return true
	case CTypeMessage, CTypeArray, CTypeMap:
		return v.ptr == nil
	default:
		return v.num == 0
	}
}

// Bool returns the value of a bool Value. Like every typed accessor except
// String, it panics on any other discriminant.
func (v Value) Bool() bool {
	v.must(CTypeBool)
	return v.num != 0
}

// Int32 returns the value of an int32 Value.
func (v Value) Int32() int32 {
	v.must(CTypeInt32)
	return int32(uint32(v.num))
}

// Uint32 returns the value of a uint32 Value.
func (v Value) Uint32() uint32 {
	v.must(CTypeUint32)
	return uint32(v.num)
}

// Int64 returns the value of an int64 Value.
func (v Value) Int64() int64 {
	v.must(CTypeInt64)
	return int64(v.num)
}

// Uint64 returns the value of a uint64 Value.
func (v Value) Uint64() uint64 {
	v.must(CTypeUint64)
	return v.num
}

// Enum returns the number held by an enum Value.
func (v Value) Enum() int32 {
	v.must(CTypeEnum)
	return int32(uint32(v.num))
}

// Float returns the value of a float Value.
func (v Value) Float() float32 {
	v.must(CTypeFloat)
	return math.Float32frombits(uint32(v.num))
}

// Double returns the value of a double Value.
func (v Value) Double() float64 {
	v.must(CTypeDouble)
	return math.Float64frombits(v.num)
}

// String returns the value of a string Value. Since it implements
// fmt.Stringer, it formats every other type instead of panicking.
func (v Value) String() string {
	if v.typ != CTypeString {
		return v.format()
	}
	if v.num == 0 {
		return ""
	}
	return unsafe.String((*byte)(v.ptr), int(v.num))
}

// Bytes returns the value of a bytes Value. The result aliases the stored
// data and must not be modified.
func (v Value) Bytes() []byte {
	v.must(CTypeBytes)
	return v.data()
}

// Message returns the message held by v.
func (v Value) Message() *Message {
	v.must(CTypeMessage)
	return (*Message)(v.ptr)
}

// Array returns the array held by v.
func (v Value) Array() *Array {
	v.must(CTypeArray)
	return (*Array)(v.ptr)
}

// Map returns the map held by v.
func (v Value) Map() *Map {
	v.must(CTypeMap)
	return (*Map)(v.ptr)
}

// Equal compares two values of the same type. Strings and bytes compare by
// content; messages, arrays and maps by identity.
func (v Value) Equal(w Value) bool {
	if v.typ != w.typ {
		return false
	}
	switch v.typ {
	case CTypeString, CTypeBytes:
		return bytes.Equal(v.data(), w.data())
	case CTypeMessage, CTypeArray, CTypeMap:
		return v.ptr == w.ptr
	case CTypeFloat:
		return math.Float32frombits(uint32(v.num)) == math.Float32frombits(uint32(w.num))
	case CTypeDouble:
		return math.Float64frombits(v.num) == math.Float64frombits(w.num)
	default:
		return v.num == w.num
	}
}

// raw returns the packed representation of a scalar.
func (v Value) raw() uint64 { return v.num }

// data returns the string or bytes payload.
func (v Value) data() []byte {
	if v.num == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(v.ptr), int(v.num))
}

func (v Value) must(t CType) {
	if v.typ != t {
		panic(fmt.Sprintf("upb: value of type %v used as %v", v.typ, t))
	}
}

func (v Value) format() string {
	switch v.typ {
	case 0:
		return "<invalid>"
	case CTypeBool:
		return fmt.Sprint(v.num != 0)
	case CTypeInt32, CTypeEnum:
		return fmt.Sprint(int32(uint32(v.num)))
	case CTypeUint32, CTypeUint64:
		return fmt.Sprint(v.num)
	case CTypeInt64:
		return fmt.Sprint(int64(v.num))
	case CTypeFloat:
		return fmt.Sprint(math.Float32frombits(uint32(v.num)))
	case CTypeDouble:
		return fmt.Sprint(math.Float64frombits(v.num))
	case CTypeBytes:
		return fmt.Sprintf("%q", v.data())
	default:
		return fmt.Sprintf("%v(%p)", v.typ, v.ptr)
	}
}

// fromRaw rebuilds a scalar Value from its packed representation.
func fromRaw(t CType, raw uint64) Value {
	return Value{typ: t, num: raw}
}
