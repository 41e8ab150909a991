package upb

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// CType is the storage discriminant of a field value. It collapses the wire
// kinds that share a representation (int32, sint32 and sfixed32 are all
// CTypeInt32, for example).
type CType uint8

const (
	CTypeBool    CType = 1
	CTypeFloat   CType = 2
	CTypeInt32   CType = 3
	CTypeUint32  CType = 4
	CTypeEnum    CType = 5
	CTypeMessage CType = 6
	CTypeDouble  CType = 7
	CTypeInt64   CType = 8
	CTypeUint64  CType = 9
	CTypeString  CType = 10
	CTypeBytes   CType = 11

	// CTypeArray and CTypeMap tag values that hold a whole repeated or map
	// field. They never appear as element types.
	CTypeArray CType = 32
	CTypeMap   CType = 33
)

var ctypeNames = map[CType]string{
	CTypeBool:    "bool",
	CTypeFloat:   "float",
	CTypeInt32:   "int32",
	CTypeUint32:  "uint32",
	CTypeEnum:    "enum",
	CTypeMessage: "message",
	CTypeDouble:  "double",
	CTypeInt64:   "int64",
	CTypeUint64:  "uint64",
	CTypeString:  "string",
	CTypeBytes:   "bytes",
	CTypeArray:   "array",
	CTypeMap:     "map",
}

// String returns the lower-case type name.
func (t CType) String() string {
	if s, ok := ctypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("CType(%d)", uint8(t))
}

// Size is the width in bytes of one packed element of type t, or 0 when t is
// stored as a Value.
func (t CType) Size() int {
	switch t {
	case CTypeBool:
		return 1
	case CTypeFloat, CTypeInt32, CTypeUint32, CTypeEnum:
		return 4
	case CTypeDouble, CTypeInt64, CTypeUint64:
		return 8
	default:
		return 0
	}
}

// Packable reports whether elements of t are stored packed in arena memory.
func (t CType) Packable() bool { return t.Size() > 0 }

// IsElement reports whether t may be the element type of an array or the
// value type of a map.
func (t CType) IsElement() bool {
	return t >= CTypeBool && t <= CTypeBytes
}

// IsMapKey reports whether t may be a map key. Floating point, enum and
// message keys are not allowed.
func (t CType) IsMapKey() bool {
	switch t {
	case CTypeBool, CTypeInt32, CTypeUint32, CTypeInt64, CTypeUint64, CTypeString, CTypeBytes:
		return true
	default:
		return false
	}
}

// CTypeOf maps a wire kind to its storage discriminant. It returns 0 for
// invalid kinds.
func CTypeOf(k protoreflect.Kind) CType {
	switch k {
	case protoreflect.BoolKind:
		return CTypeBool
	case protoreflect.EnumKind:
		return CTypeEnum
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return CTypeInt32
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return CTypeUint32
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return CTypeInt64
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return CTypeUint64
	case protoreflect.FloatKind:
		return CTypeFloat
	case protoreflect.DoubleKind:
		return CTypeDouble
	case protoreflect.StringKind:
		return CTypeString
	case protoreflect.BytesKind:
		return CTypeBytes
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return CTypeMessage
	default:
		return 0
	}
}
