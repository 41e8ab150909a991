package upb

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Encode serializes m. Fields are written in number order, map entries in
// key order, and unknown fields last, so equal messages encode identically.
func Encode(m *Message) []byte {
	return appendMessage(nil, m)
}

func appendMessage(b []byte, m *Message) []byte {
	for _, f := range m.table.fields {
		switch {
		case f.Map:
			b = appendMap(b, f, m.GetMap(f))
		case f.Repeated:
			b = appendRepeated(b, f, m.GetArray(f))
		default:
			if !m.Has(f) {
				continue
			}
			b = appendField(b, f.Number, f.Kind, m.Get(f))
		}
	}
	return append(b, m.unknown...)
}

func appendRepeated(b []byte, f *Field, arr *Array) []byte {
	if arr == nil || arr.Size() == 0 {
		return b
	}
	if f.Packed {
		var body []byte
		for _, v := range arr.All() {
			body = appendScalar(body, f.Kind, v)
		}
		b = protowire.AppendTag(b, f.Number, protowire.BytesType)
		return protowire.AppendBytes(b, body)
	}
	for _, v := range arr.All() {
		b = appendField(b, f.Number, f.Kind, v)
	}
	return b
}

func appendMap(b []byte, f *Field, mp *Map) []byte {
	if mp == nil || mp.Size() == 0 {
		return b
	}
	entries := make([]mapEntry, 0, mp.Size())
	for _, e := range mp.entries {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(x, y mapEntry) int { return compareKeys(x.key, y.key) })

	var entry []byte
	for _, e := range entries {
		entry = appendField(entry[:0], 1, f.MapKey, e.key)
		entry = appendField(entry, 2, f.MapValue, e.val)
		b = protowire.AppendTag(b, f.Number, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

func appendField(b []byte, num protowire.Number, kind protoreflect.Kind, v Value) []byte {
	switch kind {
	case protoreflect.GroupKind:
		b = protowire.AppendTag(b, num, protowire.StartGroupType)
		b = appendMessage(b, v.Message())
		return protowire.AppendTag(b, num, protowire.EndGroupType)
	case protoreflect.MessageKind:
		b = protowire.AppendTag(b, num, protowire.BytesType)
		return protowire.AppendBytes(b, appendMessage(nil, v.Message()))
	}
	b = protowire.AppendTag(b, num, wireTypeOf(kind))
	return appendScalar(b, kind, v)
}

func appendScalar(b []byte, kind protoreflect.Kind, v Value) []byte {
	switch kind {
	case protoreflect.BoolKind:
		return protowire.AppendVarint(b, protowire.EncodeBool(v.Bool()))
	case protoreflect.EnumKind:
		return protowire.AppendVarint(b, uint64(int64(v.Enum())))
	case protoreflect.Int32Kind:
		return protowire.AppendVarint(b, uint64(int64(v.Int32())))
	case protoreflect.Sint32Kind:
		return protowire.AppendVarint(b, protowire.EncodeZigZag(int64(v.Int32())))
	case protoreflect.Uint32Kind:
		return protowire.AppendVarint(b, uint64(v.Uint32()))
	case protoreflect.Int64Kind:
		return protowire.AppendVarint(b, uint64(v.Int64()))
	case protoreflect.Sint64Kind:
		return protowire.AppendVarint(b, protowire.EncodeZigZag(v.Int64()))
	case protoreflect.Uint64Kind:
		return protowire.AppendVarint(b, v.Uint64())
	case protoreflect.Sfixed32Kind:
		return protowire.AppendFixed32(b, uint32(v.Int32()))
	case protoreflect.Fixed32Kind:
		return protowire.AppendFixed32(b, v.Uint32())
	case protoreflect.FloatKind:
		return protowire.AppendFixed32(b, math.Float32bits(v.Float()))
	case protoreflect.Sfixed64Kind:
		return protowire.AppendFixed64(b, uint64(v.Int64()))
	case protoreflect.Fixed64Kind:
		return protowire.AppendFixed64(b, v.Uint64())
	case protoreflect.DoubleKind:
		return protowire.AppendFixed64(b, math.Float64bits(v.Double()))
	case protoreflect.StringKind:
		return protowire.AppendString(b, v.String())
	case protoreflect.BytesKind:
		return protowire.AppendBytes(b, v.Bytes())
	default:
		panic("upb: cannot encode kind " + kind.String())
	}
}

// wireTypeOf returns the unpacked wire type of kind.
func wireTypeOf(kind protoreflect.Kind) protowire.Type {
	switch kind {
	case protoreflect.BoolKind, protoreflect.EnumKind,
		protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Uint32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Uint64Kind:
		return protowire.VarintType
	case protoreflect.Sfixed32Kind, protoreflect.Fixed32Kind, protoreflect.FloatKind:
		return protowire.Fixed32Type
	case protoreflect.Sfixed64Kind, protoreflect.Fixed64Kind, protoreflect.DoubleKind:
		return protowire.Fixed64Type
	case protoreflect.GroupKind:
		return protowire.StartGroupType
	default:
		return protowire.BytesType
	}
}

func compareKeys(x, y Value) int {
	switch x.typ {
	case CTypeBool, CTypeUint32, CTypeUint64:
		return cmp.Compare(x.num, y.num)
	case CTypeInt32:
		return cmp.Compare(x.Int32(), y.Int32())
	case CTypeInt64:
		return cmp.Compare(x.Int64(), y.Int64())
	default:
		return strings.Compare(string(x.data()), string(y.data()))
	}
}
