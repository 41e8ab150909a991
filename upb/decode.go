package upb

import (
	"fmt"
	"math"
	"unicode/utf8"
	"unsafe"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/pavanmanishd/protoarena/arena"
)

// DefaultMaxDepth bounds message nesting when DecodeOptions.MaxDepth is 0.
const DefaultMaxDepth = 100

// DecodeOptions tune Decode.
type DecodeOptions struct {
	// MaxDepth is the deepest sub-message nesting accepted.
	MaxDepth int
	// MaxMessageBytes rejects larger inputs; 0 means no limit.
	MaxMessageBytes int
	// DiscardUnknown drops fields the table does not declare instead of
	// preserving them.
	DiscardUnknown bool
}

// Decode parses buf and merges it into m. Strings, bytes and sub-messages
// are allocated on m's arena; buf is not retained. On error m may hold a
// partial result, so callers decode into a scratch message.
func Decode(buf []byte, m *Message, opts DecodeOptions) error {
	m.checkMutable()
	if opts.MaxMessageBytes > 0 && len(buf) > opts.MaxMessageBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrMessageTooLarge, len(buf), opts.MaxMessageBytes)
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	d := decoder{opts: opts}
	_, err := d.message(buf, m, 0, opts.MaxDepth)
	return err
}

type decoder struct {
	opts DecodeOptions
}

// message decodes fields into m until b is exhausted or, inside a group,
// until the matching end tag. It returns the bytes consumed.
func (d *decoder) message(b []byte, m *Message, group protowire.Number, depth int) (int, error) {
	start := len(b)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, wireError(n)
		}
		if typ == protowire.EndGroupType {
			if group == 0 || num != group {
				return 0, fmt.Errorf("%w: unexpected end of group %d", ErrMalformed, num)
			}
			return start - len(b) + n, nil
		}

		if f := m.table.FieldByNumber(num); f != nil {
			consumed, ok, err := d.field(b[n:], m, f, typ, depth)
			if err != nil {
				return 0, err
			}
			if ok {
				b = b[n+consumed:]
				continue
			}
		}

		// Unknown number or mismatched wire type.
		consumed := protowire.ConsumeFieldValue(num, typ, b[n:])
		if consumed < 0 {
			return 0, wireError(consumed)
		}
		if !d.opts.DiscardUnknown {
			m.AddUnknown(b[:n+consumed])
		}
		b = b[n+consumed:]
	}
	if group != 0 {
		return 0, fmt.Errorf("%w: group %d not terminated", ErrMalformed, group)
	}
	return start, nil
}

// field decodes one value of f. ok is false when typ does not fit f, and the
// caller keeps the field as unknown.
func (d *decoder) field(b []byte, m *Message, f *Field, typ protowire.Type, depth int) (int, bool, error) {
	switch {
	case f.Map:
		if typ != protowire.BytesType {
			return 0, false, nil
		}
		entry, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, false, wireError(n)
		}
		return n, true, d.mapEntry(entry, m.GetOrCreateMutableMap(f), f, depth)

	case f.Repeated:
		if typ == protowire.BytesType && f.ctype.Packable() {
			return d.packed(b, m.GetOrCreateMutableArray(f), f.Kind)
		}
		if typ != wireTypeOf(f.Kind) {
			return 0, false, nil
		}
		arr := m.GetOrCreateMutableArray(f)
		if f.ctype == CTypeMessage {
			sub := NewMessage(f.sub(), m.arena)
			n, err := d.submessage(b, sub, f.Kind, f.Number, depth)
			if err != nil {
				return 0, false, err
			}
			arr.Append(ValueOfMessage(sub))
			return n, true, nil
		}
		v, n, err := d.value(b, m.arena, f.Kind, f.ValidateUTF8)
		if err != nil {
			return 0, false, err
		}
		arr.Append(v)
		return n, true, nil
	}

	if typ != wireTypeOf(f.Kind) {
		return 0, false, nil
	}
	if f.ctype == CTypeMessage {
		n, err := d.submessage(b, m.GetOrCreateMutableMessage(f), f.Kind, f.Number, depth)
		if err != nil {
			return 0, false, err
		}
		return n, true, nil
	}
	v, n, err := d.value(b, m.arena, f.Kind, f.ValidateUTF8)
	if err != nil {
		return 0, false, err
	}
	m.Set(f, v)
	return n, true, nil
}

// submessage decodes a length-delimited message or a group into sub.
func (d *decoder) submessage(b []byte, sub *Message, kind protoreflect.Kind, num protowire.Number, depth int) (int, error) {
	if depth <= 0 {
		return 0, fmt.Errorf("%w: limit %d", ErrDepthLimit, d.opts.MaxDepth)
	}
	if kind == protoreflect.GroupKind {
		return d.message(b, sub, num, depth-1)
	}
	body, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, wireError(n)
	}
	if _, err := d.message(body, sub, 0, depth-1); err != nil {
		return 0, err
	}
	return n, nil
}

func (d *decoder) packed(b []byte, arr *Array, kind protoreflect.Kind) (int, bool, error) {
	body, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, false, wireError(n)
	}
	for len(body) > 0 {
		v, k, err := d.value(body, nil, kind, false)
		if err != nil {
			return 0, false, err
		}
		arr.Append(v)
		body = body[k:]
	}
	return n, true, nil
}

func (d *decoder) mapEntry(b []byte, mp *Map, f *Field, depth int) error {
	key := ZeroValue(f.key)
	val := ZeroValue(f.val)
	var sub *Message
	if f.val == CTypeMessage {
		sub = NewMessage(f.sub(), mp.arena)
		val = ValueOfMessage(sub)
	}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return wireError(n)
		}
		b = b[n:]
		switch {
		case num == 1 && typ == wireTypeOf(f.MapKey):
			v, k, err := d.value(b, mp.arena, f.MapKey, f.ValidateUTF8)
			if err != nil {
				return err
			}
			key, b = v, b[k:]
			continue
		case num == 2 && typ == wireTypeOf(f.MapValue):
			if sub != nil {
				k, err := d.submessage(b, sub, f.MapValue, 2, depth)
				if err != nil {
					return err
				}
				b = b[k:]
				continue
			}
			v, k, err := d.value(b, mp.arena, f.MapValue, f.ValidateUTF8)
			if err != nil {
				return err
			}
			val, b = v, b[k:]
			continue
		}
		k := protowire.ConsumeFieldValue(num, typ, b)
		if k < 0 {
			return wireError(k)
		}
		b = b[k:]
	}
	mp.Insert(key, val)
	return nil
}

// value decodes a scalar, string or bytes value of kind. Payloads are
// copied onto a.
func (d *decoder) value(b []byte, a *arena.Arena, kind protoreflect.Kind, validate bool) (Value, int, error) {
	switch wireTypeOf(kind) {
	case protowire.VarintType:
		raw, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return Value{}, 0, wireError(n)
		}
		return varintValue(kind, raw), n, nil
	case protowire.Fixed32Type:
		raw, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return Value{}, 0, wireError(n)
		}
		switch kind {
		case protoreflect.FloatKind:
			return ValueOfFloat(math.Float32frombits(raw)), n, nil
		case protoreflect.Sfixed32Kind:
			return ValueOfInt32(int32(raw)), n, nil
		default:
			return ValueOfUint32(raw), n, nil
		}
	case protowire.Fixed64Type:
		raw, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			return Value{}, 0, wireError(n)
		}
		switch kind {
		case protoreflect.DoubleKind:
			return ValueOfDouble(math.Float64frombits(raw)), n, nil
		case protoreflect.Sfixed64Kind:
			return ValueOfInt64(int64(raw)), n, nil
		default:
			return ValueOfUint64(raw), n, nil
		}
	}

	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return Value{}, 0, wireError(n)
	}
	if kind == protoreflect.StringKind {
		if validate && !utf8.Valid(v) {
			return Value{}, 0, ErrInvalidUTF8
		}
		if len(v) == 0 {
			return ValueOfString(""), n, nil
		}
		return ValueOfString(a.CopyString(unsafe.String(unsafe.SliceData(v), len(v)))), n, nil
	}
	return ValueOfBytes(a.CopyBytes(v)), n, nil
}

func varintValue(kind protoreflect.Kind, raw uint64) Value {
	switch kind {
	case protoreflect.BoolKind:
		return ValueOfBool(protowire.DecodeBool(raw))
	case protoreflect.EnumKind:
		return ValueOfEnum(int32(raw))
	case protoreflect.Int32Kind:
		return ValueOfInt32(int32(raw))
	case protoreflect.Sint32Kind:
		return ValueOfInt32(int32(protowire.DecodeZigZag(raw & math.MaxUint32)))
	case protoreflect.Uint32Kind:
		return ValueOfUint32(uint32(raw))
	case protoreflect.Int64Kind:
		return ValueOfInt64(int64(raw))
	case protoreflect.Sint64Kind:
		return ValueOfInt64(protowire.DecodeZigZag(raw))
	default:
		return ValueOfUint64(raw)
	}
}
