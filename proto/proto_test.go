package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/pavanmanishd/protoarena/upb"
)

type color int32

const (
	colorRed color = iota
	colorGreen
	colorBlue
)

// allTypes is the accessor surface a code generator would emit for the
// test.AllTypes message.
type allTypes struct {
	table *upb.MiniTable
	child *upb.MiniTable

	optInt64   ScalarField[int64]
	optBool    ScalarField[bool]
	optBytes   ScalarField[[]byte]
	optString  ScalarField[string]
	plainInt32 ScalarField[int32]
	childMsg   MessageField
	nums       RepeatedField[int32]
	strs       RepeatedField[string]
	kids       RepeatedField[MessageView]
	favorite   ScalarField[color]
	colors     RepeatedField[color]
	strMap     MapField[string, string]
	bytesMap   MapField[int32, []byte]
	kidMap     MapField[int32, MessageView]
	choiceInt  ScalarField[uint32]
	choiceStr  ScalarField[string]

	childID   ScalarField[int32]
	childName ScalarField[string]
}

func newAllTypes(t *testing.T) allTypes {
	t.Helper()
	child, err := upb.NewMiniTable("test.Child",
		upb.FieldLayout{Number: 1, Name: "id", Kind: protoreflect.Int32Kind},
		upb.FieldLayout{Number: 2, Name: "name", Kind: protoreflect.StringKind},
	)
	require.NoError(t, err)

	table, err := upb.NewMiniTable("test.AllTypes",
		upb.FieldLayout{Number: 1, Name: "optional_int64", Kind: protoreflect.Int64Kind, Presence: true},
		upb.FieldLayout{Number: 2, Name: "optional_bool", Kind: protoreflect.BoolKind, Presence: true},
		upb.FieldLayout{Number: 3, Name: "optional_bytes", Kind: protoreflect.BytesKind, Presence: true},
		upb.FieldLayout{Number: 4, Name: "optional_string", Kind: protoreflect.StringKind, Presence: true, ValidateUTF8: true},
		upb.FieldLayout{Number: 5, Name: "plain_int32", Kind: protoreflect.Int32Kind},
		upb.FieldLayout{Number: 6, Name: "child", Kind: protoreflect.MessageKind, Sub: child},
		upb.FieldLayout{Number: 7, Name: "nums", Kind: protoreflect.Int32Kind, Repeated: true, Packed: true},
		upb.FieldLayout{Number: 8, Name: "strs", Kind: protoreflect.StringKind, Repeated: true},
		upb.FieldLayout{Number: 9, Name: "kids", Kind: protoreflect.MessageKind, Repeated: true, Sub: child},
		upb.FieldLayout{Number: 10, Name: "color", Kind: protoreflect.EnumKind},
		upb.FieldLayout{Number: 11, Name: "colors", Kind: protoreflect.EnumKind, Repeated: true, Packed: true},
		upb.FieldLayout{Number: 12, Name: "map_string_string", Map: true, MapKey: protoreflect.StringKind, MapValue: protoreflect.StringKind},
		upb.FieldLayout{Number: 13, Name: "map_int32_bytes", Map: true, MapKey: protoreflect.Int32Kind, MapValue: protoreflect.BytesKind},
		upb.FieldLayout{Number: 14, Name: "map_int32_child", Map: true, MapKey: protoreflect.Int32Kind, MapValue: protoreflect.MessageKind, Sub: child},
		upb.FieldLayout{Number: 15, Name: "choice_int", Kind: protoreflect.Uint32Kind, Oneof: "choice"},
		upb.FieldLayout{Number: 16, Name: "choice_str", Kind: protoreflect.StringKind, Oneof: "choice"},
	)
	require.NoError(t, err)

	return allTypes{
		table: table,
		child: child,

		optInt64:   NewScalarField(table, 1, Int64),
		optBool:    NewScalarField(table, 2, Bool),
		optBytes:   NewScalarField(table, 3, Bytes),
		optString:  NewScalarField(table, 4, String),
		plainInt32: NewScalarField(table, 5, Int32),
		childMsg:   NewMessageField(table, 6),
		nums:       NewRepeatedField(table, 7, Int32),
		strs:       NewRepeatedField(table, 8, String),
		kids:       NewRepeatedField(table, 9, MessageOf(child)),
		favorite:   NewScalarField(table, 10, Enum[color]()),
		colors:     NewRepeatedField(table, 11, Enum[color]()),
		strMap:     NewMapField(table, 12, String, String),
		bytesMap:   NewMapField(table, 13, Int32, Bytes),
		kidMap:     NewMapField(table, 14, Int32, MessageOf(child)),
		choiceInt:  NewScalarField(table, 15, Uint32),
		choiceStr:  NewScalarField(table, 16, String),

		childID:   NewScalarField(child, 1, Int32),
		childName: NewScalarField(child, 2, String),
	}
}

// newMessage creates a message of at and frees it when the test ends.
func (at allTypes) newMessage(t *testing.T) *Message {
	m := NewMessage(at.table)
	t.Cleanup(m.Free)
	return m
}

// newChild creates a standalone child message with the given id.
func (at allTypes) newChild(t *testing.T, id int32, name string) *Message {
	c := NewMessage(at.child)
	t.Cleanup(c.Free)
	mut := c.AsMut()
	at.childID.Mut(mut).Set(id)
	at.childName.Mut(mut).Set(name)
	return c
}
