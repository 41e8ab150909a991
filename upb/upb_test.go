package upb

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Field numbers of the tables built by newTestTables.
const (
	numI32      = 1
	numName     = 2
	numOpt      = 3
	numChild    = 4
	numNums     = 5
	numTags     = 6
	numCounts   = 7
	numChoiceA  = 8
	numChoiceB  = 9
	numKids     = 10
	numBlob     = 11
	numSint     = 12
	numFlag     = 13
	numRatio    = 14
	numFixed    = 15
	numChildren = 16
)

type testTables struct {
	parent *MiniTable
	child  *MiniTable
}

func newTestTables(t *testing.T) testTables {
	t.Helper()
	child, err := NewMiniTable("test.Child",
		FieldLayout{Number: 1, Name: "id", Kind: protoreflect.Int32Kind},
		FieldLayout{Number: 2, Name: "label", Kind: protoreflect.StringKind},
	)
	require.NoError(t, err)

	parent, err := NewMiniTable("test.Parent",
		FieldLayout{Number: numI32, Name: "i32", Kind: protoreflect.Int32Kind},
		FieldLayout{Number: numName, Name: "name", Kind: protoreflect.StringKind, ValidateUTF8: true},
		FieldLayout{Number: numOpt, Name: "opt", Kind: protoreflect.Int64Kind, Presence: true},
		FieldLayout{Number: numChild, Name: "child", Kind: protoreflect.MessageKind, Sub: child},
		FieldLayout{Number: numNums, Name: "nums", Kind: protoreflect.Int32Kind, Repeated: true, Packed: true},
		FieldLayout{Number: numTags, Name: "tags", Kind: protoreflect.StringKind, Repeated: true},
		FieldLayout{Number: numCounts, Name: "counts", Map: true, MapKey: protoreflect.StringKind, MapValue: protoreflect.Int64Kind},
		FieldLayout{Number: numChoiceA, Name: "a", Kind: protoreflect.Uint32Kind, Oneof: "choice"},
		FieldLayout{Number: numChoiceB, Name: "b", Kind: protoreflect.StringKind, Oneof: "choice"},
		FieldLayout{Number: numKids, Name: "kids", Kind: protoreflect.MessageKind, Repeated: true, Sub: child},
		FieldLayout{Number: numBlob, Name: "blob", Kind: protoreflect.BytesKind},
		FieldLayout{Number: numSint, Name: "sint", Kind: protoreflect.Sint64Kind},
		FieldLayout{Number: numFlag, Name: "flag", Kind: protoreflect.BoolKind},
		FieldLayout{Number: numRatio, Name: "ratio", Kind: protoreflect.DoubleKind},
		FieldLayout{Number: numFixed, Name: "fx", Kind: protoreflect.Fixed32Kind, Repeated: true},
		FieldLayout{Number: numChildren, Name: "children", Map: true, MapKey: protoreflect.Int32Kind, MapValue: protoreflect.MessageKind, Sub: child},
	)
	require.NoError(t, err)
	return testTables{parent: parent, child: child}
}

func (tt testTables) field(num int) *Field {
	return tt.parent.FieldByNumber(protowire.Number(num))
}
