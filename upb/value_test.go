package upb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/pavanmanishd/protoarena/arena"
)

func TestValueRoundTrip(t *testing.T) {
	assert.True(t, ValueOfBool(true).Bool())
	assert.False(t, ValueOfBool(false).Bool())
	assert.Equal(t, int32(-7), ValueOfInt32(-7).Int32())
	assert.Equal(t, int32(math.MinInt32), ValueOfInt32(math.MinInt32).Int32())
	assert.Equal(t, uint32(math.MaxUint32), ValueOfUint32(math.MaxUint32).Uint32())
	assert.Equal(t, int64(math.MinInt64), ValueOfInt64(math.MinInt64).Int64())
	assert.Equal(t, uint64(math.MaxUint64), ValueOfUint64(math.MaxUint64).Uint64())
	assert.Equal(t, int32(-3), ValueOfEnum(-3).Enum())
	assert.Equal(t, float32(1.5), ValueOfFloat(1.5).Float())
	assert.Equal(t, -2.25, ValueOfDouble(-2.25).Double())
	assert.Equal(t, "hello", ValueOfString("hello").String())
	assert.Equal(t, []byte("raw"), ValueOfBytes([]byte("raw")).Bytes())
	assert.Equal(t, "", ValueOfString("").String())
	assert.Empty(t, ValueOfBytes(nil).Bytes())

	a := arena.NewArena(1024)
	tt := newTestTables(t)
	m := NewMessage(tt.child, a)
	assert.Same(t, m, ValueOfMessage(m).Message())
	arr := NewArray(a, CTypeInt32)
	assert.Same(t, arr, ValueOfArray(arr).Array())
	mp := NewMap(a, CTypeString, CTypeString)
	assert.Same(t, mp, ValueOfMap(mp).Map())
}

func TestValueWrongTypePanics(t *testing.T) {
	v := ValueOfInt32(1)
	assert.Panics(t, func() { v.Int64() })
	assert.Panics(t, func() { v.Bool() })
	assert.Panics(t, func() { v.Message() })
	assert.Panics(t, func() { ValueOfEnum(1).Int32() })
}

func TestValueStringFormatsNonStrings(t *testing.T) {
	assert.Equal(t, "42", ValueOfInt32(42).String())
	assert.Equal(t, "true", ValueOfBool(true).String())
	assert.Equal(t, "-9", ValueOfInt64(-9).String())
	assert.Equal(t, "<invalid>", Value{}.String())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, ValueOfString("x").Equal(ValueOfString(string([]byte{'x'}))))
	assert.False(t, ValueOfString("x").Equal(ValueOfBytes([]byte("x"))))
	assert.True(t, ValueOfDouble(0).Equal(ValueOfDouble(math.Copysign(0, -1))))
	assert.False(t, ValueOfDouble(math.NaN()).Equal(ValueOfDouble(math.NaN())))
	assert.True(t, ValueOfUint64(5).Equal(ValueOfUint64(5)))
}

func TestZeroValue(t *testing.T) {
	for _, ct := range []CType{CTypeBool, CTypeFloat, CTypeInt32, CTypeUint32, CTypeEnum, CTypeDouble, CTypeInt64, CTypeUint64, CTypeString, CTypeBytes} {
		v := ZeroValue(ct)
		require.True(t, v.IsValid(), ct.String())
		assert.True(t, v.IsZero(), ct.String())
		assert.Equal(t, ct, v.Type())
	}
	assert.False(t, ZeroValue(CTypeMessage).IsValid())
}

func TestCTypeOf(t *testing.T) {
	tests := []struct {
		kind protoreflect.Kind
		want CType
	}{
		{protoreflect.BoolKind, CTypeBool},
		{protoreflect.Sint32Kind, CTypeInt32},
		{protoreflect.Sfixed32Kind, CTypeInt32},
		{protoreflect.Fixed32Kind, CTypeUint32},
		{protoreflect.Sint64Kind, CTypeInt64},
		{protoreflect.Fixed64Kind, CTypeUint64},
		{protoreflect.FloatKind, CTypeFloat},
		{protoreflect.DoubleKind, CTypeDouble},
		{protoreflect.EnumKind, CTypeEnum},
		{protoreflect.StringKind, CTypeString},
		{protoreflect.BytesKind, CTypeBytes},
		{protoreflect.GroupKind, CTypeMessage},
		{protoreflect.Kind(0), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CTypeOf(tt.kind), tt.kind.String())
	}
}

func TestCTypeProperties(t *testing.T) {
	assert.Equal(t, 1, CTypeBool.Size())
	assert.Equal(t, 4, CTypeEnum.Size())
	assert.Equal(t, 8, CTypeDouble.Size())
	assert.Equal(t, 0, CTypeString.Size())
	assert.False(t, CTypeMessage.Packable())

	assert.True(t, CTypeBytes.IsMapKey())
	assert.False(t, CTypeFloat.IsMapKey())
	assert.False(t, CTypeDouble.IsMapKey())
	assert.False(t, CTypeEnum.IsMapKey())
	assert.False(t, CTypeMessage.IsMapKey())

	assert.Equal(t, "uint64", CTypeUint64.String())
	assert.Equal(t, "CType(99)", CType(99).String())
}

func TestExclusive(t *testing.T) {
	var ex Exclusive

	first := ex.Acquire()
	reborrow := first
	require.True(t, first.Valid())
	require.True(t, reborrow.Valid())

	second := ex.Acquire()
	assert.False(t, first.Valid())
	assert.False(t, reborrow.Valid())
	assert.True(t, second.Valid())
	assert.Panics(t, first.Check)
	assert.NotPanics(t, second.Check)

	ex.Invalidate()
	assert.False(t, second.Valid())

	assert.True(t, Ticket{}.Valid())
}
