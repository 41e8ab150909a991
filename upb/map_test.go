package upb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/protoarena/arena"
)

func TestMapInsertStatus(t *testing.T) {
	m := NewMap(arena.NewArena(1024), CTypeString, CTypeInt64)

	assert.Equal(t, MapInserted, m.Insert(ValueOfString("a"), ValueOfInt64(1)))
	assert.Equal(t, MapReplaced, m.Insert(ValueOfString("a"), ValueOfInt64(2)))
	assert.True(t, m.Set(ValueOfString("b"), ValueOfInt64(3)))
	require.Equal(t, 2, m.Size())

	v, ok := m.Get(ValueOfString("a"))
	require.True(t, ok)
	assert.Equal(t, int64(2), v.Int64())

	_, ok = m.Get(ValueOfString("missing"))
	assert.False(t, ok)

	assert.Equal(t, "inserted", MapInserted.String())
	assert.Equal(t, "replaced", MapReplaced.String())
}

func TestMapDelete(t *testing.T) {
	m := NewMap(arena.NewArena(1024), CTypeInt32, CTypeString)
	m.Insert(ValueOfInt32(-1), ValueOfString("neg"))

	v, ok := m.Delete(ValueOfInt32(-1))
	require.True(t, ok)
	assert.Equal(t, "neg", v.String())

	_, ok = m.Delete(ValueOfInt32(-1))
	assert.False(t, ok)
	assert.Equal(t, 0, m.Size())
}

func TestMapKeyKinds(t *testing.T) {
	a := arena.NewArena(1024)

	bm := NewMap(a, CTypeBytes, CTypeBool)
	key := []byte("k1")
	bm.Insert(ValueOfBytes(key), ValueOfBool(true))
	key[0] = 'x'
	_, ok := bm.Get(ValueOfBytes([]byte("k1")))
	assert.True(t, ok, "bytes keys compare by content at insert time")

	boolMap := NewMap(a, CTypeBool, CTypeUint64)
	boolMap.Insert(ValueOfBool(true), ValueOfUint64(1))
	boolMap.Insert(ValueOfBool(false), ValueOfUint64(0))
	assert.Equal(t, 2, boolMap.Size())

	for _, bad := range []CType{CTypeFloat, CTypeDouble, CTypeEnum, CTypeMessage} {
		assert.Panics(t, func() { NewMap(a, bad, CTypeInt32) }, bad.String())
	}
	assert.Panics(t, func() { NewMap(a, CTypeInt32, CTypeArray) })
}

func TestMapTypeChecks(t *testing.T) {
	m := NewMap(arena.NewArena(1024), CTypeString, CTypeString)
	assert.Panics(t, func() { m.Insert(ValueOfInt32(1), ValueOfString("x")) })
	assert.Panics(t, func() { m.Insert(ValueOfString("x"), ValueOfInt32(1)) })
}

func TestMapClearAndAll(t *testing.T) {
	m := NewMap(arena.NewArena(1024), CTypeUint32, CTypeUint32)
	for i := uint32(0); i < 10; i++ {
		m.Insert(ValueOfUint32(i), ValueOfUint32(i*i))
	}
	sum := uint32(0)
	for k, v := range m.All() {
		assert.Equal(t, k.Uint32()*k.Uint32(), v.Uint32())
		sum += k.Uint32()
	}
	assert.Equal(t, uint32(45), sum)

	m.Clear()
	assert.Equal(t, 0, m.Size())
	for range m.All() {
		t.Fatal("cleared map yielded an entry")
	}
}

func TestMapDeepClone(t *testing.T) {
	tt := newTestTables(t)
	src := arena.NewArena(1024)
	dst := arena.NewArena(1024)

	m := NewMap(src, CTypeString, CTypeMessage)
	child := NewMessage(tt.child, src)
	child.Set(tt.child.FieldByNumber(2), ValueOfString(src.CopyString("label")))
	m.Insert(ValueOfString(src.CopyString("k")), ValueOfMessage(child))

	clone := m.DeepClone(dst)
	require.Equal(t, 1, clone.Size())
	v, ok := clone.Get(ValueOfString("k"))
	require.True(t, ok)
	assert.NotSame(t, child, v.Message())
	assert.Same(t, dst, v.Message().Arena())
	assert.Equal(t, "label", v.Message().Get(tt.child.FieldByNumber(2)).String())
}

func TestMapRejectsForeignMessages(t *testing.T) {
	tt := newTestTables(t)
	m := NewMap(arena.NewArena(1024), CTypeInt32, CTypeMessage)
	foreign := NewMessage(tt.child, arena.NewArena(1024))
	assert.Panics(t, func() { m.Insert(ValueOfInt32(1), ValueOfMessage(foreign)) })
}

func TestFrozenMap(t *testing.T) {
	m := NewMap(arena.NewArena(64), CTypeInt32, CTypeInt32)
	m.Freeze()
	assert.PanicsWithValue(t, "upb: mutation of a frozen map", func() { m.Insert(ValueOfInt32(1), ValueOfInt32(1)) })
	assert.Panics(t, m.Clear)
	_, ok := m.Get(ValueOfInt32(1))
	assert.False(t, ok)
}
