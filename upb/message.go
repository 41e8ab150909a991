package upb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/pavanmanishd/protoarena/arena"
	"github.com/pavanmanishd/protoarena/internal/logging"
)

// noCopy makes go vet flag copies of storage types after first use.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Message is the raw storage of one message, laid out by its MiniTable and
// allocated on an arena. Every sub-message, array and map reachable from it
// lives on the same arena.
type Message struct {
	_       noCopy
	table   *MiniTable
	arena   *arena.Arena
	slots   []Value
	hasbits []uint64
	cases   []protowire.Number // active member of each oneof, 0 if none
	unknown []byte             // arena memory
	ex      []Exclusive        // one per slot
	self    Exclusive
	frozen  bool
}

// NewMessage creates an empty message of type t on a.
func NewMessage(t *MiniTable, a *arena.Arena) *Message {
	m := &Message{table: t, arena: a}
	m.alloc()
	return m
}

func (m *Message) alloc() {
	t := m.table
	m.slots = make([]Value, t.numSlots)
	m.hasbits = make([]uint64, (t.numHasbits+63)/64)
	m.cases = make([]protowire.Number, len(t.oneofs))
	if len(m.ex) != t.numSlots {
		m.ex = make([]Exclusive, t.numSlots)
	}
}

// Table and Arena return the layout and the owning arena of m.
func (m *Message) Table() *MiniTable   { return m.table }
func (m *Message) Arena() *arena.Arena { return m.arena }

// Freeze makes every later mutation of m panic. Sub-messages are not frozen.
func (m *Message) Freeze()        { m.frozen = true }
func (m *Message) IsFrozen() bool { return m.frozen }

// Get returns the value of f, or its default when unset. Unset messages,
// arrays and maps read as an invalid Value.
func (m *Message) Get(f *Field) Value {
	if !m.owns(f) {
		return defaultValue(f)
	}
	if f.oneof >= 0 && m.cases[f.oneof] != f.Number {
		return defaultValue(f)
	}
	if v := m.slots[f.slot]; v.IsValid() {
		return v
	}
	return defaultValue(f)
}

// Set stores v in f and marks f present. Messages, arrays and maps must
// already live on m's arena.
func (m *Message) Set(f *Field, v Value) {
	m.checkMutable()
	m.mustOwn(f)
	switch {
	case f.IsMap():
		mp := v.Map()
		if mp.key != f.key || mp.val != f.val {
			panic(fmt.Sprintf("upb: map<%v, %v> stored in %v", mp.key, mp.val, f))
		}
	case f.IsRepeated():
		if arr := v.Array(); arr.typ != f.ctype {
			panic(fmt.Sprintf("upb: %v array stored in %v", arr.typ, f))
		}
	default:
		v.must(f.ctype)
	}
	checkSameArena(m.arena, v)
	m.slots[f.slot] = v
	m.markPresent(f)
}

// Has reports whether f is set. Fields without explicit presence are set
// when they differ from their default; repeated and map fields when they
// are not empty.
func (m *Message) Has(f *Field) bool {
	if !m.owns(f) {
		return false
	}
	switch {
	case f.oneof >= 0:
		return m.cases[f.oneof] == f.Number
	case f.hasbit >= 0:
		return m.hasbits[f.hasbit/64]&(1<<(f.hasbit%64)) != 0
	}
	v := m.slots[f.slot]
	switch v.typ {
	case CTypeArray:
		return v.Array().Size() > 0
	case CTypeMap:
		return v.Map().Size() > 0
	default:
		return !v.IsZero()
	}
}

// ClearField resets f to unset.
func (m *Message) ClearField(f *Field) {
	m.checkMutable()
	m.mustOwn(f)
	if f.oneof >= 0 {
		if m.cases[f.oneof] != f.Number {
			return
		}
		m.cases[f.oneof] = 0
	}
	if f.hasbit >= 0 {
		m.hasbits[f.hasbit/64] &^= 1 << (f.hasbit % 64)
	}
	m.slots[f.slot] = Value{}
}

// WhichOneof returns the set member of the named oneof, or nil.
func (m *Message) WhichOneof(name string) *Field {
	idx := m.table.oneofIndex(name)
	if idx < 0 || idx >= len(m.cases) {
		return nil
	}
	if n := m.cases[idx]; n != 0 {
		return m.table.byNum[n]
	}
	return nil
}

// GetArray returns the array of f, or nil when it was never created.
func (m *Message) GetArray(f *Field) *Array {
	if v := m.Get(f); v.typ == CTypeArray {
		return v.Array()
	}
	return nil
}

// GetMap returns the map of f, or nil when it was never created.
func (m *Message) GetMap(f *Field) *Map {
	if v := m.Get(f); v.typ == CTypeMap {
		return v.Map()
	}
	return nil
}

// GetMessage returns the sub-message of f, or nil when unset.
func (m *Message) GetMessage(f *Field) *Message {
	if v := m.Get(f); v.typ == CTypeMessage {
		return v.Message()
	}
	return nil
}

// GetOrCreateMutableArray returns the array of repeated field f, creating it
// on first use.
func (m *Message) GetOrCreateMutableArray(f *Field) *Array {
	m.checkMutable()
	m.mustOwn(f)
	if !f.IsRepeated() {
		panic(fmt.Sprintf("upb: %v is not a repeated field", f))
	}
	if v := m.slots[f.slot]; v.IsValid() {
		return v.Array()
	}
	arr := NewArray(m.arena, f.ctype)
	m.slots[f.slot] = ValueOfArray(arr)
	return arr
}

// GetOrCreateMutableMap returns the map of f, creating it on first use.
func (m *Message) GetOrCreateMutableMap(f *Field) *Map {
	m.checkMutable()
	m.mustOwn(f)
	if !f.IsMap() {
		panic(fmt.Sprintf("upb: %v is not a map field", f))
	}
	if v := m.slots[f.slot]; v.IsValid() {
		return v.Map()
	}
	mp := NewMap(m.arena, f.key, f.val)
	m.slots[f.slot] = ValueOfMap(mp)
	return mp
}

// GetOrCreateMutableMessage returns the sub-message of f, creating an empty
// one and marking f present when unset.
func (m *Message) GetOrCreateMutableMessage(f *Field) *Message {
	m.checkMutable()
	m.mustOwn(f)
	if !f.IsSingular() || f.ctype != CTypeMessage {
		panic(fmt.Sprintf("upb: %v is not a singular message field", f))
	}
	if sub := m.GetMessage(f); sub != nil {
		return sub
	}
	sub := NewMessage(f.sub(), m.arena)
	m.slots[f.slot] = ValueOfMessage(sub)
	m.markPresent(f)
	return sub
}

// Unknown returns the preserved bytes of fields m's table does not declare.
func (m *Message) Unknown() []byte { return m.unknown }

// AddUnknown appends encoded fields to the unknown set.
func (m *Message) AddUnknown(b []byte) {
	m.checkMutable()
	if len(b) == 0 {
		return
	}
	old := len(m.unknown)
	buf := m.arena.Resize(m.unknown,
		arena.Layout{Size: old, Align: 1},
		arena.Layout{Size: old + len(b), Align: 1})
	copy(buf[old:], b)
	m.unknown = buf
}

// DiscardUnknown drops the unknown set.
func (m *Message) DiscardUnknown() {
	m.checkMutable()
	m.unknown = nil
}

// Clear resets every field to unset and retires field mutators.
func (m *Message) Clear() {
	m.checkMutable()
	clear(m.slots)
	clear(m.hasbits)
	clear(m.cases)
	m.unknown = nil
	m.invalidateFields()
}

// ReplaceFrom moves the contents of src into m. Both must share a table and
// an arena; src is left empty.
func (m *Message) ReplaceFrom(src *Message) {
	m.checkMutable()
	if src == m {
		return
	}
	if src.table != m.table || src.arena != m.arena {
		panic("upb: ReplaceFrom needs a message of the same type on the same arena")
	}
	m.slots, m.hasbits, m.cases, m.unknown = src.slots, src.hasbits, src.cases, src.unknown
	src.alloc()
	src.unknown = nil
	m.invalidateFields()
}

// Exclusive returns the guard of f's storage slot. Members of a oneof share
// one guard.
func (m *Message) Exclusive(f *Field) *Exclusive {
	m.mustOwn(f)
	return &m.ex[f.slot]
}

// SelfExclusive returns the guard for mutators of the whole message.
func (m *Message) SelfExclusive() *Exclusive { return &m.self }

func (m *Message) invalidateFields() {
	for i := range m.ex {
		m.ex[i].Invalidate()
	}
}

func (m *Message) markPresent(f *Field) {
	if f.oneof >= 0 {
		m.cases[f.oneof] = f.Number
	}
	if f.hasbit >= 0 {
		m.hasbits[f.hasbit/64] |= 1 << (f.hasbit % 64)
	}
}

// owns reports whether f belongs to m's table. A message without storage
// (the empty singleton) reads every field as default.
func (m *Message) owns(f *Field) bool {
	if f.table == m.table {
		return true
	}
	if len(m.slots) == 0 && len(m.table.fields) == 0 {
		return false
	}
	panic(fmt.Sprintf("upb: field %v used with message %s", f, m.table.name))
}

func (m *Message) mustOwn(f *Field) {
	if f.table != m.table {
		panic(fmt.Sprintf("upb: field %v used with message %s", f, m.table.name))
	}
}

func (m *Message) checkMutable() {
	if m.frozen {
		panic("upb: mutation of a frozen message")
	}
}

func defaultValue(f *Field) Value {
	if f.IsSingular() {
		return ZeroValue(f.ctype)
	}
	return Value{}
}

// checkSameArena panics when a message, array or map value is owned by an
// arena other than a. Installing it would leave a pointer into memory whose
// lifetime a does not control.
func checkSameArena(a *arena.Arena, v Value) {
	var owner *arena.Arena
	switch v.typ {
	case CTypeMessage:
		if v.ptr == nil {
			panic("upb: nil message value")
		}
		owner = v.Message().arena
	case CTypeArray:
		owner = v.Array().arena
	case CTypeMap:
		owner = v.Map().arena
	default:
		return
	}
	if owner != a {
		l := logging.For("upb")
		l.Error().Str("type", v.typ.String()).Msg("cross-arena value rejected")
		panic("upb: value belongs to a different arena")
	}
}
