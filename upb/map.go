package upb

import (
	"fmt"
	"iter"

	"github.com/pavanmanishd/protoarena/arena"
)

// MapInsertStatus is the outcome of Map.Insert.
type MapInsertStatus int

const (
	// MapInserted means the key was not present before.
	MapInserted MapInsertStatus = iota
	// MapReplaced means an existing value was overwritten.
	MapReplaced
)

// String returns "inserted" or "replaced".
func (s MapInsertStatus) String() string {
	switch s {
	case MapInserted:
		return "inserted"
	case MapReplaced:
		return "replaced"
	default:
		return fmt.Sprintf("MapInsertStatus(%d)", int(s))
	}
}

// mapKey is the comparable form of a key Value. Scalars use num; string and
// bytes keys use str.
type mapKey struct {
	num uint64
	str string
}

type mapEntry struct {
	key Value
	val Value
}

// Map is the storage of a map field. Iteration order is unspecified.
type Map struct {
	_       noCopy
	arena   *arena.Arena
	key     CType
	val     CType
	entries map[mapKey]mapEntry
	frozen  bool
	ex      Exclusive
}

// NewMap creates an empty map on a. It panics if key is not a valid key type
// or val is not a valid value type.
func NewMap(a *arena.Arena, key, val CType) *Map {
	if !key.IsMapKey() {
		panic(fmt.Sprintf("upb: %v is not a valid map key type", key))
	}
	if !val.IsElement() {
		panic(fmt.Sprintf("upb: %v is not a valid map value type", val))
	}
	return &Map{arena: a, key: key, val: val}
}

// Arena, KeyType, ValueType and Size describe the map.
func (m *Map) Arena() *arena.Arena { return m.arena }
func (m *Map) KeyType() CType      { return m.key }
func (m *Map) ValueType() CType    { return m.val }
func (m *Map) Size() int           { return len(m.entries) }

// Exclusive returns the guard for mutators of a standalone map.
func (m *Map) Exclusive() *Exclusive { return &m.ex }

func (m *Map) Freeze()        { m.frozen = true }
func (m *Map) IsFrozen() bool { return m.frozen }

// Get looks up k.
func (m *Map) Get(k Value) (Value, bool) {
	if len(m.entries) == 0 {
		return Value{}, false
	}
	m.checkKey(k)
	e, ok := m.entries[keyOf(k)]
	return e.val, ok
}

// Insert stores v under k. The caller copies string and bytes payloads into
// the map's arena beforehand.
func (m *Map) Insert(k, v Value) MapInsertStatus {
	m.checkMutable()
	m.checkKey(k)
	m.checkValue(v)
	if m.entries == nil {
		m.entries = make(map[mapKey]mapEntry)
	}
	mk := keyOf(k)
	_, replaced := m.entries[mk]
	m.entries[mk] = mapEntry{key: k, val: v}
	if replaced {
		return MapReplaced
	}
	return MapInserted
}

// Set stores v under k and reports success.
func (m *Map) Set(k, v Value) bool {
	m.Insert(k, v)
	return true
}

// Delete removes k, returning the removed value.
func (m *Map) Delete(k Value) (Value, bool) {
	m.checkMutable()
	m.checkKey(k)
	mk := keyOf(k)
	e, ok := m.entries[mk]
	if ok {
		delete(m.entries, mk)
	}
	return e.val, ok
}

// Clear removes every entry.
func (m *Map) Clear() {
	m.checkMutable()
	clear(m.entries)
}

// All iterates over the entries in unspecified order.
func (m *Map) All() iter.Seq2[Value, Value] {
	return func(yield func(Value, Value) bool) {
		for _, e := range m.entries {
			if !yield(e.key, e.val) {
				return
			}
		}
	}
}

// CopyFrom replaces the contents of m with a deep copy of src.
func (m *Map) CopyFrom(src *Map) {
	m.checkMutable()
	if src == m {
		return
	}
	if src.Size() > 0 && (src.key != m.key || src.val != m.val) {
		panic(fmt.Sprintf("upb: copy of map<%v, %v> into map<%v, %v>", src.key, src.val, m.key, m.val))
	}
	clear(m.entries)
	for _, e := range src.entries {
		if m.entries == nil {
			m.entries = make(map[mapKey]mapEntry, len(src.entries))
		}
		k := copyValue(e.key, m.arena)
		m.entries[keyOf(k)] = mapEntry{key: k, val: copyValue(e.val, m.arena)}
	}
}

// DeepClone returns a copy of m allocated on dst.
func (m *Map) DeepClone(dst *arena.Arena) *Map {
	out := &Map{arena: dst, key: m.key, val: m.val}
	out.CopyFrom(m)
	return out
}

func (m *Map) checkMutable() {
	if m.frozen {
		panic("upb: mutation of a frozen map")
	}
}

func (m *Map) checkKey(k Value) {
	if k.typ != m.key {
		panic(fmt.Sprintf("upb: %v key used with map keyed by %v", k.typ, m.key))
	}
}

func (m *Map) checkValue(v Value) {
	if v.typ != m.val {
		panic(fmt.Sprintf("upb: %v value stored in map of %v", v.typ, m.val))
	}
	if v.typ == CTypeMessage {
		checkSameArena(m.arena, v)
	}
}

func keyOf(k Value) mapKey {
	switch k.typ {
	case CTypeString, CTypeBytes:
		return mapKey{str: string(k.data())}
	default:
		return mapKey{num: k.num}
	}
}
