package proto

import (
	"fmt"
	"iter"

	"github.com/pavanmanishd/protoarena/arena"
	"github.com/pavanmanishd/protoarena/upb"
)

// Map is an owned, arena-backed association from K to V, reached through
// MapView and MapMut. Keys are scalars, strings or bytes.
type Map[K, V any] struct {
	arena *arena.Arena
	m     *upb.Map
	key   Conv[K]
	val   Conv[V]
}

// NewMap creates an empty map on its own arena. It panics when k cannot be a
// map key.
func NewMap[K, V any](k Conv[K], v Conv[V]) *Map[K, V] {
	a := arena.New()
	return &Map[K, V]{arena: a, m: upb.NewMap(a, k.CType(), v.CType()), key: k, val: v}
}

// AsView returns a read-only view of m.
func (m *Map[K, V]) AsView() MapView[K, V] {
	return MapView[K, V]{m: m.m, key: m.key, val: m.val}
}

// AsMut returns a mutator and retires every earlier one.
func (m *Map[K, V]) AsMut() MapMut[K, V] {
	return MapMut[K, V]{MapView: m.AsView(), ticket: m.m.Exclusive().Acquire()}
}

// Free releases the arena. The map must not be used afterwards.
func (m *Map[K, V]) Free() { m.arena.Free() }

// MapView is a read-only view of a map field.
type MapView[K, V any] struct {
	m   *upb.Map
	key Conv[K]
	val Conv[V]
}

func (v MapView[K, V]) AsView() MapView[K, V]   { return v }
func (v MapView[K, V]) IntoView() MapView[K, V] { return v }

func (v MapView[K, V]) Len() int      { return v.m.Size() }
func (v MapView[K, V]) IsEmpty() bool { return v.m.Size() == 0 }

// Get returns the value stored under k.
func (v MapView[K, V]) Get(k K) (V, bool) {
	got, ok := v.m.Get(v.key.Pack(k))
	if !ok {
		var zero V
		return zero, false
	}
	return v.val.Unpack(got), true
}

// All yields the entries in unspecified order.
func (v MapView[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, val := range v.m.All() {
			if !yield(v.key.Unpack(k), v.val.Unpack(val)) {
				return
			}
		}
	}
}

// SetOn replaces the contents of m with a copy of v.
func (v MapView[K, V]) SetOn(m MapMut[K, V]) { m.CopyFrom(v) }

func (v MapView[K, V]) String() string {
	return fmt.Sprintf("MapView[%v, %v](len=%d)", v.key.CType(), v.val.CType(), v.Len())
}

// MapMut is the exclusive mutator of a map field.
type MapMut[K, V any] struct {
	MapView[K, V]
	ticket upb.Ticket
}

func (m MapMut[K, V]) AsView() MapView[K, V]   { return m.MapView }
func (m MapMut[K, V]) IntoView() MapView[K, V] { return m.MapView }
func (m MapMut[K, V]) AsMut() MapMut[K, V]     { return m }
func (m MapMut[K, V]) IntoMut() MapMut[K, V]   { return m }

// Insert stores v under k and reports whether k was newly added. False means
// an existing value was replaced. Strings and bytes are copied into the
// map's arena and messages are deep-cloned.
func (m MapMut[K, V]) Insert(k K, v V) bool {
	m.ticket.Check()
	a := m.m.Arena()
	return m.m.Insert(m.key.PackCopy(a, k), m.val.PackCopy(a, v)) == upb.MapInserted
}

// Remove deletes k and reports whether it was present.
func (m MapMut[K, V]) Remove(k K) bool {
	m.ticket.Check()
	_, ok := m.m.Delete(m.key.Pack(k))
	return ok
}

// Clear removes every entry.
func (m MapMut[K, V]) Clear() {
	m.ticket.Check()
	m.m.Clear()
}

// CopyFrom replaces the contents with a deep copy of src.
func (m MapMut[K, V]) CopyFrom(src MapView[K, V]) {
	m.ticket.Check()
	if src.m == m.m {
		return
	}
	m.m.CopyFrom(src.m)
}

func emptyMapView[K, V any](k Conv[K], v Conv[V]) MapView[K, V] {
	return MapView[K, V]{m: upb.EmptyMap(), key: k, val: v}
}
