package upb

import (
	"sync"

	"github.com/pavanmanishd/protoarena/arena"
)

// Unset repeated, map and message fields read through these frozen
// singletons instead of allocating fresh empty storage.
var (
	emptyArena = sync.OnceValue(func() *arena.Arena {
		return arena.NewArena(arena.MallocAlign)
	})

	emptyTable = sync.OnceValue(func() *MiniTable {
		t, err := NewMiniTable("upb.Empty")
		if err != nil {
			panic(err)
		}
		return t
	})

	emptyArray = sync.OnceValue(func() *Array {
		a := &Array{arena: emptyArena()}
		a.Freeze()
		return a
	})

	emptyMap = sync.OnceValue(func() *Map {
		m := &Map{arena: emptyArena()}
		m.Freeze()
		return m
	})

	emptyMessage = sync.OnceValue(func() *Message {
		m := NewMessage(emptyTable(), emptyArena())
		m.Freeze()
		return m
	})
)

// EmptyArray returns the shared read-only empty array. It has no element
// type and every mutation panics.
func EmptyArray() *Array { return emptyArray() }

// EmptyMap returns the shared read-only empty map.
func EmptyMap() *Map { return emptyMap() }

// EmptyMessage returns the shared read-only empty message. Any field reads
// as its default.
func EmptyMessage() *Message { return emptyMessage() }
