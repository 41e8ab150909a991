// Package proto is the safe-access layer over the upb kernel: typed views and
// mutators for message fields whose storage lives on an arena.
//
// # Views and Mutators
//
// A View is a small copyable value granting read access to a field. A Mut
// grants exclusive read-write access. Creating a new Mut for a field retires
// every older Mut of that field (members of one oneof count as one field);
// using a retired Mut panics. AsMut and IntoMut re-borrow a Mut without
// retiring it.
//
//	m := proto.NewMessage(personTable)
//	defer m.Free()
//
//	mut := m.AsMut()
//	name.Mut(mut).Set("Ada")   // copied into the message's arena
//	tags.Mut(mut).Push("admin")
//	fmt.Println(name.Get(m.AsView()))
//
// # Presence
//
// Fields with explicit presence are reached through Entry, which reports
// whether the field is set and moves it between the present and absent
// states.
//
// # Collections
//
// Unset repeated and map fields read through shared, read-only empty
// singletons. Values pushed or inserted are copied into the collection's
// arena; message values are deep-cloned.
//
// # Serialization
//
// Serialize and Deserialize delegate to the upb codec. Deserialize either
// replaces the whole message or returns ErrParse and leaves it untouched.
//
// # Thread Safety
//
// Views may be read from several goroutines. Mutators must not be used
// concurrently with any other access to the same message.
package proto
