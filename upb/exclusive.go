package upb

import "github.com/pavanmanishd/protoarena/internal/logging"

// Exclusive arbitrates mutable access to one storage slot: a field, a oneof,
// a standalone collection or a whole message. Every Acquire starts a new
// generation, and tickets from older generations stop working.
//
// The zero value is ready to use.
type Exclusive struct {
	gen uint64
}

// Acquire returns a ticket for the newest generation, invalidating every
// ticket handed out before.
func (e *Exclusive) Acquire() Ticket {
	e.gen++
	return Ticket{ex: e, gen: e.gen}
}

// Invalidate retires all outstanding tickets without issuing a new one.
func (e *Exclusive) Invalidate() {
	e.gen++
}

// Ticket is the proof of exclusive access carried by a mutator. Copies of a
// ticket share its generation, so reborrowed mutators stay valid together.
type Ticket struct {
	ex  *Exclusive
	gen uint64
}

// Valid reports whether no newer ticket has been acquired for the slot. The
// zero Ticket is always valid.
func (t Ticket) Valid() bool {
	return t.ex == nil || t.ex.gen == t.gen
}

// Check panics if t is stale.
func (t Ticket) Check() {
	if t.Valid() {
		return
	}
	l := logging.For("upb")
	l.Error().Uint64("generation", t.gen).Uint64("current", t.ex.gen).Msg("stale mutator")
	panic("upb: mutator used after a newer mutator was created for the same field")
}
