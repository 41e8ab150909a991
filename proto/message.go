package proto

import (
	"sync/atomic"

	"github.com/pavanmanishd/protoarena/arena"
	"github.com/pavanmanishd/protoarena/internal/logging"
	"github.com/pavanmanishd/protoarena/upb"
)

var decodeOptions atomic.Pointer[upb.DecodeOptions]

func init() {
	SetDecodeOptions(upb.DecodeOptions{})
}

// SetDecodeOptions changes the limits Deserialize applies process-wide.
func SetDecodeOptions(opts upb.DecodeOptions) {
	decodeOptions.Store(&opts)
}

// DecodeOptions returns the limits Deserialize applies.
func DecodeOptions() upb.DecodeOptions {
	return *decodeOptions.Load()
}

// Message is an owned message together with the arena backing it.
type Message struct {
	arena *arena.Arena
	raw   *upb.Message
}

// NewMessage creates an empty message of type t on a fresh arena.
func NewMessage(t *upb.MiniTable) *Message {
	a := arena.New()
	return &Message{arena: a, raw: upb.NewMessage(t, a)}
}

// Arena and Table return the backing arena and the message type.
func (m *Message) Arena() *arena.Arena  { return m.arena }
func (m *Message) Table() *upb.MiniTable { return m.raw.Table() }

// Raw exposes the kernel storage to code that drives upb directly.
func (m *Message) Raw() *upb.Message { return m.raw }

// AsView returns a read-only view of m.
func (m *Message) AsView() MessageView {
	return MessageView{raw: m.raw, table: m.raw.Table()}
}

// AsMut returns a mutator of the whole message and retires every earlier one.
func (m *Message) AsMut() MessageMut {
	return MessageMut{MessageView: m.AsView(), ticket: m.raw.SelfExclusive().Acquire()}
}

// Clear resets every field. Outstanding field mutators are retired.
func (m *Message) Clear() { m.raw.Clear() }

// Serialize encodes the message.
func (m *Message) Serialize() *SerializedData { return serialize(m.raw) }

// Deserialize replaces the contents of m with the message encoded in b. On
// failure m is left untouched and ErrParse is returned. On success every
// outstanding field mutator is retired.
func (m *Message) Deserialize(b []byte) error {
	scratch := upb.NewMessage(m.raw.Table(), m.arena)
	if err := upb.Decode(b, scratch, DecodeOptions()); err != nil {
		l := logging.For("proto")
		l.Debug().Err(err).Str("message", m.raw.Table().Name()).Int("bytes", len(b)).Msg("deserialize failed")
		return ErrParse
	}
	m.raw.ReplaceFrom(scratch)
	return nil
}

// Clone returns a deep copy of m on a fresh arena.
func (m *Message) Clone() *Message {
	a := arena.New()
	return &Message{arena: a, raw: m.raw.DeepClone(a)}
}

// Free releases the arena and everything allocated on it. Views and mutators
// of m must not be used afterwards.
func (m *Message) Free() {
	if !m.arena.IsFreed() {
		l := logging.For("proto")
		if e := l.Debug(); e.Enabled() {
			e.Str("message", m.raw.Table().Name()).Object("arena", m.arena.Metrics()).Msg("message freed")
		}
	}
	m.arena.Free()
}

// MessageView is a read-only view of a message.
type MessageView struct {
	raw   *upb.Message
	table *upb.MiniTable
}

func emptyMessageView(t *upb.MiniTable) MessageView {
	return MessageView{raw: upb.EmptyMessage(), table: t}
}

func (v MessageView) AsView() MessageView   { return v }
func (v MessageView) IntoView() MessageView { return v }

// Table is the message type. Views of unset sub-messages report the declared
// type even though they read through the empty singleton.
func (v MessageView) Table() *upb.MiniTable { return v.table }

// Raw exposes the kernel storage read-only by convention.
func (v MessageView) Raw() *upb.Message { return v.raw }

// IsEmpty reports whether v is the shared stand-in for an unset message.
func (v MessageView) IsEmpty() bool { return v.raw == upb.EmptyMessage() }

// WhichOneof returns the name of the set member of oneof, or "".
func (v MessageView) WhichOneof(oneof string) string {
	if f := v.raw.WhichOneof(oneof); f != nil {
		return f.Name
	}
	return ""
}

// Serialize encodes the viewed message. The empty stand-in encodes to
// nothing.
func (v MessageView) Serialize() *SerializedData { return serialize(v.raw) }

// SetOn replaces the contents of m with a deep copy of v.
func (v MessageView) SetOn(m MessageMut) { m.CopyFrom(v) }

// MessageMut is the exclusive mutator of a message.
type MessageMut struct {
	MessageView
	ticket upb.Ticket
}

func (m MessageMut) AsView() MessageView   { return m.MessageView }
func (m MessageMut) IntoView() MessageView { return m.MessageView }
func (m MessageMut) AsMut() MessageMut     { return m }
func (m MessageMut) IntoMut() MessageMut   { return m }

// Clear resets every field.
func (m MessageMut) Clear() {
	m.ticket.Check()
	m.raw.Clear()
}

// CopyFrom replaces the contents with a deep copy of src.
func (m MessageMut) CopyFrom(src MessageView) {
	m.ticket.Check()
	if src.IsEmpty() {
		m.raw.Clear()
		return
	}
	upb.DeepCopy(m.raw, src.raw)
}

// check panics when m was retired.
func (m MessageMut) check() { m.ticket.Check() }

func serialize(raw *upb.Message) *SerializedData {
	b := upb.Encode(raw)
	if len(b) == 0 {
		return &SerializedData{}
	}
	a := arena.NewArena(len(b))
	return &SerializedData{arena: a, data: a.CopyBytes(b)}
}
