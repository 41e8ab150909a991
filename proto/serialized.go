package proto

import (
	"fmt"

	"github.com/pavanmanishd/protoarena/arena"
)

// SerializedData holds encoded bytes on an arena of their own.
type SerializedData struct {
	arena *arena.Arena
	data  []byte
}

// Bytes returns the encoding. It is valid until Free.
func (s *SerializedData) Bytes() []byte { return s.data }

// Len is the encoded size in bytes.
func (s *SerializedData) Len() int { return len(s.data) }

// Free releases the bytes.
func (s *SerializedData) Free() {
	if s.arena != nil {
		s.arena.Free()
	}
	s.data = nil
}

// SetOn stores a copy of the encoding in a bytes field.
func (s *SerializedData) SetOn(m BytesMut) { m.Set(s.data) }

func (s *SerializedData) String() string {
	return fmt.Sprintf("SerializedData(%d bytes)", len(s.data))
}
