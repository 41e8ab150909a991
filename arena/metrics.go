package arena

import "github.com/rs/zerolog"

// usage walks the chunk list once. Alignment padding counts as in use.
func (a *Arena) usage() (inUse, capacity int) {
	for _, c := range a.chunks {
		inUse += int(c.offset)
		capacity += len(c.buf)
	}
	return inUse, capacity
}

// SizeInUse is the number of bytes handed out, padding included.
func (a *Arena) SizeInUse() int {
	n, _ := a.usage()
	return n
}

// NumChunks is the number of chunks the arena has grown to. It is 0 after
// Free.
func (a *Arena) NumChunks() int { return len(a.chunks) }

// Capacity is the size of every chunk added together.
func (a *Arena) Capacity() int {
	_, n := a.usage()
	return n
}

// Utilization is SizeInUse over Capacity, or 0 for an arena without chunks.
func (a *Arena) Utilization() float64 {
	return utilization(a.usage())
}

// ChunkSize is the minimum size of chunks added when the arena grows.
func (a *Arena) ChunkSize() int {
	return a.chunkSize
}

func utilization(inUse, capacity int) float64 {
	if capacity == 0 {
		return 0
	}
	return float64(inUse) / float64(capacity)
}

// Metrics returns a point-in-time snapshot. It is safe to call after Free.
func (a *Arena) Metrics() ArenaMetrics {
	inUse, capacity := a.usage()
	return ArenaMetrics{
		SizeInUse:   inUse,
		Capacity:    capacity,
		Slack:       capacity - inUse,
		NumChunks:   len(a.chunks),
		ChunkSize:   a.chunkSize,
		Utilization: utilization(inUse, capacity),
		Freed:       a.freed,
	}
}

// ArenaMetrics is a snapshot of an arena, loggable with zerolog's Object.
type ArenaMetrics struct {
	SizeInUse   int
	Capacity    int
	Slack       int // unused tail bytes across all chunks
	NumChunks   int
	ChunkSize   int
	Utilization float64
	Freed       bool
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (m ArenaMetrics) MarshalZerologObject(e *zerolog.Event) {
	e.Int("size_in_use", m.SizeInUse).
		Int("capacity", m.Capacity).
		Int("slack", m.Slack).
		Int("chunks", m.NumChunks).
		Int("chunk_size", m.ChunkSize).
		Float64("utilization", m.Utilization).
		Bool("freed", m.Freed)
}
