package chunkstore

import (
	"gelfmover/pkg/gelf"
	"time"
)

func newFragmentSet(header gelf.ChunkHeader, now time.Time) (set *FragmentSet) {
	set = &FragmentSet{
		ID:         header.ID,
		Total:      header.Total,
		chunks:     make([][]byte, header.Total),
		received:   make([]bool, header.Total),
		FirstSeen:  now,
		LastUpdate: now,
	}
	return
}

// Byte delta storing payload at index would cause
func (set *FragmentSet) growth(index uint8, payload []byte) (delta int64) {
	delta = int64(len(payload)) - int64(len(set.chunks[index]))
	return
}

// Stores payload at index, replacing any earlier copy
func (set *FragmentSet) put(index uint8, payload []byte, now time.Time) {
	set.size += set.growth(index, payload)
	if !set.received[index] {
		set.received[index] = true
		set.count++
	}
	set.chunks[index] = payload
	set.LastUpdate = now
}

// Concatenates chunks in index order. Only meaningful once every index is present.
func (set *FragmentSet) Assemble() (payload []byte) {
	payload = make([]byte, 0, set.size)
	for _, chunk := range set.chunks {
		payload = append(payload, chunk...)
	}
	return
}
