package gelf

import (
	"fmt"
)

// Reports whether the datagram starts with the chunk magic
func IsChunked(datagram []byte) (chunked bool) {
	chunked = len(datagram) >= lenMagic &&
		datagram[0] == magicChunk0 &&
		datagram[1] == magicChunk1
	return
}

// Splits a chunk datagram into its header and payload.
// Payload aliases the datagram.
func ParseChunk(datagram []byte) (header ChunkHeader, payload []byte, err error) {
	if !IsChunked(datagram) {
		err = ErrNotChunked
		return
	}
	if len(datagram) < ChunkHeaderLen {
		err = fmt.Errorf("%w: %d bytes", ErrShortChunk, len(datagram))
		return
	}

	offset := lenMagic
	copy(header.ID[:], datagram[offset:offset+lenMessageID])
	offset += lenMessageID
	header.Index = datagram[offset]
	offset += lenSeqIndex
	header.Total = datagram[offset]
	offset += lenSeqTotal

	err = header.Validate()
	if err != nil {
		return
	}

	payload = datagram[offset:]
	return
}

// Checks sequence bounds
func (header ChunkHeader) Validate() (err error) {
	if header.Total == 0 {
		err = ErrZeroTotal
		return
	}
	if int(header.Total) > MaxChunks {
		err = fmt.Errorf("%w: %d > %d", ErrTooManyChunks, header.Total, MaxChunks)
		return
	}
	if header.Index >= header.Total {
		err = fmt.Errorf("%w: index %d, total %d", ErrIndexRange, header.Index, header.Total)
		return
	}
	return
}

// Splits payload into chunk datagrams of at most maxDatagramSize bytes each
func Fragment(id [8]byte, payload []byte, maxDatagramSize int) (datagrams [][]byte, err error) {
	chunkSize := maxDatagramSize - ChunkHeaderLen
	if chunkSize <= 0 {
		err = fmt.Errorf("datagram size %d leaves no room after %d byte chunk header", maxDatagramSize, ChunkHeaderLen)
		return
	}

	total := (len(payload) + chunkSize - 1) / chunkSize
	if total == 0 {
		total = 1
	}
	if total > MaxChunks {
		err = fmt.Errorf("payload of %d bytes needs %d chunks: %w", len(payload), total, ErrTooManyChunks)
		return
	}

	datagrams = make([][]byte, 0, total)
	for index := 0; index < total; index++ {
		start := index * chunkSize
		end := min(start+chunkSize, len(payload))

		datagram := make([]byte, 0, ChunkHeaderLen+end-start)
		datagram = append(datagram, magicChunk0, magicChunk1)
		datagram = append(datagram, id[:]...)
		datagram = append(datagram, byte(index), byte(total))
		datagram = append(datagram, payload[start:end]...)
		datagrams = append(datagrams, datagram)
	}
	return
}
