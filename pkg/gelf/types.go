package gelf

import (
	"encoding/json"
	"fmt"
)

// Framing fields carried by one chunk datagram
type ChunkHeader struct {
	ID    [8]byte
	Index uint8
	Total uint8
}

// Payload compression format
type Codec int

const (
	CodecNone Codec = iota
	CodecGzip
	CodecZlib
)

func (codec Codec) String() string {
	switch codec {
	case CodecGzip:
		return "gzip"
	case CodecZlib:
		return "zlib"
	default:
		return "none"
	}
}

// Decoded GELF record.
// Extra holds every key other than short_message, host, level and timestamp,
// with values exactly as parsed (numbers kept as json.Number).
type Message struct {
	ShortMessage string
	Host         string
	Level        int64
	Timestamp    json.Number
	Extra        map[string]any
}

// Timestamp as fractional seconds since the epoch
func (msg Message) Seconds() (seconds float64) {
	seconds, _ = msg.Timestamp.Float64()
	return
}

func (header ChunkHeader) String() string {
	return fmt.Sprintf("%x[%d/%d]", header.ID, header.Index, header.Total)
}
