// Wire handling for the Graylog Extended Log Format: UDP chunk framing,
// payload compression and JSON record decoding.
package gelf

const (
	// Chunk framing
	magicChunk0    byte = 0x1e
	magicChunk1    byte = 0x0f
	lenMagic       int  = 2
	lenMessageID   int  = 8
	lenSeqIndex    int  = 1
	lenSeqTotal    int  = 1
	ChunkHeaderLen int  = lenMagic + lenMessageID + lenSeqIndex + lenSeqTotal
	MaxChunks      int  = 128

	// Compression magic
	magicGzip0 byte = 0x1f
	magicGzip1 byte = 0x8b
	magicZlib0 byte = 0x78

	// Record field names
	FieldVersion      string = "version"
	FieldShortMessage string = "short_message"
	FieldFullMessage  string = "full_message"
	FieldHost         string = "host"
	FieldLevel        string = "level"
	FieldTimestamp    string = "timestamp"

	// Severity used when a record omits level
	DefaultLevel int64 = 1
)
