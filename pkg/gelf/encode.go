package gelf

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Serializes a record and compresses it with the chosen codec
func Encode(fields map[string]any, codec Codec) (payload []byte, err error) {
	record, err := json.Marshal(fields)
	if err != nil {
		err = fmt.Errorf("failed to marshal record: %w", err)
		return
	}
	payload, err = Compress(record, codec)
	return
}

func Compress(record []byte, codec Codec) (payload []byte, err error) {
	if codec == CodecNone {
		payload = record
		return
	}

	var buf bytes.Buffer
	var writer interface {
		Write([]byte) (int, error)
		Close() error
	}
	switch codec {
	case CodecGzip:
		writer = gzip.NewWriter(&buf)
	case CodecZlib:
		writer = zlib.NewWriter(&buf)
	default:
		err = fmt.Errorf("unknown codec %d", codec)
		return
	}

	_, err = writer.Write(record)
	if err != nil {
		err = fmt.Errorf("failed %s compression: %w", codec, err)
		return
	}
	err = writer.Close()
	if err != nil {
		err = fmt.Errorf("failed to finish %s stream: %w", codec, err)
		return
	}
	payload = buf.Bytes()
	return
}

// Parses a codec name as accepted on the command line
func ParseCodec(name string) (codec Codec, err error) {
	switch name {
	case "", "none":
		codec = CodecNone
	case "gzip":
		codec = CodecGzip
	case "zlib":
		codec = CodecZlib
	default:
		err = fmt.Errorf("unknown compression %q (expected none, gzip or zlib)", name)
	}
	return
}
