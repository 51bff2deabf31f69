package gelf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Identifies payload compression from its leading bytes
func Detect(payload []byte) (codec Codec) {
	if len(payload) < 2 {
		return
	}
	switch {
	case payload[0] == magicGzip0 && payload[1] == magicGzip1:
		codec = CodecGzip
	case payload[0] == magicZlib0 && (uint16(payload[0])<<8|uint16(payload[1]))%31 == 0:
		codec = CodecZlib
	}
	return
}

// Decompresses (when needed) and parses one complete GELF payload.
// maxSize bounds the decompressed length of compressed payloads; 0 disables the bound.
func Decode(payload []byte, maxSize int64) (msg Message, err error) {
	raw, err := inflate(payload, maxSize)
	if err != nil {
		err = &DecodeError{Kind: KindCompression, Err: err}
		return
	}

	fields, err := parseObject(raw)
	if err != nil {
		err = &DecodeError{Kind: KindMalformed, Err: err}
		return
	}

	msg.ShortMessage, err = requiredString(fields, FieldShortMessage)
	if err != nil {
		return
	}
	msg.Host, err = requiredString(fields, FieldHost)
	if err != nil {
		return
	}

	msg.Timestamp, err = requiredNumber(fields, FieldTimestamp)
	if err != nil {
		return
	}

	msg.Level = DefaultLevel
	if rawLevel, present := fields[FieldLevel]; present {
		level, ok := rawLevel.(json.Number)
		if !ok {
			err = &DecodeError{Kind: KindMalformed, Field: FieldLevel, Err: fmt.Errorf("expected number, got %T", rawLevel)}
			return
		}
		msg.Level, err = level.Int64()
		if err != nil {
			err = &DecodeError{Kind: KindMalformed, Field: FieldLevel, Err: fmt.Errorf("expected integer: %w", err)}
			return
		}
	}

	delete(fields, FieldShortMessage)
	delete(fields, FieldHost)
	delete(fields, FieldTimestamp)
	delete(fields, FieldLevel)
	msg.Extra = fields
	return
}

func inflate(payload []byte, maxSize int64) (raw []byte, err error) {
	var reader io.ReadCloser

	codec := Detect(payload)
	switch codec {
	case CodecGzip:
		reader, err = gzip.NewReader(bytes.NewReader(payload))
	case CodecZlib:
		reader, err = zlib.NewReader(bytes.NewReader(payload))
	default:
		raw = payload
		return
	}
	if err != nil {
		err = fmt.Errorf("invalid %s header: %w", codec, err)
		return
	}
	defer reader.Close()

	var source io.Reader = reader
	if maxSize > 0 {
		source = io.LimitReader(reader, maxSize+1)
	}

	raw, err = io.ReadAll(source)
	if err != nil {
		err = fmt.Errorf("failed %s decompression: %w", codec, err)
		return
	}
	if maxSize > 0 && int64(len(raw)) > maxSize {
		err = fmt.Errorf("decompressed %s payload exceeds limit of %d bytes", codec, maxSize)
		raw = nil
		return
	}
	return
}

// Parses exactly one JSON object, keeping numbers as json.Number
func parseObject(raw []byte) (fields map[string]any, err error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	err = decoder.Decode(&fields)
	if err != nil {
		err = fmt.Errorf("invalid JSON object: %w", err)
		return
	}
	if fields == nil {
		err = fmt.Errorf("record is null, expected JSON object")
		return
	}

	_, err = decoder.Token()
	if err == io.EOF {
		err = nil
		return
	}
	if err == nil {
		err = errors.New("unexpected data after JSON object")
	} else {
		err = fmt.Errorf("unexpected data after JSON object: %w", err)
	}
	fields = nil
	return
}

func requiredString(fields map[string]any, name string) (value string, err error) {
	rawValue, present := fields[name]
	if !present || rawValue == nil {
		err = &DecodeError{Kind: KindMissingField, Field: name}
		return
	}
	value, ok := rawValue.(string)
	if !ok {
		err = &DecodeError{Kind: KindMalformed, Field: name, Err: fmt.Errorf("expected string, got %T", rawValue)}
		return
	}
	if value == "" {
		err = &DecodeError{Kind: KindMissingField, Field: name}
		return
	}
	return
}

func requiredNumber(fields map[string]any, name string) (value json.Number, err error) {
	rawValue, present := fields[name]
	if !present || rawValue == nil {
		err = &DecodeError{Kind: KindMissingField, Field: name}
		return
	}
	value, ok := rawValue.(json.Number)
	if !ok {
		err = &DecodeError{Kind: KindMalformed, Field: name, Err: fmt.Errorf("expected number, got %T", rawValue)}
		return
	}
	_, err = value.Float64()
	if err != nil {
		err = &DecodeError{Kind: KindMalformed, Field: name, Err: err}
		return
	}
	return
}
