package gelf

import (
	"errors"
	"fmt"
)

var (
	ErrNotChunked    = errors.New("datagram does not carry a chunk header")
	ErrShortChunk    = errors.New("datagram shorter than chunk header")
	ErrZeroTotal     = errors.New("chunk total is zero")
	ErrTooManyChunks = errors.New("chunk total exceeds protocol maximum")
	ErrIndexRange    = errors.New("chunk index not below chunk total")
)

type DecodeErrorKind int

const (
	KindCompression DecodeErrorKind = iota + 1
	KindMalformed
	KindMissingField
)

func (kind DecodeErrorKind) String() string {
	switch kind {
	case KindCompression:
		return "compression"
	case KindMalformed:
		return "malformed"
	case KindMissingField:
		return "missing_field"
	default:
		return "unknown"
	}
}

// Terminal failure turning a raw payload into a Message
type DecodeError struct {
	Kind  DecodeErrorKind
	Field string // set for KindMissingField and field type errors
	Err   error
}

func (err *DecodeError) Error() string {
	switch {
	case err.Kind == KindMissingField:
		return fmt.Sprintf("missing mandatory field %q", err.Field)
	case err.Field != "":
		return fmt.Sprintf("%s payload: field %q: %v", err.Kind, err.Field, err.Err)
	default:
		return fmt.Sprintf("%s payload: %v", err.Kind, err.Err)
	}
}

func (err *DecodeError) Unwrap() error {
	return err.Err
}

// Reports the decode failure kind of err, if any
func DecodeKind(err error) (kind DecodeErrorKind, ok bool) {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		kind = decodeErr.Kind
		ok = true
	}
	return
}
