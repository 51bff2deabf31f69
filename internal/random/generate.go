package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Random 8 byte identifier, suitable as a GELF chunk message id
func EightByte() (id [8]byte, err error) {
	_, err = rand.Read(id[:])
	if err != nil {
		err = fmt.Errorf("failed reading random bytes: %w", err)
	}
	return
}

// 32 lowercase hex characters (UUIDv4 layout without dashes)
func EventID() (id string, err error) {
	var b [16]byte
	_, err = rand.Read(b[:])
	if err != nil {
		err = fmt.Errorf("failed reading random bytes: %w", err)
		return
	}

	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // RFC 4122 variant

	id = hex.EncodeToString(b[:])
	return
}

// Generates random integer between two numbers (including the min/max)
func NumberInRange(min, max int64) (randomNumber int64, err error) {
	if min > max {
		err = fmt.Errorf("min must be less than or equal to max")
		return
	}

	n, err := rand.Int(rand.Reader, big.NewInt(max-min+1))
	if err != nil {
		err = fmt.Errorf("failed reading in range: %w", err)
		return
	}

	randomNumber = n.Int64() + min
	return
}
