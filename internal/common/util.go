package common

import (
	"crypto/rand"
	"fmt"
	"io"
)

// RandReader is the entropy source used by the helpers below. Tests replace
// it to simulate a failing source.
var RandReader io.Reader = rand.Reader

// ReadRandom fills b from RandReader. Any failure, including a short read,
// is reported as ErrEntropyUnavailable.
func ReadRandom(b []byte) error {
	if _, err := io.ReadFull(RandReader, b); err != nil {
		return fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	return nil
}

// GenerateRandByteArray returns size random bytes.
func GenerateRandByteArray(size int) ([]byte, error) {
	b := make([]byte, size)
	if err := ReadRandom(b); err != nil {
		return nil, err
	}
	return b, nil
}

// WipeByteArray overwrites b with zeros. It is used to drop PINs and keys
// from memory once they are no longer needed. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
