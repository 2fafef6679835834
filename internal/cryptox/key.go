package cryptox

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/common"
)

// KeySize is the length of an export key, matching both supported AEADs.
const KeySize = 32

const redacted = "[REDACTED]"

// EphemeralKey is a one-time symmetric key generated for a single export.
// It lives only in memory and in the token shown to the user. String and
// LogValue are redacted so the key cannot reach logs by accident; use Token
// for the one intended display.
type EphemeralKey struct {
	bytes     []byte
	CreatedAt time.Time
}

// GenerateExportKey returns a fresh random key, unrelated to any PIN, pepper
// or earlier key.
func GenerateExportKey() (EphemeralKey, error) {
	b, err := common.GenerateRandByteArray(KeySize)
	if err != nil {
		return EphemeralKey{}, err
	}
	return EphemeralKey{bytes: b, CreatedAt: time.Now().UTC()}, nil
}

// ParseKey decodes a key token as produced by Token. The unpadded form and
// the canonical padded form (one trailing '=') of URL-safe base64 are
// accepted, and surrounding whitespace is ignored, so tokens survive copy
// and paste.
func ParseKey(token string) (EphemeralKey, error) {
	s := strings.TrimSuffix(strings.TrimSpace(token), "=")
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return EphemeralKey{}, fmt.Errorf("%w: key is not valid base64", common.ErrInvalidInput)
	}
	if len(b) != KeySize {
		return EphemeralKey{}, fmt.Errorf("%w: key must be %d bytes", common.ErrInvalidInput, KeySize)
	}
	return EphemeralKey{bytes: b, CreatedAt: time.Now().UTC()}, nil
}

// Token renders the key as URL-safe base64 without padding.
func (k EphemeralKey) Token() string {
	return base64.RawURLEncoding.EncodeToString(k.bytes)
}

// Bytes exposes the raw key material.
func (k EphemeralKey) Bytes() []byte { return k.bytes }

// Valid reports whether k holds key material of the right size.
func (k EphemeralKey) Valid() bool { return len(k.bytes) == KeySize }

// Wipe zeroes the key material in place.
func (k EphemeralKey) Wipe() { common.WipeByteArray(k.bytes) }

func (k EphemeralKey) String() string { return redacted }

func (k EphemeralKey) GoString() string { return "cryptox.EphemeralKey{" + redacted + "}" }

func (k EphemeralKey) LogValue() slog.Value { return slog.StringValue(redacted) }
