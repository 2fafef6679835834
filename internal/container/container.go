// Package container implements the .cmg share container codec.
//
// A container is laid out as
//
//	"CMG" | formatVersion (1 byte) | algorithmId (1 byte) | nonce | ciphertext||tag
//
// where the nonce length is fixed by the algorithm and the ciphertext runs to
// the end of the input. The codec only checks structure. A container that
// decodes cleanly has not been authenticated yet; that is the job of
// cryptox.Decrypt.
package container

import (
	"bytes"
	"fmt"

	"github.com/dmitrijs2005/cmgshare/internal/common"
)

// FormatVersion is the only container version this build reads and writes.
const FormatVersion uint8 = 1

// Magic prefixes every container.
var Magic = []byte("CMG")

// fixedHeaderLen covers magic, version and algorithm id.
var fixedHeaderLen = len(Magic) + 2

// Algorithm identifies the AEAD construction used for a container.
type Algorithm uint8

const (
	AlgorithmXChaCha20Poly1305 Algorithm = 1
	AlgorithmAES256GCM         Algorithm = 2
)

type algorithmSpec struct {
	name      string
	nonceSize int
	tagSize   int
}

var algorithms = map[Algorithm]algorithmSpec{
	AlgorithmXChaCha20Poly1305: {name: "xchacha20poly1305", nonceSize: 24, tagSize: 16},
	AlgorithmAES256GCM:         {name: "aes256gcm", nonceSize: 12, tagSize: 16},
}

// Supported reports whether a is a known algorithm.
func (a Algorithm) Supported() bool {
	_, ok := algorithms[a]
	return ok
}

// NonceSize returns the nonce length for a, or 0 if a is unknown.
func (a Algorithm) NonceSize() int { return algorithms[a].nonceSize }

// TagSize returns the authentication tag length for a, or 0 if a is unknown.
func (a Algorithm) TagSize() int { return algorithms[a].tagSize }

func (a Algorithm) String() string {
	if s, ok := algorithms[a]; ok {
		return s.name
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

// ParseAlgorithm resolves a configuration name such as "xchacha20poly1305".
func ParseAlgorithm(name string) (Algorithm, error) {
	for a, s := range algorithms {
		if s.name == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", common.ErrUnsupportedAlgorithm, name)
}

// ShareContainer is the decoded, not yet authenticated, form of a .cmg file.
// The authentication tag is the trailing TagSize bytes of Ciphertext.
type ShareContainer struct {
	FormatVersion uint8
	Algorithm     Algorithm
	Nonce         []byte
	Ciphertext    []byte
}

// Header returns the bytes that precede the ciphertext. They are bound to
// the ciphertext as AEAD associated data.
func (c *ShareContainer) Header() []byte {
	h := make([]byte, 0, fixedHeaderLen+len(c.Nonce))
	h = append(h, Magic...)
	h = append(h, c.FormatVersion, byte(c.Algorithm))
	return append(h, c.Nonce...)
}

// Encode serializes the container fields.
func Encode(formatVersion uint8, alg Algorithm, nonce, ciphertext []byte) ([]byte, error) {
	if formatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: %d", common.ErrUnsupportedVersion, formatVersion)
	}
	if !alg.Supported() {
		return nil, fmt.Errorf("%w: %d", common.ErrUnsupportedAlgorithm, alg)
	}
	if len(nonce) != alg.NonceSize() {
		return nil, fmt.Errorf("%w: nonce is %d bytes, %s needs %d", common.ErrMalformedContainer, len(nonce), alg, alg.NonceSize())
	}
	if len(ciphertext) < alg.TagSize() {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", common.ErrMalformedContainer)
	}

	out := make([]byte, 0, fixedHeaderLen+len(nonce)+len(ciphertext))
	out = append(out, Magic...)
	out = append(out, formatVersion, byte(alg))
	out = append(out, nonce...)
	return append(out, ciphertext...), nil
}

// Marshal is Encode applied to c.
func (c *ShareContainer) Marshal() ([]byte, error) {
	return Encode(c.FormatVersion, c.Algorithm, c.Nonce, c.Ciphertext)
}

// Decode parses data into a ShareContainer. Version and algorithm are checked
// before anything else, so unknown formats are rejected without further work.
// The returned slices are copies and do not alias data.
func Decode(data []byte) (*ShareContainer, error) {
	if len(data) < fixedHeaderLen {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", common.ErrMalformedContainer, len(data))
	}
	if !bytes.Equal(data[:len(Magic)], Magic) {
		return nil, fmt.Errorf("%w: bad magic", common.ErrMalformedContainer)
	}

	version := data[len(Magic)]
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", common.ErrUnsupportedVersion, version)
	}
	alg := Algorithm(data[len(Magic)+1])
	if !alg.Supported() {
		return nil, fmt.Errorf("%w: %d", common.ErrUnsupportedAlgorithm, uint8(alg))
	}

	rest := data[fixedHeaderLen:]
	if len(rest) < alg.NonceSize()+alg.TagSize() {
		return nil, fmt.Errorf("%w: truncated body", common.ErrMalformedContainer)
	}

	return &ShareContainer{
		FormatVersion: version,
		Algorithm:     alg,
		Nonce:         bytes.Clone(rest[:alg.NonceSize()]),
		Ciphertext:    bytes.Clone(rest[alg.NonceSize():]),
	}, nil
}
