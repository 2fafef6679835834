package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/dmitrijs2005/cmgshare/internal/container"
	"golang.org/x/crypto/chacha20poly1305"
)

// DefaultAlgorithm is used by Encrypt.
const DefaultAlgorithm = container.AlgorithmXChaCha20Poly1305

func newAEAD(alg container.Algorithm, key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", common.ErrInvalidInput, KeySize)
	}
	switch alg {
	case container.AlgorithmXChaCha20Poly1305:
		return chacha20poly1305.NewX(key)
	case container.AlgorithmAES256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	default:
		return nil, fmt.Errorf("%w: %d", common.ErrUnsupportedAlgorithm, uint8(alg))
	}
}

// Encrypt seals plaintext under key with DefaultAlgorithm.
func Encrypt(plaintext []byte, key EphemeralKey) (*container.ShareContainer, error) {
	return EncryptWith(DefaultAlgorithm, plaintext, key)
}

// EncryptWith seals plaintext under key with alg. Every call draws a fresh
// random nonce; nonces are never derived from counters or caller input.
// The container header, nonce included, is authenticated as associated data.
func EncryptWith(alg container.Algorithm, plaintext []byte, key EphemeralKey) (*container.ShareContainer, error) {
	aead, err := newAEAD(alg, key.Bytes())
	if err != nil {
		return nil, err
	}

	nonce, err := common.GenerateRandByteArray(aead.NonceSize())
	if err != nil {
		return nil, err
	}

	c := &container.ShareContainer{
		FormatVersion: container.FormatVersion,
		Algorithm:     alg,
		Nonce:         nonce,
	}
	c.Ciphertext = aead.Seal(nil, nonce, plaintext, c.Header())
	return c, nil
}

// Decrypt authenticates c under key and returns the plaintext. Any
// verification failure, an unknown algorithm id included, is reported as
// ErrAuthenticationFailed without saying which part did not match, and no
// plaintext is returned in that case. A key of the wrong size is
// ErrInvalidInput.
func Decrypt(c *container.ShareContainer, key EphemeralKey) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil container", common.ErrMalformedContainer)
	}
	if !c.Algorithm.Supported() {
		return nil, common.ErrAuthenticationFailed
	}
	aead, err := newAEAD(c.Algorithm, key.Bytes())
	if err != nil {
		return nil, err
	}
	if len(c.Nonce) != aead.NonceSize() {
		return nil, common.ErrAuthenticationFailed
	}

	plaintext, err := aead.Open(nil, c.Nonce, c.Ciphertext, c.Header())
	if err != nil {
		return nil, common.ErrAuthenticationFailed
	}
	return plaintext, nil
}
