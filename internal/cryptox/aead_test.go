package cryptox

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/dmitrijs2005/cmgshare/internal/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allAlgorithms = []container.Algorithm{
	container.AlgorithmXChaCha20Poly1305,
	container.AlgorithmAES256GCM,
}

func mustKey(t *testing.T) EphemeralKey {
	t.Helper()
	k, err := GenerateExportKey()
	require.NoError(t, err)
	return k
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		[]byte("x"),
		[]byte("{\"glucose\":[{\"value_mg_dl\":112}]}\x00"),
		bytes.Repeat([]byte{0xFF, 0x00}, 64*1024),
	}
	for _, alg := range allAlgorithms {
		for _, p := range payloads {
			key := mustKey(t)
			c, err := EncryptWith(alg, p, key)
			require.NoError(t, err)
			assert.Equal(t, container.FormatVersion, c.FormatVersion)
			assert.Equal(t, alg, c.Algorithm)
			assert.Len(t, c.Nonce, alg.NonceSize())
			assert.Len(t, c.Ciphertext, len(p)+alg.TagSize())

			got, err := Decrypt(c, key)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(p, got), "alg %s, len %d", alg, len(p))
		}
	}
}

func TestEncrypt_UsesDefaultAlgorithm(t *testing.T) {
	c, err := Encrypt([]byte("hi"), mustKey(t))
	require.NoError(t, err)
	assert.Equal(t, DefaultAlgorithm, c.Algorithm)
}

func TestDecrypt_WrongKey(t *testing.T) {
	for _, alg := range allAlgorithms {
		k1, k2 := mustKey(t), mustKey(t)
		c, err := EncryptWith(alg, []byte("secret readings"), k1)
		require.NoError(t, err)

		got, err := Decrypt(c, k2)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, common.ErrAuthenticationFailed)
	}
}

// Every single-bit flip in the serialized container must be rejected, either
// structurally by the codec (magic, version and algorithm bytes) or by
// authentication (nonce and ciphertext). No flip may yield plaintext.
func TestTamper_EverySerializedBit(t *testing.T) {
	for _, alg := range allAlgorithms {
		key := mustKey(t)
		c, err := EncryptWith(alg, []byte("HbA1c 6.8% / glucose 140"), key)
		require.NoError(t, err)
		data, err := c.Marshal()
		require.NoError(t, err)
		bodyStart := len(container.Magic) + 2

		for i := range data {
			for bit := 0; bit < 8; bit++ {
				tampered := bytes.Clone(data)
				tampered[i] ^= 1 << bit

				dc, err := container.Decode(tampered)
				if err != nil {
					require.Less(t, i, bodyStart, "byte %d bit %d rejected structurally", i, bit)
					continue
				}
				got, err := Decrypt(dc, key)
				require.Nil(t, got, "byte %d bit %d", i, bit)
				require.ErrorIs(t, err, common.ErrAuthenticationFailed, "byte %d bit %d", i, bit)
			}
		}
	}
}

// Header fields are authenticated even when a caller builds the container
// by hand and never runs it through the codec.
func TestTamper_HeaderFields(t *testing.T) {
	key := mustKey(t)
	orig, err := Encrypt([]byte("payload"), key)
	require.NoError(t, err)

	clone := func() *container.ShareContainer {
		return &container.ShareContainer{
			FormatVersion: orig.FormatVersion,
			Algorithm:     orig.Algorithm,
			Nonce:         bytes.Clone(orig.Nonce),
			Ciphertext:    bytes.Clone(orig.Ciphertext),
		}
	}

	c := clone()
	c.FormatVersion = 2
	_, err = Decrypt(c, key)
	assert.ErrorIs(t, err, common.ErrAuthenticationFailed)

	c = clone()
	c.Algorithm = container.AlgorithmAES256GCM
	_, err = Decrypt(c, key)
	assert.ErrorIs(t, err, common.ErrAuthenticationFailed)

	for _, alg := range []container.Algorithm{0, 3, 0xff} {
		c = clone()
		c.Algorithm = alg
		plaintext, err := Decrypt(c, key)
		assert.ErrorIs(t, err, common.ErrAuthenticationFailed, "algorithm %d", alg)
		assert.Nil(t, plaintext)
	}

	c = clone()
	c.Nonce[len(c.Nonce)-1] ^= 0x80
	_, err = Decrypt(c, key)
	assert.ErrorIs(t, err, common.ErrAuthenticationFailed)

	c = clone()
	c.Ciphertext = c.Ciphertext[:len(c.Ciphertext)-1]
	_, err = Decrypt(c, key)
	assert.ErrorIs(t, err, common.ErrAuthenticationFailed)
}

func TestEncrypt_NonceUniqueness(t *testing.T) {
	const n = 10000
	key := mustKey(t)
	plaintext := []byte("same payload every time")
	seen := make(map[string]struct{}, n)

	for i := 0; i < n; i++ {
		c, err := Encrypt(plaintext, key)
		require.NoError(t, err)
		if _, dup := seen[string(c.Nonce)]; dup {
			t.Fatalf("nonce repeated after %d encryptions", i)
		}
		seen[string(c.Nonce)] = struct{}{}
	}
}

func TestEncrypt_EntropyFailure(t *testing.T) {
	key := mustKey(t)

	old := common.RandReader
	t.Cleanup(func() { common.RandReader = old })
	common.RandReader = iotest.ErrReader(errors.New("no entropy"))

	c, err := Encrypt([]byte("x"), key)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, common.ErrEntropyUnavailable)
}

func TestEncryptDecrypt_InvalidKey(t *testing.T) {
	_, err := Encrypt([]byte("x"), EphemeralKey{})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	c, err := Encrypt([]byte("x"), mustKey(t))
	require.NoError(t, err)
	_, err = Decrypt(c, EphemeralKey{bytes: []byte("short")})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = Decrypt(nil, mustKey(t))
	assert.ErrorIs(t, err, common.ErrMalformedContainer)
}

func TestEncryptWith_UnknownAlgorithm(t *testing.T) {
	_, err := EncryptWith(container.Algorithm(77), []byte("x"), mustKey(t))
	assert.ErrorIs(t, err, common.ErrUnsupportedAlgorithm)
}
