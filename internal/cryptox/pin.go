package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/cmgshare/internal/common"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for PIN hashing. A PIN has only 10,000 values, so the
// work factor is what slows down offline guessing.
const (
	pinHashTime    = 3
	pinHashMemory  = 64 * 1024
	pinHashThreads = 4
	pinHashKeyLen  = 32

	// SaltSize is the length of the per-credential random salt.
	SaltSize = 16
)

// idKey is a seam for argon2.IDKey.
var idKey = argon2.IDKey

var (
	pinPattern         = regexp.MustCompile(`^[0-9]{4}$`)
	patientCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// PinCredential is the stored, verifiable form of a patient's PIN. The PIN
// itself is never kept.
type PinCredential struct {
	PatientCode   string
	Salt          []byte
	PepperVersion int
	Hash          []byte
}

// CreateCredential hashes pin for patientCode with a fresh salt and the given
// pepper. pin must be exactly four ASCII digits.
func CreateCredential(patientCode, pin string, pepper Pepper) (*PinCredential, error) {
	if !patientCodePattern.MatchString(patientCode) {
		return nil, fmt.Errorf("%w: patient code must be letters, digits, '-' or '_'", common.ErrInvalidInput)
	}
	if !pinPattern.MatchString(pin) {
		return nil, fmt.Errorf("%w: PIN must be exactly 4 digits", common.ErrInvalidInput)
	}
	if len(pepper.Secret) == 0 {
		return nil, fmt.Errorf("%w: empty pepper for version %d", common.ErrConfiguration, pepper.Version)
	}

	salt, err := common.GenerateRandByteArray(SaltSize)
	if err != nil {
		return nil, err
	}

	return &PinCredential{
		PatientCode:   patientCode,
		Salt:          salt,
		PepperVersion: pepper.Version,
		Hash:          hashPin(pin, salt, pepper.Secret),
	}, nil
}

// VerifyPin recomputes the hash of pin with the credential's salt and the
// pepper registered for its version, and compares in constant time.
// A mismatch, including a PIN of the wrong shape, yields false and no error.
// An error is returned only when the pepper for the credential's version
// cannot be found.
func VerifyPin(cred *PinCredential, pin string, peppers PepperLookup) (bool, error) {
	pepper, err := peppers.Lookup(cred.PepperVersion)
	if err != nil {
		return false, err
	}
	// A malformed PIN still pays for a full hash so it cannot be told apart
	// from a wrong one, or from an unknown code, by timing.
	candidate := hashPin(pin, cred.Salt, pepper.Secret)
	if !pinPattern.MatchString(pin) {
		return false, nil
	}
	return subtle.ConstantTimeCompare(candidate, cred.Hash) == 1, nil
}

// BurnPinHash performs the same amount of work as a verification against a
// throwaway salt. It is called for unknown patient codes so login timing does
// not reveal whether an account exists.
func BurnPinHash(pin string, pepper Pepper) {
	salt := make([]byte, SaltSize)
	_ = hashPin(pin, salt, pepper.Secret)
}

func hashPin(pin string, salt, pepper []byte) []byte {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(pin))
	peppered := mac.Sum(nil)
	defer common.WipeByteArray(peppered)

	return idKey(peppered, salt, pinHashTime, pinHashMemory, pinHashThreads, pinHashKeyLen)
}
