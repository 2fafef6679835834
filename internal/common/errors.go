// Package common defines shared constants and sentinel errors used across
// the account, crypto and sharing layers of cmgshare. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Crypto core errors.
	ErrInvalidInput         = errors.New("invalid input")
	ErrConfiguration        = errors.New("configuration error")
	ErrEntropyUnavailable   = errors.New("entropy unavailable")
	ErrMalformedContainer   = errors.New("malformed container")
	ErrUnsupportedVersion   = errors.New("unsupported container version")
	ErrUnsupportedAlgorithm = errors.New("unsupported container algorithm")
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Bundle errors.
	ErrBundleExpired = errors.New("bundle expired")
)

// Generic end-user messages. They intentionally do not distinguish between
// causes that would give an attacker an oracle.
const (
	MsgIncorrectLogin   = "incorrect code or PIN"
	MsgIncorrectKey     = "incorrect key or corrupted file"
	MsgInvalidContainer = "the file is not a valid share package"
	MsgExpired          = "the shared package has expired"
	MsgInternal         = "something went wrong, please try again"
)

// UserMessage maps err to the message that may be shown to an end user.
// Internal details never leak through it.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrorUnauthorized), errors.Is(err, ErrorNotFound):
		return MsgIncorrectLogin
	case errors.Is(err, ErrAuthenticationFailed):
		return MsgIncorrectKey
	case errors.Is(err, ErrMalformedContainer),
		errors.Is(err, ErrUnsupportedVersion),
		errors.Is(err, ErrUnsupportedAlgorithm):
		return MsgInvalidContainer
	case errors.Is(err, ErrBundleExpired):
		return MsgExpired
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrorAlreadyExists):
		return err.Error()
	default:
		return MsgInternal
	}
}
