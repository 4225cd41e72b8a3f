package cryptox

import "errors"

// Closed set of error kinds returned by this package. Callers branch with
// errors.Is; the wrapped messages carry the detail.
var (
	// ErrNotInitialized is returned by Encrypt/Decrypt before a successful
	// InitializeForUser.
	ErrNotInitialized = errors.New("crypto session not initialized")

	// ErrInvalidFormat is returned when an encrypted blob is too short to
	// contain the prepended nonce.
	ErrInvalidFormat = errors.New("invalid encrypted data")

	// ErrAuthenticationFailed is returned on an AEAD tag mismatch: wrong key
	// or tampered ciphertext. Not retryable without a new key.
	ErrAuthenticationFailed = errors.New("decryption failed")

	// ErrInvalidPassword is returned when a submitted password does not match
	// the stored verifier.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrCriticalHardwareChange is returned when a critical fingerprint
	// component (user, os, arch) differs from the stored metadata. The
	// session refuses to derive a key in that case.
	ErrCriticalHardwareChange = errors.New("critical hardware components changed")

	// ErrMalformedVerifier is returned when a stored verifier string cannot
	// be parsed.
	ErrMalformedVerifier = errors.New("malformed password verifier")
)
