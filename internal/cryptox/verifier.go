package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"securenotes/internal/common"
)

// VerifierParams are the argon2id cost settings used for password
// verification hashes. Verification happens on every login and must stay
// fast; the expensive derivation lives in KDFParams.
type VerifierParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultVerifierParams returns the production verifier settings.
func DefaultVerifierParams() VerifierParams {
	return VerifierParams{MemoryKiB: 64 * 1024, Iterations: 1, Parallelism: 4}
}

const (
	verifierSaltLen = 16
	verifierKeyLen  = 32
)

// HashPassword hashes password with a fresh random salt and returns a
// self-describing PHC string:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
//
// Salt and hash are unpadded standard base64. The same layout is used for
// both the account registry verifier and the per-user auth.hash file, so
// either side can verify a submitted password without extra metadata.
func HashPassword(password []byte, p VerifierParams) string {
	salt := common.GenerateRandByteArray(verifierSaltLen)
	hash := argon2.IDKey(password, salt, p.Iterations, p.MemoryKiB, p.Parallelism, verifierKeyLen)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKiB, p.Iterations, p.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(hash))
}

// VerifyPassword checks password against an encoded verifier string.
// Returns nil on match, ErrInvalidPassword on mismatch, and
// ErrMalformedVerifier when the stored string cannot be parsed. The hash
// comparison is constant-time.
func VerifyPassword(password []byte, encoded string) error {
	p, salt, hash, err := decodeVerifier(encoded)
	if err != nil {
		return err
	}

	candidate := argon2.IDKey(password, salt, p.Iterations, p.MemoryKiB, p.Parallelism, uint32(len(hash)))
	defer common.WipeByteArray(candidate)

	if subtle.ConstantTimeCompare(hash, candidate) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

func decodeVerifier(encoded string) (VerifierParams, []byte, []byte, error) {
	var p VerifierParams

	parts := strings.Split(encoded, "$")
	// Leading '$' yields an empty first element.
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, fmt.Errorf("%w: wrong section count", ErrMalformedVerifier)
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedVerifier, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: bad version", ErrMalformedVerifier)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedVerifier, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("%w: bad cost parameters", ErrMalformedVerifier)
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: bad salt encoding", ErrMalformedVerifier)
	}
	hash, err := b64.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: bad hash encoding", ErrMalformedVerifier)
	}
	return p, salt, hash, nil
}
