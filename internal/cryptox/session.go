// Package cryptox turns a (userID, password) pair into a working AES-GCM
// cipher bound to the local hardware fingerprint, and owns the per-user
// verifier and security-metadata files.
package cryptox

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"securenotes/internal/common"
	"securenotes/internal/filex"
	"securenotes/internal/fingerprint"
	"securenotes/internal/logging"
)

const (
	verifierFileName = "auth.hash"
	metadataFileName = "security.meta"

	// GCM standard nonce size; the encrypted blob layout is nonce || ct.
	nonceSize = 12

	keyLen = 32
)

// KDFParams are the argon2id cost settings for encryption key derivation.
// The defaults are deliberately expensive (multi-second) to resist offline
// brute force; run InitializeForUser off the interactive thread.
type KDFParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultKDFParams returns the production derivation settings:
// 128 MiB memory, 3 iterations, 4 lanes.
func DefaultKDFParams() KDFParams {
	return KDFParams{MemoryKiB: 128 * 1024, Iterations: 3, Parallelism: 4}
}

// DeriveMasterKey derives the 32-byte encryption key from a password and
// salt. Deterministic: same inputs, same key.
func DeriveMasterKey(password, salt []byte, p KDFParams) []byte {
	return argon2.IDKey(password, salt, p.Iterations, p.MemoryKiB, p.Parallelism, keyLen)
}

// Session owns the derived key and cipher for one authenticated user.
//
// A Session starts uninitialized; a successful InitializeForUser makes it
// ready, a failed one leaves it unusable until a fresh call succeeds. The
// raw key bytes live only in memory for the session's lifetime and are
// never persisted.
type Session struct {
	dataDir string
	logger  logging.Logger

	// KDF and Verifier may be overridden before InitializeForUser, e.g. by
	// tests that cannot afford multi-second derivations.
	KDF      KDFParams
	Verifier VerifierParams

	aead cipher.AEAD
	meta *SecurityMetadata
}

// NewSession creates an uninitialized session rooted at dataDir.
func NewSession(dataDir string, logger logging.Logger) *Session {
	return &Session{
		dataDir:  dataDir,
		logger:   logger.With("component", "cryptox"),
		KDF:      DefaultKDFParams(),
		Verifier: DefaultVerifierParams(),
	}
}

// Ready reports whether a cipher is available.
func (s *Session) Ready() bool { return s.aead != nil }

func (s *Session) userDir(userID string) string {
	return filepath.Join(s.dataDir, "users", userID)
}

// InitializeForUser verifies password for userID, checks the hardware
// fingerprint against the stored security metadata, derives the encryption
// key, and installs the cipher.
//
// For an existing user, a wrong password fails fast with
// ErrInvalidPassword before any key derivation. A critical fingerprint
// change fails with ErrCriticalHardwareChange; non-critical drift is
// logged, persisted, and tolerated. Legacy metadata without components is
// upgraded in place. For a new user, fresh verifier and metadata files are
// written with owner-only permissions.
func (s *Session) InitializeForUser(ctx context.Context, userID string, password []byte) error {
	s.aead = nil
	s.meta = nil

	start := time.Now()
	s.logger.Info(ctx, "starting crypto initialization", "user", userID)

	dir := s.userDir(userID)
	if err := filex.EnsureDir(dir); err != nil {
		return err
	}

	verifierFile := filepath.Join(dir, verifierFileName)
	metadataFile := filepath.Join(dir, metadataFileName)

	current := fingerprint.Collect()

	var meta *SecurityMetadata
	if fileExists(verifierFile) && fileExists(metadataFile) {
		stored, err := os.ReadFile(verifierFile)
		if err != nil {
			return fmt.Errorf("read verifier: %w", err)
		}
		// Verification is cheap; fail before the expensive derivation.
		if err := VerifyPassword(password, strings.TrimSpace(string(stored))); err != nil {
			return err
		}

		meta, err = readMetadata(metadataFile)
		if err != nil {
			return err
		}

		if len(meta.FingerprintComponents) == 0 {
			// One-time upgrade of the legacy metadata layout, not a
			// security check.
			s.logger.Info(ctx, "upgrading legacy security metadata", "user", userID)
			meta.FingerprintHash = current.Hash
			meta.FingerprintComponents = current.Components
			if err := writeMetadata(metadataFile, meta); err != nil {
				return err
			}
		} else if meta.FingerprintHash != current.Hash {
			diff := fingerprint.Diff(meta.FingerprintComponents, current.Components)
			if fingerprint.IsCriticalChange(meta.FingerprintComponents, current.Components) {
				return fmt.Errorf("%w: %s", ErrCriticalHardwareChange, strings.Join(diff, "; "))
			}
			s.logger.Warn(ctx, "non-critical hardware drift, updating fingerprint",
				"user", userID, "changes", strings.Join(diff, "; "))
			meta.FingerprintHash = current.Hash
			meta.FingerprintComponents = current.Components
			if err := writeMetadata(metadataFile, meta); err != nil {
				return err
			}
		}
	} else {
		s.logger.Info(ctx, "first-time crypto setup", "user", userID)
		meta = &SecurityMetadata{
			Version:               metadataVersion,
			CreatedTimestamp:      time.Now().UTC().Unix(),
			FingerprintHash:       current.Hash,
			FingerprintComponents: current.Components,
		}
		if err := filex.WriteFileOwnerOnly(verifierFile, []byte(HashPassword(password, s.Verifier))); err != nil {
			return err
		}
		if err := writeMetadata(metadataFile, meta); err != nil {
			return err
		}
	}

	// The salt comes from the current fingerprint, which at this point
	// matches the stored one up to tolerated drift.
	salt := fingerprint.Salt(current.Hash)
	key := DeriveMasterKey(password, salt[:], s.KDF)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("init cipher: %w", err)
	}

	s.aead = aead
	s.meta = meta
	s.logger.Info(ctx, "crypto initialization complete",
		"user", userID, "elapsed", time.Since(start).Round(time.Millisecond).String())
	return nil
}

// Encrypt seals plaintext with a fresh random 96-bit nonce and returns
// nonce || ciphertext.
func (s *Session) Encrypt(plaintext []byte) ([]byte, error) {
	if s.aead == nil {
		return nil, ErrNotInitialized
	}
	nonce := common.GenerateRandByteArray(nonceSize)
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a nonce || ciphertext blob produced by Encrypt.
func (s *Session) Decrypt(blob []byte) ([]byte, error) {
	if s.aead == nil {
		return nil, ErrNotInitialized
	}
	if len(blob) < nonceSize {
		return nil, ErrInvalidFormat
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong key or corrupted data", ErrAuthenticationFailed)
	}
	return plaintext, nil
}

// ChangePassword re-verifies oldPassword, stores a fresh verifier for
// newPassword, and re-initializes the session so the live cipher key
// changes too.
//
// Stored data is NOT re-encrypted here; the caller must re-save the note
// collection right after this succeeds or it becomes unreadable under the
// new key.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword []byte, userID string) error {
	verifierFile := filepath.Join(s.userDir(userID), verifierFileName)

	stored, err := os.ReadFile(verifierFile)
	if err != nil {
		return fmt.Errorf("read verifier: %w", err)
	}
	if err := VerifyPassword(oldPassword, strings.TrimSpace(string(stored))); err != nil {
		return err
	}

	if err := filex.WriteFileOwnerOnly(verifierFile, []byte(HashPassword(newPassword, s.Verifier))); err != nil {
		return err
	}

	if err := s.InitializeForUser(ctx, userID, newPassword); err != nil {
		return err
	}
	s.logger.Info(ctx, "password changed", "user", userID)
	return nil
}

// SecurityAudit recomputes the current fingerprint and reports differences
// against the stored metadata without mutating anything. An uninitialized
// session reports nothing.
func (s *Session) SecurityAudit() []string {
	if s.meta == nil {
		return nil
	}

	current := fingerprint.Collect()
	if s.meta.FingerprintHash == current.Hash {
		return nil
	}

	warnings := []string{"hardware fingerprint has changed since last login"}
	for _, change := range fingerprint.Diff(s.meta.FingerprintComponents, current.Components) {
		warnings = append(warnings, "changed: "+change)
	}
	return warnings
}

// SecurityInfo returns a display string describing the session's security
// configuration, or "" before initialization.
func (s *Session) SecurityInfo() string {
	if s.meta == nil {
		return ""
	}
	components := strings.Join(s.meta.FingerprintComponents, ", ")
	if components == "" {
		components = "legacy format (upgraded)"
	}
	created := time.Unix(s.meta.CreatedTimestamp, 0).UTC().Format("2006-01-02 15:04:05 UTC")
	return fmt.Sprintf(
		"Metadata version: %d\nCreated: %s\nHardware bound: yes\nMemory cost: %d MiB\nIterations: %d\nParallelism: %d\nComponents: %s",
		s.meta.Version, created, s.KDF.MemoryKiB/1024, s.KDF.Iterations, s.KDF.Parallelism, components)
}

// DeleteUserCryptoData irreversibly removes the stored verifier and
// security metadata for userID. Missing files are not an error.
func (s *Session) DeleteUserCryptoData(ctx context.Context, userID string) error {
	dir := s.userDir(userID)
	for _, name := range []string{verifierFileName, metadataFileName} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", name, err)
		}
	}
	s.logger.Info(ctx, "deleted crypto data", "user", userID)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
