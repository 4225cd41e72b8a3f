package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"securenotes/internal/filex"
	"securenotes/internal/logging"
)

const (
	notesFileName    = "notes.enc"
	legacyBackupName = "notes.enc.backup"
)

// ErrLoad wraps decrypt/decode failures while loading a note collection.
// It signals probable wrong key or corruption, not "no data"; callers must
// not retry without a new key.
var ErrLoad = errors.New("cannot load notes")

// Cipher is the encryption surface the store needs. *cryptox.Session
// satisfies it; tests may substitute a stub.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(blob []byte) ([]byte, error)
}

// Store persists one encrypted blob (nonce || ciphertext over the JSON
// serialized collection) per user under <dataDir>/users/<id>/, and handles
// the one-time migration from the legacy single-tenant layout at
// <dataDir>/notes.enc.
type Store struct {
	dataDir string
	logger  logging.Logger
}

func NewStore(dataDir string, logger logging.Logger) *Store {
	return &Store{dataDir: dataDir, logger: logger.With("component", "notes")}
}

func (s *Store) userDir(userID string) string {
	return filepath.Join(s.dataDir, "users", userID)
}

// Save serializes the whole collection, encrypts it with the session, and
// overwrites the user's notes file with owner-only permissions. There is no
// partial update: every save rewrites the full blob.
func (s *Store) Save(ctx context.Context, userID string, collection Collection, c Cipher) error {
	plaintext, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	blob, err := c.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("encrypt notes: %w", err)
	}

	dir := s.userDir(userID)
	if err := filex.EnsureDir(dir); err != nil {
		return err
	}
	if err := filex.WriteFileOwnerOnly(filepath.Join(dir, notesFileName), blob); err != nil {
		return err
	}
	s.logger.Debug(ctx, "notes saved", "user", userID, "count", len(collection))
	return nil
}

// Load reads and decrypts the user's collection. A missing file is the
// normal state for a brand-new account and yields an empty collection;
// decrypt and decode failures are reported as ErrLoad.
func (s *Store) Load(ctx context.Context, userID string, c Cipher) (Collection, error) {
	path := filepath.Join(s.userDir(userID), notesFileName)

	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug(ctx, "no notes file, starting empty", "user", userID)
			return Collection{}, nil
		}
		return nil, fmt.Errorf("read notes: %w", err)
	}

	collection, err := decryptCollection(blob, c)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "notes loaded", "user", userID, "count", len(collection))
	return collection, nil
}

// MigrateLegacy moves notes from the legacy single-tenant file into the
// user's namespaced storage, then renames the legacy file to a .backup
// suffix. Safe to re-run: once the legacy file is renamed, later calls are
// silent no-ops.
func (s *Store) MigrateLegacy(ctx context.Context, userID string, c Cipher) error {
	legacyFile := filepath.Join(s.dataDir, notesFileName)

	blob, err := os.ReadFile(legacyFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read legacy notes: %w", err)
	}

	legacy, err := decryptCollection(blob, c)
	if err != nil {
		return err
	}

	if len(legacy) > 0 {
		if err := s.Save(ctx, userID, legacy, c); err != nil {
			return err
		}
	}
	if err := os.Rename(legacyFile, filepath.Join(s.dataDir, legacyBackupName)); err != nil {
		return fmt.Errorf("backup legacy notes: %w", err)
	}
	s.logger.Info(ctx, "migrated legacy notes", "user", userID, "count", len(legacy))
	return nil
}

// DeleteUserData removes the user's entire namespaced storage subtree.
// No-op if the subtree does not exist.
func (s *Store) DeleteUserData(ctx context.Context, userID string) error {
	dir := s.userDir(userID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete user data: %w", err)
	}
	s.logger.Info(ctx, "deleted note data", "user", userID)
	return nil
}

// DataSize sums the file sizes under the user's namespace; zero when the
// namespace does not exist.
func (s *Store) DataSize(userID string) (int64, error) {
	return filex.DirSize(s.userDir(userID))
}

func decryptCollection(blob []byte, c Cipher) (Collection, error) {
	plaintext, err := c.Decrypt(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	var collection Collection
	if err := json.Unmarshal(plaintext, &collection); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if collection == nil {
		collection = Collection{}
	}
	return collection, nil
}
