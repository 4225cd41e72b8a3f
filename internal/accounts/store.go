// Package accounts owns the durable registry of user identities and their
// password verifiers: one JSON document mapping username to identity,
// mirrored in memory by an explicit repository object constructed once at
// startup.
package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"securenotes/internal/cryptox"
	"securenotes/internal/filex"
	"securenotes/internal/logging"
)

const registryFileName = "users.json"

// Closed set of error kinds returned by this package.
var (
	// ErrValidation wraps all username/password shape violations.
	ErrValidation = errors.New("validation error")

	// ErrDuplicateUsername is returned when the username is already taken
	// (compared case-insensitively).
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrInvalidCredentials is the single generic authentication error.
	// It deliberately never distinguishes an unknown user from a wrong
	// password, to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotFound is returned by management operations (delete, password
	// change) when no account has the given username.
	ErrNotFound = errors.New("user not found")
)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 6
	passwordMaxLen = 128
)

// Store is the account registry: an in-memory username->identity map
// mirrored to a single JSON file with owner-only permissions.
type Store struct {
	path   string
	users  map[string]*UserIdentity
	logger logging.Logger

	// Verifier may be overridden before use, e.g. by tests.
	Verifier cryptox.VerifierParams
}

// NewStore loads (or starts empty) the registry under dataDir.
func NewStore(dataDir string, logger logging.Logger) (*Store, error) {
	if err := filex.EnsureDir(dataDir); err != nil {
		return nil, err
	}
	s := &Store{
		path:     filepath.Join(dataDir, registryFileName),
		users:    make(map[string]*UserIdentity),
		logger:   logger.With("component", "accounts"),
		Verifier: cryptox.DefaultVerifierParams(),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read registry: %w", err)
	}
	if err := json.Unmarshal(data, &s.users); err != nil {
		return fmt.Errorf("parse registry: %w", err)
	}
	return nil
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	return filex.WriteFileOwnerOnly(s.path, data)
}

// Create validates the username and password, derives a fresh salted
// verifier, and appends the new identity to the registry.
func (s *Store) Create(ctx context.Context, username string, password []byte) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	lower := strings.ToLower(username)
	for existing := range s.users {
		if strings.ToLower(existing) == lower {
			return ErrDuplicateUsername
		}
	}

	s.users[username] = newUserIdentity(username, password, s.Verifier)
	if err := s.save(); err != nil {
		delete(s.users, username)
		return err
	}
	s.logger.Info(ctx, "account created", "username", username)
	return nil
}

// Authenticate looks up username and verifies password against the stored
// verifier. Every failure maps to ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, username string, password []byte) (*UserIdentity, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := user.VerifyPassword(password); err != nil {
		if errors.Is(err, cryptox.ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	s.logger.Info(ctx, "user authenticated", "username", username)
	clone := *user
	return &clone, nil
}

// ChangePassword verifies oldPassword, validates newPassword, and replaces
// the stored verifier with a freshly salted hash.
func (s *Store) ChangePassword(ctx context.Context, username string, oldPassword, newPassword []byte) error {
	user, ok := s.users[username]
	if !ok {
		return ErrNotFound
	}
	if err := user.VerifyPassword(oldPassword); err != nil {
		if errors.Is(err, cryptox.ErrInvalidPassword) {
			return fmt.Errorf("%w: current password is incorrect", ErrInvalidCredentials)
		}
		return err
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	oldHash := user.PasswordHash
	user.PasswordHash = cryptox.HashPassword(newPassword, s.Verifier)
	if err := s.save(); err != nil {
		user.PasswordHash = oldHash
		return err
	}
	s.logger.Info(ctx, "password changed", "username", username)
	return nil
}

// Delete removes the identity from the registry. It does NOT delete the
// user's crypto metadata or note data; the identity-deletion orchestrator
// removes those first (notes, then crypto metadata, then this record) so a
// crash mid-deletion never leaves an authenticatable account whose key
// material is gone.
func (s *Store) Delete(ctx context.Context, username string) error {
	user, ok := s.users[username]
	if !ok {
		return ErrNotFound
	}
	delete(s.users, username)
	if err := s.save(); err != nil {
		s.users[username] = user
		return err
	}
	s.logger.Info(ctx, "account deleted", "username", username)
	return nil
}

// Count returns the number of registered identities. Display only.
func (s *Store) Count() int { return len(s.users) }

func validateUsername(username string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return fmt.Errorf("%w: username cannot be empty", ErrValidation)
	case len(username) < usernameMinLen:
		return fmt.Errorf("%w: username must be at least %d characters", ErrValidation, usernameMinLen)
	case len(username) > usernameMaxLen:
		return fmt.Errorf("%w: username must be at most %d characters", ErrValidation, usernameMaxLen)
	}
	for _, c := range username {
		if !isUsernameChar(c) {
			return fmt.Errorf("%w: username can only contain letters, numbers, underscores, and hyphens", ErrValidation)
		}
	}
	return nil
}

func isUsernameChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-':
		return true
	}
	return false
}

func validatePassword(password []byte) error {
	if len(password) < passwordMinLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, passwordMinLen)
	}
	if len(password) > passwordMaxLen {
		return fmt.Errorf("%w: password must be at most %d characters", ErrValidation, passwordMaxLen)
	}
	return nil
}
