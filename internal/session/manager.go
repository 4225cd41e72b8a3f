// Package session orchestrates the full sign-in lifecycle: account
// verification, key derivation, legacy data migration, and note loading.
// Key derivation is deliberately slow, so the whole flow runs on a
// background goroutine and the caller polls for the outcome.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"securenotes/internal/accounts"
	"securenotes/internal/common"
	"securenotes/internal/cryptox"
	"securenotes/internal/logging"
	"securenotes/internal/notes"
)

// ErrAuthInFlight is returned by Begin while a previous attempt has not
// yet delivered its result. At most one attempt runs at a time.
var ErrAuthInFlight = errors.New("authentication already in progress")

// Result is the outcome of one sign-in attempt. On success Err is nil and
// User, Crypto, and Notes describe the established session; Warnings may
// carry non-fatal security notices either way.
type Result struct {
	User     *accounts.UserIdentity
	Crypto   *cryptox.Session
	Notes    notes.Collection
	Warnings []string
	Err      error
}

// Attempt is a handle to an in-flight sign-in. Its result arrives exactly
// once; Poll consumes it.
type Attempt struct {
	started time.Time
	ch      chan *Result
	done    *Result
}

// Poll returns the result if the background flow has finished, or (nil,
// false) while it is still running. It never blocks.
func (a *Attempt) Poll() (*Result, bool) {
	if a.done != nil {
		return a.done, true
	}
	select {
	case res := <-a.ch:
		a.done = res
		return res, true
	default:
		return nil, false
	}
}

// Elapsed reports how long the attempt has been running, for progress
// display.
func (a *Attempt) Elapsed() time.Duration {
	return time.Since(a.started)
}

// Wait blocks until the result arrives.
func (a *Attempt) Wait() *Result {
	if a.done == nil {
		a.done = <-a.ch
	}
	return a.done
}

// Manager wires the account registry, the crypto session factory, and the
// note store into one sign-in flow.
type Manager struct {
	dataDir  string
	logger   logging.Logger
	Accounts *accounts.Store
	Notes    *notes.Store

	// KDF is applied to every crypto session the manager creates. Tests
	// override it with cheap parameters.
	KDF cryptox.KDFParams

	pending atomic.Bool
}

// NewManager builds the stores under dataDir.
func NewManager(dataDir string, logger logging.Logger) (*Manager, error) {
	acc, err := accounts.NewStore(dataDir, logger)
	if err != nil {
		return nil, err
	}
	return &Manager{
		dataDir:  dataDir,
		logger:   logger.With("component", "session"),
		Accounts: acc,
		Notes:    notes.NewStore(dataDir, logger),
		KDF:      cryptox.DefaultKDFParams(),
	}, nil
}

// Begin starts a sign-in (or register-then-sign-in) attempt in the
// background and returns a pollable handle. A second Begin before the
// first attempt completes fails with ErrAuthInFlight. The password slice
// is copied; the caller may wipe its own copy immediately.
func (m *Manager) Begin(ctx context.Context, username string, password []byte, register bool) (*Attempt, error) {
	if !m.pending.CompareAndSwap(false, true) {
		return nil, ErrAuthInFlight
	}

	pw := make([]byte, len(password))
	copy(pw, password)

	a := &Attempt{started: time.Now(), ch: make(chan *Result, 1)}
	go func() {
		defer m.pending.Store(false)
		defer common.WipeByteArray(pw)
		a.ch <- m.run(ctx, username, pw, register)
	}()
	return a, nil
}

func (m *Manager) run(ctx context.Context, username string, password []byte, register bool) *Result {
	if register {
		if err := m.Accounts.Create(ctx, username, password); err != nil {
			return &Result{Err: err}
		}
	}

	user, err := m.Accounts.Authenticate(ctx, username, password)
	if err != nil {
		return &Result{Err: err}
	}

	crypto := cryptox.NewSession(m.dataDir, m.logger)
	crypto.KDF = m.KDF
	if err := crypto.InitializeForUser(ctx, user.ID, password); err != nil {
		return &Result{Err: err}
	}

	res := &Result{User: user, Crypto: crypto}

	// Legacy data is recovered before the first load so the migrated notes
	// are part of the collection the user sees immediately.
	if err := m.Notes.MigrateLegacy(ctx, user.ID, crypto); err != nil {
		m.logger.Warn(ctx, "legacy migration failed", "user", user.ID, "error", err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("legacy note migration failed: %v", err))
	}

	collection, err := m.Notes.Load(ctx, user.ID, crypto)
	if err != nil {
		return &Result{Err: err}
	}
	res.Notes = collection
	res.Warnings = append(res.Warnings, crypto.SecurityAudit()...)

	m.logger.Info(ctx, "session established", "username", username, "notes", len(collection))
	return res
}

// ChangePassword rotates the account verifier, re-derives the encryption
// key from the new password, and re-encrypts the collection under it, in
// that order. The account registry is the first mover so a failure partway
// never leaves a verifier the encryption key disagrees with silently: the
// user re-runs the change with the new password.
func (m *Manager) ChangePassword(ctx context.Context, res *Result, oldPassword, newPassword []byte) error {
	if err := m.Accounts.ChangePassword(ctx, res.User.Username, oldPassword, newPassword); err != nil {
		return err
	}
	if err := res.Crypto.ChangePassword(ctx, oldPassword, newPassword, res.User.ID); err != nil {
		return err
	}
	if err := m.Notes.Save(ctx, res.User.ID, res.Notes, res.Crypto); err != nil {
		return fmt.Errorf("re-encrypt notes: %w", err)
	}
	return nil
}

// DeleteAccount destroys the signed-in user after re-confirming the
// password. Removal order is note data, then crypto metadata, then the
// account record, so an interruption can strand orphaned files but never
// an authenticatable account with missing key material.
func (m *Manager) DeleteAccount(ctx context.Context, res *Result, password []byte) error {
	if _, err := m.Accounts.Authenticate(ctx, res.User.Username, password); err != nil {
		return err
	}
	if err := m.Notes.DeleteUserData(ctx, res.User.ID); err != nil {
		return err
	}
	if err := res.Crypto.DeleteUserCryptoData(ctx, res.User.ID); err != nil {
		return err
	}
	return m.Accounts.Delete(ctx, res.User.Username)
}
