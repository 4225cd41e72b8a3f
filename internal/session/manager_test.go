package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securenotes/internal/accounts"
	"securenotes/internal/cryptox"
	"securenotes/internal/logging"
	"securenotes/internal/notes"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), logging.NewDefault("error"))
	require.NoError(t, err)
	m.KDF = cryptox.KDFParams{MemoryKiB: 64, Iterations: 1, Parallelism: 1}
	m.Accounts.Verifier = cryptox.VerifierParams{MemoryKiB: 64, Iterations: 1, Parallelism: 1}
	return m
}

func signIn(t *testing.T, m *Manager, username, password string, register bool) *Result {
	t.Helper()
	a, err := m.Begin(context.Background(), username, []byte(password), register)
	require.NoError(t, err)
	res := a.Wait()
	return res
}

func TestManager_RegisterAndSignIn(t *testing.T) {
	m := testManager(t)

	res := signIn(t, m, "alice", "secret123", true)
	require.NoError(t, res.Err)
	assert.Equal(t, "alice", res.User.Username)
	assert.NotNil(t, res.Crypto)
	assert.NotNil(t, res.Notes)
	assert.Empty(t, res.Notes)

	// Second login with the same password reuses the stored metadata.
	res2 := signIn(t, m, "alice", "secret123", false)
	require.NoError(t, res2.Err)
	assert.Equal(t, res.User.ID, res2.User.ID)
}

func TestManager_WrongPassword(t *testing.T) {
	m := testManager(t)
	require.NoError(t, signIn(t, m, "alice", "secret123", true).Err)

	res := signIn(t, m, "alice", "wrongpass", false)
	assert.ErrorIs(t, res.Err, accounts.ErrInvalidCredentials)
}

func TestManager_RegisterDuplicate(t *testing.T) {
	m := testManager(t)
	require.NoError(t, signIn(t, m, "alice", "secret123", true).Err)

	res := signIn(t, m, "Alice", "other-pass", true)
	assert.ErrorIs(t, res.Err, accounts.ErrDuplicateUsername)
}

func TestManager_SingleFlight(t *testing.T) {
	m := testManager(t)

	a, err := m.Begin(context.Background(), "alice", []byte("secret123"), true)
	require.NoError(t, err)

	_, err = m.Begin(context.Background(), "bob", []byte("secret123"), true)
	assert.ErrorIs(t, err, ErrAuthInFlight)

	require.NoError(t, a.Wait().Err)

	// Once the first attempt resolves, a new one may start.
	b, err := m.Begin(context.Background(), "bob", []byte("secret123"), true)
	require.NoError(t, err)
	require.NoError(t, b.Wait().Err)
}

func TestAttempt_PollNonBlocking(t *testing.T) {
	m := testManager(t)

	a, err := m.Begin(context.Background(), "alice", []byte("secret123"), true)
	require.NoError(t, err)

	deadline := time.Now().Add(10 * time.Second)
	for {
		res, done := a.Poll()
		if done {
			require.NoError(t, res.Err)
			break
		}
		require.True(t, time.Now().Before(deadline), "attempt did not finish in time")
		time.Sleep(5 * time.Millisecond)
	}

	// Poll keeps returning the consumed result.
	res, done := a.Poll()
	require.True(t, done)
	assert.NotNil(t, res)

	assert.Positive(t, a.Elapsed())
}

func TestManager_CallerMayWipePassword(t *testing.T) {
	m := testManager(t)

	pw := []byte("secret123")
	a, err := m.Begin(context.Background(), "alice", pw, true)
	require.NoError(t, err)
	for i := range pw {
		pw[i] = 0
	}
	require.NoError(t, a.Wait().Err)
}

func TestManager_NotesSurviveRelogin(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	res := signIn(t, m, "alice", "secret123", true)
	require.NoError(t, res.Err)

	n := notes.New("remember")
	n.Content = "the milk"
	res.Notes[n.ID] = n
	require.NoError(t, m.Notes.Save(ctx, res.User.ID, res.Notes, res.Crypto))

	res2 := signIn(t, m, "alice", "secret123", false)
	require.NoError(t, res2.Err)
	require.Len(t, res2.Notes, 1)
	assert.Equal(t, "remember", res2.Notes[n.ID].Title)
}

func TestManager_ChangePassword(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	res := signIn(t, m, "alice", "secret123", true)
	require.NoError(t, res.Err)
	n := notes.New("keep me")
	res.Notes[n.ID] = n
	require.NoError(t, m.Notes.Save(ctx, res.User.ID, res.Notes, res.Crypto))

	require.NoError(t, m.ChangePassword(ctx, res, []byte("secret123"), []byte("newsecret")))

	// Old password is gone; the new one opens the same notes.
	old := signIn(t, m, "alice", "secret123", false)
	assert.ErrorIs(t, old.Err, accounts.ErrInvalidCredentials)

	fresh := signIn(t, m, "alice", "newsecret", false)
	require.NoError(t, fresh.Err)
	require.Len(t, fresh.Notes, 1)
	assert.Equal(t, "keep me", fresh.Notes[n.ID].Title)
}

func TestManager_ChangePasswordWrongCurrent(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	res := signIn(t, m, "alice", "secret123", true)
	require.NoError(t, res.Err)

	err := m.ChangePassword(ctx, res, []byte("wrongpass"), []byte("newsecret"))
	assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
}

func TestManager_DeleteAccount(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	res := signIn(t, m, "alice", "secret123", true)
	require.NoError(t, res.Err)
	n := notes.New("doomed")
	res.Notes[n.ID] = n
	require.NoError(t, m.Notes.Save(ctx, res.User.ID, res.Notes, res.Crypto))

	require.NoError(t, m.DeleteAccount(ctx, res, []byte("secret123")))

	assert.Zero(t, m.Accounts.Count())
	size, err := m.Notes.DataSize(res.User.ID)
	require.NoError(t, err)
	assert.Zero(t, size)

	// The username is free again.
	again := signIn(t, m, "alice", "secret123", true)
	require.NoError(t, again.Err)
	assert.Empty(t, again.Notes)
}

func TestManager_DeleteAccountWrongPassword(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	res := signIn(t, m, "alice", "secret123", true)
	require.NoError(t, res.Err)

	err := m.DeleteAccount(ctx, res, []byte("wrongpass"))
	assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	assert.Equal(t, 1, m.Accounts.Count())
}

func TestManager_LegacyMigration(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	// First sign-in establishes key material; write a note collection to
	// the legacy root location encrypted under that user's key.
	res := signIn(t, m, "alice", "secret123", true)
	require.NoError(t, res.Err)

	n := notes.New("old note")
	n.Content = "from the single-user era"
	legacy := notes.Collection{n.ID: n}
	require.NoError(t, m.Notes.Save(ctx, res.User.ID, legacy, res.Crypto))

	// Move the saved blob to the legacy root path, leaving the user's
	// crypto metadata in place.
	src := filepath.Join(m.dataDir, "users", res.User.ID, "notes.enc")
	require.NoError(t, os.Rename(src, filepath.Join(m.dataDir, "notes.enc")))

	res2 := signIn(t, m, "alice", "secret123", false)
	require.NoError(t, res2.Err)
	require.Len(t, res2.Notes, 1)
	assert.Equal(t, "old note", res2.Notes[n.ID].Title)
}
