package accounts

import (
	"time"

	"github.com/google/uuid"

	"securenotes/internal/cryptox"
)

// UserIdentity is one registered account. The ID is generated once and used
// as the storage namespace key for the user's crypto material and notes;
// it never changes. PasswordHash is a self-describing argon2id PHC string
// used only to authenticate login attempts, never as an encryption key.
type UserIdentity struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func newUserIdentity(username string, password []byte, p cryptox.VerifierParams) *UserIdentity {
	return &UserIdentity{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: cryptox.HashPassword(password, p),
		CreatedAt:    time.Now().UTC(),
	}
}

// VerifyPassword checks password against the stored verifier using a
// constant-time comparison. Returns cryptox.ErrInvalidPassword on mismatch.
func (u *UserIdentity) VerifyPassword(password []byte) error {
	return cryptox.VerifyPassword(password, u.PasswordHash)
}
