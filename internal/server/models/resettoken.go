package models

import (
	"crypto/subtle"
	"time"
)

// PasswordResetToken is the stored half of a reset token. The raw token
// handed to the user is "tokenID.secret"; only the sha256 of the secret is
// persisted. ExpiresAt is absolute expiry in epoch seconds. UsedAt is set
// exactly once, at first successful consumption.
type PasswordResetToken struct {
	TokenID   string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt int64
	UsedAt    *time.Time
}

// Valid reports whether the token is still consumable at the given instant
// for the given secret hash. It does not consume the token.
func (t *PasswordResetToken) Valid(now time.Time, secretHash string) bool {
	if t.UsedAt != nil {
		return false
	}
	if t.ExpiresAt <= now.Unix() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(t.TokenHash), []byte(secretHash)) == 1
}
