// Package resettokens declares the repository contract for single-use,
// time-limited password-reset tokens.
package resettokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plantaofacil/accounts/internal/common"
	"github.com/plantaofacil/accounts/internal/server/models"
)

// Repository persists reset tokens. Consume must be atomic: for a given
// token, concurrent Consume calls yield exactly one userID across all
// callers, the rest get common.ErrTokenInvalid.
type Repository interface {
	// Create issues a token for userID valid for ttl and returns the raw
	// "tokenID.secret" string. Only the secret's hash is stored; the raw
	// value exists nowhere but the return.
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)

	// Consume validates and atomically spends a raw token, returning the
	// userID it authorizes. Malformed, unknown, expired, already-used and
	// wrong-secret tokens all fail with common.ErrTokenInvalid, deliberately
	// indistinguishable.
	Consume(ctx context.Context, rawToken string) (string, error)
}

// secretBytes is the amount of random secret material per token. 32 bytes
// is double the 128-bit floor the token format requires.
const secretBytes = 32

// HashSecret returns the hex sha256 of the secret half of a raw token.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// issueToken builds a fresh token row plus the raw string handed to the user.
func issueToken(userID string, ttl time.Duration) (string, *models.PasswordResetToken, error) {
	tokenID := uuid.NewString()
	secret, err := common.MakeRandHexString(secretBytes)
	if err != nil {
		return "", nil, err
	}
	now := time.Now().UTC()
	row := &models.PasswordResetToken{
		TokenID:   tokenID,
		UserID:    userID,
		TokenHash: HashSecret(secret),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl).Unix(),
	}
	return tokenID + "." + secret, row, nil
}

// parseRawToken splits a raw token on its first dot. ok is false when either
// half is missing; callers must not touch storage in that case.
func parseRawToken(raw string) (tokenID, secret string, ok bool) {
	tokenID, secret, found := strings.Cut(raw, ".")
	if !found || tokenID == "" || secret == "" {
		return "", "", false
	}
	return tokenID, secret, true
}
