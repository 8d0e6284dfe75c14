package resettokens

import (
	"context"
	"sync"
	"time"

	"github.com/plantaofacil/accounts/internal/common"
	"github.com/plantaofacil/accounts/internal/server/models"
)

// MemoryRepository keeps reset tokens in a process-local map. Check and
// consumption happen under one mutex, so the single-use guarantee holds for
// concurrent callers within the process.
type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]*models.PasswordResetToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]*models.PasswordResetToken)}
}

func (r *MemoryRepository) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	raw, row, err := issueToken(userID, ttl)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[row.TokenID]; exists {
		return "", common.ErrPreconditionFailed
	}
	r.tokens[row.TokenID] = row
	return raw, nil
}

func (r *MemoryRepository) Consume(ctx context.Context, rawToken string) (string, error) {
	tokenID, secret, ok := parseRawToken(rawToken)
	if !ok {
		return "", common.ErrTokenInvalid
	}
	expectedHash := HashSecret(secret)
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	row, exists := r.tokens[tokenID]
	if !exists || !row.Valid(now, expectedHash) {
		return "", common.ErrTokenInvalid
	}
	row.UsedAt = &now
	return row.UserID, nil
}
