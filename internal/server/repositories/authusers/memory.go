package authusers

import (
	"context"
	"sort"
	"sync"

	"github.com/plantaofacil/accounts/internal/common"
	"github.com/plantaofacil/accounts/internal/server/models"
)

// MemoryRepository keeps accounts in process-local maps. It backs tests and
// deployments without a configured store, and honors the same conditional
// semantics as the durable backends: every mutation happens under one mutex,
// so concurrent callers still see exactly-one-winner behavior.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*models.AuthUser
	byEmail map[string]string // emailLower -> id
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.AuthUser),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) CreatePendingUser(ctx context.Context, email, passwordHash string) (*models.AuthUser, error) {
	user := newPendingUser(email, passwordHash)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.EmailLower]; taken {
		return nil, common.ErrDuplicateEmail
	}
	r.byID[user.ID] = user
	r.byEmail[user.EmailLower] = user.ID

	copied := *user
	return &copied, nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.AuthUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, userID string) (*models.AuthUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *MemoryRepository) ListPending(ctx context.Context) ([]models.PendingUserSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	summaries := make([]models.PendingUserSummary, 0)
	for _, user := range r.byID {
		if user.Status == models.StatusPendingApproval {
			summaries = append(summaries, user.Summary())
		}
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (r *MemoryRepository) Approve(ctx context.Context, userID, approvedBy string) (*models.AuthUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	now := nowUTC()
	user.Status = models.StatusApproved
	user.ApprovedAt = &now
	user.ApprovedBy = approvedBy
	user.UpdatedAt = now

	copied := *user
	return &copied, nil
}

func (r *MemoryRepository) Reject(ctx context.Context, userID, approvedBy string) (*models.AuthUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	now := nowUTC()
	user.Status = models.StatusRejected
	user.ApprovedAt = nil
	user.ApprovedBy = approvedBy
	user.UpdatedAt = now

	copied := *user
	return &copied, nil
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[userID]
	if !ok {
		return common.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = nowUTC()
	return nil
}

func (r *MemoryRepository) Seed(ctx context.Context, users []models.AuthUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range users {
		user := users[i]
		if _, taken := r.byEmail[user.EmailLower]; taken {
			continue
		}
		r.byID[user.ID] = &user
		r.byEmail[user.EmailLower] = user.ID
	}
	return nil
}
