package authusers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantaofacil/accounts/internal/common"
	"github.com/plantaofacil/accounts/internal/server/models"
)

func TestMemoryCreatePendingUser(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	user, err := repo.CreatePendingUser(ctx, "maria.silva@hospital.com", "hash")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "maria.silva@hospital.com", user.EmailLower)
	assert.Equal(t, models.StatusPendingApproval, user.Status)
	assert.Equal(t, models.RoleMedico, user.Role)
	assert.Equal(t, "Maria Silva", user.Nome)
	assert.Nil(t, user.ApprovedAt)
}

func TestMemoryCreatePendingUser_DuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.CreatePendingUser(ctx, "medico@hospital.com", "hash1")
	require.NoError(t, err)

	_, err = repo.CreatePendingUser(ctx, "MEDICO@Hospital.com", "hash2")
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestMemoryCreatePendingUser_ConcurrentSingleWinner(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	const goroutines = 20
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreatePendingUser(ctx, "medico@hospital.com", "hash")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, common.ErrDuplicateEmail)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestMemoryFindByEmail_CaseInsensitive(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.CreatePendingUser(ctx, "medico@hospital.com", "hash")
	require.NoError(t, err)

	found, err := repo.FindByEmail(ctx, "  MEDICO@HOSPITAL.COM ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "outro@hospital.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryApprove(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.CreatePendingUser(ctx, "medico@hospital.com", "hash")
	require.NoError(t, err)

	approved, err := repo.Approve(ctx, created.ID, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, "admin-1", approved.ApprovedBy)
	assert.False(t, approved.UpdatedAt.Before(created.UpdatedAt))

	_, err = repo.Approve(ctx, "no-such-id", "admin-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryReject_ClearsApprovedAt(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.CreatePendingUser(ctx, "medico@hospital.com", "hash")
	require.NoError(t, err)

	_, err = repo.Approve(ctx, created.ID, "admin-1")
	require.NoError(t, err)

	rejected, err := repo.Reject(ctx, created.ID, "admin-2")
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.Nil(t, rejected.ApprovedAt)
	assert.Equal(t, "admin-2", rejected.ApprovedBy)
}

func TestMemoryListPending_SkipsDecidedUsers(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	a, err := repo.CreatePendingUser(ctx, "a@hospital.com", "hash")
	require.NoError(t, err)
	_, err = repo.CreatePendingUser(ctx, "b@hospital.com", "hash")
	require.NoError(t, err)

	_, err = repo.Approve(ctx, a.ID, "admin-1")
	require.NoError(t, err)

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b@hospital.com", pending[0].Email)
}

func TestMemoryUpdatePassword(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.CreatePendingUser(ctx, "medico@hospital.com", "old-hash")
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePassword(ctx, created.ID, "new-hash"))

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", found.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, "no-such-id", "x"), common.ErrNotFound)
}

func TestMemoryReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.CreatePendingUser(ctx, "medico@hospital.com", "hash")
	require.NoError(t, err)
	created.PasswordHash = "mutated"

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", found.PasswordHash)
}

func TestMemorySeed_SkipsExistingEmails(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	existing, err := repo.CreatePendingUser(ctx, "medico@hospital.com", "hash")
	require.NoError(t, err)

	now := time.Now().UTC()
	err = repo.Seed(ctx, []models.AuthUser{
		{
			ID: "seed-1", Email: "medico@hospital.com", EmailLower: "medico@hospital.com",
			Role: models.RoleAdmin, Status: models.StatusApproved, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "seed-2", Email: "admin@hospital.com", EmailLower: "admin@hospital.com",
			Role: models.RoleAdmin, Status: models.StatusApproved, CreatedAt: now, UpdatedAt: now,
		},
	})
	require.NoError(t, err)

	// the taken email kept its original record
	found, err := repo.FindByEmail(ctx, "medico@hospital.com")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, found.ID)

	seeded, err := repo.FindByEmail(ctx, "admin@hospital.com")
	require.NoError(t, err)
	assert.Equal(t, "seed-2", seeded.ID)
}

func TestDefaultNomeFromEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"maria.silva@hospital.com", "Maria Silva"},
		{"joao-pedro@hospital.com", "Joao Pedro"},
		{"ana_luiza@hospital.com", "Ana Luiza"},
		{"drcarlos@hospital.com", "Drcarlos"},
		{"@hospital.com", "Medico"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultNomeFromEmail(tt.email), "email %s", tt.email)
	}
}
