// Package authusers declares the repository contract for the account
// records behind registration, login and coordinator approval, plus the
// helpers shared by its storage backends.
package authusers

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/plantaofacil/accounts/internal/server/models"
)

// Repository persists AuthUser records. Every mutation is a single-record
// conditional operation: implementations must guarantee that two concurrent
// CreatePendingUser calls for the same normalized email produce exactly one
// success and one common.ErrDuplicateEmail, with no read-then-write race.
type Repository interface {
	// CreatePendingUser registers a new account in pendente_aprovacao with
	// role medico and a display name derived from the email local part.
	// Returns common.ErrDuplicateEmail when the normalized email is taken.
	CreatePendingUser(ctx context.Context, email, passwordHash string) (*models.AuthUser, error)

	// FindByEmail looks up a record case-insensitively by normalized email.
	// Returns common.ErrNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*models.AuthUser, error)

	// FindByID looks up a record by primary key.
	FindByID(ctx context.Context, userID string) (*models.AuthUser, error)

	// ListPending returns public-safe summaries of all pending accounts,
	// most recently created first.
	ListPending(ctx context.Context) ([]models.PendingUserSummary, error)

	// Approve transitions the record to aprovado, stamping approvedAt and
	// approvedBy. Returns common.ErrNotFound when the record does not
	// exist, including when it vanished between check and update.
	Approve(ctx context.Context, userID, approvedBy string) (*models.AuthUser, error)

	// Reject transitions the record to rejeitado, stamping approvedBy and
	// clearing approvedAt. Same existence semantics as Approve.
	Reject(ctx context.Context, userID, approvedBy string) (*models.AuthUser, error)

	// UpdatePassword overwrites the password hash and updatedAt, leaving
	// every other field untouched. Returns common.ErrNotFound when the
	// record does not exist.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// Seed inserts pre-built records, skipping emails that already exist.
	// Called once at process start by the composition root.
	Seed(ctx context.Context, users []models.AuthUser) error
}

// NormalizeEmail folds an email to its unique lookup form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DefaultNomeFromEmail derives a display name from the email local part:
// "ana.souza@x.com" becomes "Ana Souza". An empty local part falls back to
// "Medico".
func DefaultNomeFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		local = "medico"
	}
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, p := range parts {
		runes := []rune(p)
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// newPendingUser builds the record CreatePendingUser persists.
func newPendingUser(email, passwordHash string) *models.AuthUser {
	now := time.Now().UTC()
	emailLower := NormalizeEmail(email)
	return &models.AuthUser{
		ID:           uuid.NewString(),
		Email:        emailLower,
		EmailLower:   emailLower,
		Nome:         DefaultNomeFromEmail(emailLower),
		Role:         models.RoleMedico,
		Status:       models.StatusPendingApproval,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
