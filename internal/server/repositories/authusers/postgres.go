package authusers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/plantaofacil/accounts/internal/common"
	"github.com/plantaofacil/accounts/internal/dbx"
	"github.com/plantaofacil/accounts/internal/server/models"
)

// PostgresRepository stores accounts in the auth_users table over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx). Uniqueness of email_lower is enforced
// by the unique index, so a losing concurrent insert surfaces as
// common.ErrDuplicateEmail rather than a second row.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, email_lower, nome, role, status, password_hash, created_at, updated_at, approved_at, approved_by`

func scanUser(row *sql.Row) (*models.AuthUser, error) {
	user := &models.AuthUser{}
	var approvedBy sql.NullString
	err := row.Scan(&user.ID, &user.Email, &user.EmailLower, &user.Nome, &user.Role,
		&user.Status, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
		&user.ApprovedAt, &approvedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.ApprovedBy = approvedBy.String
	return user, nil
}

func (r *PostgresRepository) CreatePendingUser(ctx context.Context, email, passwordHash string) (*models.AuthUser, error) {
	user := newPendingUser(email, passwordHash)

	query := `
		INSERT INTO auth_users (id, email, email_lower, nome, role, status, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (email_lower) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.EmailLower, user.Nome, user.Role,
		user.Status, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return nil, common.ErrDuplicateEmail
	}
	return user, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.AuthUser, error) {
	query := `SELECT ` + userColumns + ` FROM auth_users WHERE email_lower = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, NormalizeEmail(email)))
}

func (r *PostgresRepository) FindByID(ctx context.Context, userID string) (*models.AuthUser, error) {
	query := `SELECT ` + userColumns + ` FROM auth_users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) ListPending(ctx context.Context) ([]models.PendingUserSummary, error) {
	query := `
		SELECT id, email, nome, role, status, created_at
		FROM auth_users
		WHERE status = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, models.StatusPendingApproval)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.PendingUserSummary, 0)
	for rows.Next() {
		var s models.PendingUserSummary
		if err := rows.Scan(&s.ID, &s.Email, &s.Nome, &s.Role, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return summaries, nil
}

func (r *PostgresRepository) Approve(ctx context.Context, userID, approvedBy string) (*models.AuthUser, error) {
	query := `
		UPDATE auth_users
		SET status = $2, approved_at = $3, approved_by = $4, updated_at = $3
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, userID, models.StatusApproved, nowUTC(), approvedBy))
}

func (r *PostgresRepository) Reject(ctx context.Context, userID, approvedBy string) (*models.AuthUser, error) {
	query := `
		UPDATE auth_users
		SET status = $2, approved_at = NULL, approved_by = $3, updated_at = $4
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, userID, models.StatusRejected, approvedBy, nowUTC()))
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `
		UPDATE auth_users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID, passwordHash, nowUTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Seed(ctx context.Context, users []models.AuthUser) error {
	query := `
		INSERT INTO auth_users (id, email, email_lower, nome, role, status, password_hash, created_at, updated_at, approved_at, approved_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (email_lower) DO NOTHING
	`
	for i := range users {
		u := &users[i]
		var approvedBy any
		if u.ApprovedBy != "" {
			approvedBy = u.ApprovedBy
		}
		if _, err := r.db.ExecContext(ctx, query,
			u.ID, u.Email, u.EmailLower, u.Nome, u.Role, u.Status,
			u.PasswordHash, u.CreatedAt, u.UpdatedAt, u.ApprovedAt, approvedBy); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}
