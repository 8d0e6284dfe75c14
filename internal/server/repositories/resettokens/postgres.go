package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/plantaofacil/accounts/internal/common"
	"github.com/plantaofacil/accounts/internal/dbx"
)

// PostgresRepository stores reset tokens in the password_reset_tokens table.
// Consumption is a single conditional UPDATE whose WHERE clause carries the
// whole validity check, so exactly one concurrent consumer can win.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	raw, row, err := issueToken(userID, ttl)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO password_reset_tokens (token_id, user_id, token_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		row.TokenID, row.UserID, row.TokenHash, row.CreatedAt, row.ExpiresAt)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		// uuid collision; do not overwrite the existing token
		return "", common.ErrPreconditionFailed
	}
	return raw, nil
}

func (r *PostgresRepository) Consume(ctx context.Context, rawToken string) (string, error) {
	tokenID, secret, ok := parseRawToken(rawToken)
	if !ok {
		return "", common.ErrTokenInvalid
	}
	now := time.Now().UTC()

	query := `
		UPDATE password_reset_tokens
		SET used_at = $2
		WHERE token_id = $1
		  AND used_at IS NULL
		  AND expires_at > $3
		  AND token_hash = $4
		RETURNING user_id
	`
	var userID string
	err := r.db.QueryRowContext(ctx, query, tokenID, now, now.Unix(), HashSecret(secret)).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrTokenInvalid
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return userID, nil
}
