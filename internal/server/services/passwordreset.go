package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/plantaofacil/accounts/internal/common"
	"github.com/plantaofacil/accounts/internal/logging"
	"github.com/plantaofacil/accounts/internal/server/config"
	"github.com/plantaofacil/accounts/internal/server/models"
	"github.com/plantaofacil/accounts/internal/server/notifications"
	"github.com/plantaofacil/accounts/internal/server/repositories/authusers"
	"github.com/plantaofacil/accounts/internal/server/repositories/resettokens"
)

// PasswordResetService issues single-use reset tokens and applies password
// changes when a valid token is redeemed.
type PasswordResetService struct {
	users   authusers.Repository
	tokens  resettokens.Repository
	email   notifications.EmailSender
	logger  logging.Logger
	ttl     time.Duration
	baseURL string
}

func NewPasswordResetService(users authusers.Repository, tokens resettokens.Repository,
	email notifications.EmailSender, logger logging.Logger, cfg *config.Config) *PasswordResetService {
	return &PasswordResetService{
		users:   users,
		tokens:  tokens,
		email:   email,
		logger:  logger.With("module", "password_reset_service"),
		ttl:     cfg.ResetTokenTTL,
		baseURL: cfg.AppBaseURL,
	}
}

// RequestReset issues a reset token for the account behind email and mails
// a link carrying the raw token. It always returns nil: the caller must
// answer identically whether or not the account exists, so failures are
// logged here instead of propagated.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error(ctx, "reset request lookup failed", "error", err.Error())
		}
		return nil
	}
	if user.Status != models.StatusApproved {
		return nil
	}

	raw, err := s.tokens.Create(ctx, user.ID, s.ttl)
	if err != nil {
		s.logger.Error(ctx, "could not create reset token", "error", err.Error())
		return nil
	}

	resetURL := s.baseURL + "/reset-password?token=" + url.QueryEscape(raw)
	if err := s.email.SendResetSenha(ctx, user.Email, resetURL); err != nil {
		s.logger.Error(ctx, "could not send reset email", "error", err.Error())
	}
	return nil
}

// ResetPassword redeems rawToken and, if it wins the single-use consume,
// replaces the owning account's password hash. An expired, used, unknown or
// malformed token comes back as common.ErrTokenInvalid.
func (s *PasswordResetService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	userID, err := s.tokens.Consume(ctx, rawToken)
	if err != nil {
		if errors.Is(err, common.ErrTokenInvalid) {
			return common.ErrTokenInvalid
		}
		return fmt.Errorf("consuming reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}
