// Package services contains the server-side business logic. This file
// implements AccountService, which owns the account lifecycle: registration
// into a pending state, coordinator approval and rejection, and credential
// validation at login.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/plantaofacil/accounts/internal/common"
	"github.com/plantaofacil/accounts/internal/logging"
	"github.com/plantaofacil/accounts/internal/server/auth"
	"github.com/plantaofacil/accounts/internal/server/config"
	"github.com/plantaofacil/accounts/internal/server/models"
	"github.com/plantaofacil/accounts/internal/server/notifications"
	"github.com/plantaofacil/accounts/internal/server/repositories/authusers"
)

// bcryptCost matches the cost the hosted app has always hashed with.
const bcryptCost = 10

// LoginResult bundles the session token minted at login with the
// authenticated record.
type LoginResult struct {
	Token string
	User  *models.AuthUser
}

type AccountService struct {
	users           authusers.Repository
	email           notifications.EmailSender
	sms             notifications.SMSSender
	logger          logging.Logger
	jwtSecret       []byte
	sessionValidity time.Duration
	smsAlertPhone   string
}

// NewAccountService constructs an AccountService using repositories,
// notification senders and server config.
func NewAccountService(users authusers.Repository, email notifications.EmailSender,
	sms notifications.SMSSender, logger logging.Logger, cfg *config.Config) *AccountService {
	return &AccountService{
		users:           users,
		email:           email,
		sms:             sms,
		logger:          logger.With("module", "account_service"),
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidity,
		smsAlertPhone:   cfg.SMSAlertPhone,
	}
}

// Register creates a pending account for the given email and plaintext
// password. Uniqueness of the normalized email is ultimately enforced by
// the repository's conditional create; the FindByEmail pre-check only
// gives the common case a cheaper answer. Notifications are best-effort.
func (s *AccountService) Register(ctx context.Context, email, password string) (*models.AuthUser, error) {
	normalized := authusers.NormalizeEmail(email)

	if _, err := s.users.FindByEmail(ctx, normalized); err == nil {
		return nil, common.ErrDuplicateEmail
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("looking up email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.users.CreatePendingUser(ctx, normalized, string(hash))
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if err := s.email.SendCadastroRecebido(ctx, user.Email); err != nil {
		s.logger.Warn(ctx, "could not send cadastro recebido email", "error", err.Error())
	}
	if s.smsAlertPhone != "" {
		if err := s.sms.SendCadastroPendente(ctx, s.smsAlertPhone, user.Email); err != nil {
			s.logger.Warn(ctx, "could not send pending-registration sms", "error", err.Error())
		}
	}
	return user, nil
}

// Login validates credentials and mints a session token.
//
// An unknown email and a wrong password both come back as
// common.ErrInvalidCredentials so an anonymous prober cannot tell them
// apart. Pending and rejected accounts get their own errors, but only
// after the record was found; the password is checked last and only for
// approved accounts.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up email: %w", err)
	}

	switch user.Status {
	case models.StatusPendingApproval:
		return nil, common.ErrAccountPending
	case models.StatusRejected:
		return nil, common.ErrAccountRejected
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return nil, fmt.Errorf("signing session token: %w", err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

// ListPendingUsers returns the approval queue, newest first.
func (s *AccountService) ListPendingUsers(ctx context.Context) ([]models.PendingUserSummary, error) {
	return s.users.ListPending(ctx)
}

// Approve transitions the account to aprovado and emails the owner.
// Returns common.ErrNotFound when no such account exists.
func (s *AccountService) Approve(ctx context.Context, userID, approvedBy string) (*models.AuthUser, error) {
	user, err := s.users.Approve(ctx, userID, approvedBy)
	if err != nil {
		return nil, err
	}
	if err := s.email.SendContaAprovada(ctx, user.Email, user.Nome); err != nil {
		s.logger.Warn(ctx, "could not send conta aprovada email", "error", err.Error())
	}
	return user, nil
}

// Reject transitions the account to rejeitado and emails the applicant.
func (s *AccountService) Reject(ctx context.Context, userID, approvedBy string) (*models.AuthUser, error) {
	user, err := s.users.Reject(ctx, userID, approvedBy)
	if err != nil {
		return nil, err
	}
	if err := s.email.SendContaRejeitada(ctx, user.Email, user.Nome); err != nil {
		s.logger.Warn(ctx, "could not send conta rejeitada email", "error", err.Error())
	}
	return user, nil
}
