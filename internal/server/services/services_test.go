package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/plantaofacil/accounts/internal/logging"
	"github.com/plantaofacil/accounts/internal/server/config"
	"github.com/plantaofacil/accounts/internal/server/repositories/authusers"
	"github.com/plantaofacil/accounts/internal/server/repositories/resettokens"
)

// recordingEmailSender captures every message instead of sending it.
type recordingEmailSender struct {
	mu       sync.Mutex
	received []string
	approved []string
	rejected []string
	resetURL []string
}

func (r *recordingEmailSender) SendCadastroRecebido(_ context.Context, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, to)
	return nil
}

func (r *recordingEmailSender) SendContaAprovada(_ context.Context, to, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.approved = append(r.approved, to)
	return nil
}

func (r *recordingEmailSender) SendContaRejeitada(_ context.Context, to, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, to)
	return nil
}

func (r *recordingEmailSender) SendResetSenha(_ context.Context, _, resetURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetURL = append(r.resetURL, resetURL)
	return nil
}

type recordingSMSSender struct {
	mu     sync.Mutex
	alerts []string
}

func (r *recordingSMSSender) SendCadastroPendente(_ context.Context, _, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, email)
	return nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.SessionValidity = time.Hour
	cfg.ResetTokenTTL = 30 * time.Minute
	cfg.AppBaseURL = "https://app.example.com"
	cfg.SMSAlertPhone = "+5511999990000"
	return cfg
}

type fixture struct {
	users    *authusers.MemoryRepository
	tokens   *resettokens.MemoryRepository
	email    *recordingEmailSender
	sms      *recordingSMSSender
	accounts *AccountService
	resets   *PasswordResetService
}

func newFixture() *fixture {
	users := authusers.NewMemoryRepository()
	tokens := resettokens.NewMemoryRepository()
	email := &recordingEmailSender{}
	sms := &recordingSMSSender{}
	cfg := testConfig()
	logger := testLogger()
	return &fixture{
		users:    users,
		tokens:   tokens,
		email:    email,
		sms:      sms,
		accounts: NewAccountService(users, email, sms, logger, cfg),
		resets:   NewPasswordResetService(users, tokens, email, logger, cfg),
	}
}
