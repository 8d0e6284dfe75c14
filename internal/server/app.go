// Package server initializes and runs the accounts service. It selects a
// storage backend, wires notification senders, optionally seeds accounts
// from a file and serves the HTTP API until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plantaofacil/accounts/internal/awsx"
	"github.com/plantaofacil/accounts/internal/logging"
	"github.com/plantaofacil/accounts/internal/server/config"
	"github.com/plantaofacil/accounts/internal/server/httpapi"
	"github.com/plantaofacil/accounts/internal/server/notifications"
	"github.com/plantaofacil/accounts/internal/server/repositories/repomanager"
	"github.com/plantaofacil/accounts/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	accounts *services.AccountService
	resets   *services.PasswordResetService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	repos, err := newRepositoryManager(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	email, sms, err := newSenders(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("notifications init error: %w", err)
	}

	accounts := services.NewAccountService(repos.AuthUsers(), email, sms, logger, cfg)
	resets := services.NewPasswordResetService(repos.AuthUsers(), repos.ResetTokens(), email, logger, cfg)

	app := &App{config: cfg, logger: logger, repos: repos, accounts: accounts, resets: resets}

	if cfg.SeedFile != "" {
		if err := app.seedFromFile(ctx, cfg.SeedFile); err != nil {
			return nil, fmt.Errorf("seed error: %w", err)
		}
	}

	return app, nil
}

func newRepositoryManager(ctx context.Context, cfg *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	switch cfg.Backend {
	case config.BackendDynamo:
		return repomanager.NewDynamoRepositoryManager(ctx, repomanager.DynamoConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Endpoint:        cfg.DynamoEndpoint,
			UsersTable:      cfg.DynamoUsersTable,
			ResetTable:      cfg.DynamoResetTable,
			EmailIndex:      cfg.DynamoEmailIndex,
		}, logger)
	case config.BackendPostgres:
		return repomanager.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	case config.BackendMemory:
		return repomanager.NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

func newSenders(ctx context.Context, cfg *config.Config) (notifications.EmailSender, notifications.SMSSender, error) {
	var email notifications.EmailSender = notifications.NoopEmailSender{}
	var sms notifications.SMSSender = notifications.NoopSMSSender{}

	if !cfg.EmailEnabled && !cfg.SMSEnabled {
		return email, sms, nil
	}

	awsCfg, err := awsx.LoadConfig(ctx, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey)
	if err != nil {
		return nil, nil, err
	}
	if cfg.EmailEnabled {
		email = notifications.NewSESEmailSender(awsCfg, cfg.EmailFrom, cfg.EmailReplyTo)
	}
	if cfg.SMSEnabled {
		sms = notifications.NewSNSSMSSender(awsCfg)
	}
	return email, sms, nil
}

// seedFromFile loads the JSON account list at path and inserts the accounts
// that do not exist yet. Existing emails are left untouched.
func (app *App) seedFromFile(ctx context.Context, path string) error {
	users, err := services.LoadSeedAccounts(path)
	if err != nil {
		return err
	}
	if err := app.repos.AuthUsers().Seed(ctx, users); err != nil {
		return err
	}
	app.logger.Info(ctx, "seed file loaded", "path", path, "users", len(users))
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddr, "backend", app.config.Backend)

	app.initSignalHandler(cancelFunc)

	api := httpapi.NewAPI(app.accounts, app.resets, app.logger, app.config)
	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: api.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, err.Error())
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, err.Error())
		}
	}

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	app.logger.Info(ctx, "App stopped")
}
