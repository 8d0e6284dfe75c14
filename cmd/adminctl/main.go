// adminctl is an operator tool for the accounts service. It talks straight
// to the configured storage backend, so it must run with the same config
// (env, .env file or -c json) as the server.
//
// Usage:
//
//	adminctl seed <file.json>
//	adminctl create-admin <email>
//	adminctl list-pending
//	adminctl approve <user-id>
//	adminctl reject <user-id>
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/plantaofacil/accounts/internal/common"
	"github.com/plantaofacil/accounts/internal/logging"
	"github.com/plantaofacil/accounts/internal/server/config"
	"github.com/plantaofacil/accounts/internal/server/models"
	"github.com/plantaofacil/accounts/internal/server/repositories/authusers"
	"github.com/plantaofacil/accounts/internal/server/repositories/repomanager"
	"github.com/plantaofacil/accounts/internal/server/services"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: adminctl <seed|create-admin|list-pending|approve|reject> [args]")
		os.Exit(1)
	}

	// commands read config from env and files only, the positional
	// arguments would confuse the flag parser
	command := os.Args[1]
	args := os.Args[2:]
	os.Args = os.Args[:1]
	cfg := config.LoadConfig()

	ctx := context.Background()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	repos, err := newRepositoryManager(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage init error: %v\n", err)
		os.Exit(1)
	}
	defer repos.Close()

	if err := run(ctx, repos, command, args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
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
	default:
		return nil, fmt.Errorf("backend %q is not usable from adminctl", cfg.Backend)
	}
}

func run(ctx context.Context, repos repomanager.RepositoryManager, command string, args []string) error {
	users := repos.AuthUsers()

	switch command {
	case "seed":
		if len(args) != 1 {
			return errors.New("usage: adminctl seed <file.json>")
		}
		seeds, err := services.LoadSeedAccounts(args[0])
		if err != nil {
			return err
		}
		if err := users.Seed(ctx, seeds); err != nil {
			return err
		}
		fmt.Printf("seeded %d accounts from %s\n", len(seeds), args[0])
		return nil

	case "create-admin":
		if len(args) != 1 {
			return errors.New("usage: adminctl create-admin <email>")
		}
		return createAdmin(ctx, users, args[0])

	case "list-pending":
		pending, err := users.ListPending(ctx)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println("no pending users")
			return nil
		}
		for _, u := range pending {
			fmt.Printf("%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, u.CreatedAt.Format(time.RFC3339))
		}
		return nil

	case "approve":
		if len(args) != 1 {
			return errors.New("usage: adminctl approve <user-id>")
		}
		user, err := users.Approve(ctx, args[0], "adminctl")
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("user %s not found", args[0])
			}
			return err
		}
		fmt.Printf("approved %s (%s)\n", user.Email, user.ID)
		return nil

	case "reject":
		if len(args) != 1 {
			return errors.New("usage: adminctl reject <user-id>")
		}
		user, err := users.Reject(ctx, args[0], "adminctl")
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("user %s not found", args[0])
			}
			return err
		}
		fmt.Printf("rejected %s (%s)\n", user.Email, user.ID)
		return nil

	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func createAdmin(ctx context.Context, users authusers.Repository, email string) error {
	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	if len(password) < 6 {
		return errors.New("password must have at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	normalized := authusers.NormalizeEmail(email)
	if _, err := users.FindByEmail(ctx, normalized); err == nil {
		return fmt.Errorf("email %s is already registered", normalized)
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	now := time.Now().UTC()
	admin := models.AuthUser{
		ID:           uuid.NewString(),
		Email:        normalized,
		EmailLower:   normalized,
		Nome:         authusers.DefaultNomeFromEmail(normalized),
		Role:         models.RoleAdmin,
		Status:       models.StatusApproved,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
		ApprovedAt:   &now,
		ApprovedBy:   "adminctl",
	}

	if err := users.Seed(ctx, []models.AuthUser{admin}); err != nil {
		return err
	}
	fmt.Printf("created admin %s (%s)\n", admin.Email, admin.ID)
	return nil
}
