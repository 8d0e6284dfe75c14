package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/plantaofacil/accounts/internal/server/migrations"
	"github.com/plantaofacil/accounts/internal/server/repositories/authusers"
	"github.com/plantaofacil/accounts/internal/server/repositories/resettokens"
)

type PostgresRepositoryManager struct {
	db *sql.DB
}

// NewPostgresRepositoryManager opens the database and runs the embedded
// goose migrations before handing out repositories.
func NewPostgresRepositoryManager(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		db.Close()
		return nil, err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &PostgresRepositoryManager{db: db}, nil
}

func (m *PostgresRepositoryManager) AuthUsers() authusers.Repository {
	return authusers.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) ResetTokens() resettokens.Repository {
	return resettokens.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
