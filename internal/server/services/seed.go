package services

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/plantaofacil/accounts/internal/server/models"
	"github.com/plantaofacil/accounts/internal/server/repositories/authusers"
)

// LoadSeedAccounts reads a JSON seed file and builds the account records it
// describes. Ativo maps to aprovado, everything else to rejeitado; plaintext
// seed passwords are hashed here and never stored.
func LoadSeedAccounts(path string) ([]models.AuthUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var seeds []models.SeedUser
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	now := time.Now().UTC()
	users := make([]models.AuthUser, 0, len(seeds))
	for _, s := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hashing seed password for %s: %w", s.Email, err)
		}

		email := authusers.NormalizeEmail(s.Email)
		status := models.StatusRejected
		if s.Ativo {
			status = models.StatusApproved
		}
		nome := s.Nome
		if nome == "" {
			nome = authusers.DefaultNomeFromEmail(email)
		}

		user := models.AuthUser{
			ID:           uuid.NewString(),
			Email:        email,
			EmailLower:   email,
			Nome:         nome,
			Role:         s.Role,
			Status:       status,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if s.Ativo {
			approvedAt := now
			user.ApprovedAt = &approvedAt
			user.ApprovedBy = "seed"
		}
		users = append(users, user)
	}
	return users, nil
}
