package repomanager

import (
	"github.com/plantaofacil/accounts/internal/server/repositories/authusers"
	"github.com/plantaofacil/accounts/internal/server/repositories/resettokens"
)

type MemoryRepositoryManager struct {
	users  *authusers.MemoryRepository
	tokens *resettokens.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:  authusers.NewMemoryRepository(),
		tokens: resettokens.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) AuthUsers() authusers.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) ResetTokens() resettokens.Repository {
	return m.tokens
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
