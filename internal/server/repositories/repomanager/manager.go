// Package repomanager wires the account and reset-token repositories to a
// storage backend. Three backends share one contract: DynamoDB in
// production, Postgres for self-hosted installs, in-memory for tests and
// environments without a configured store.
package repomanager

import (
	"github.com/plantaofacil/accounts/internal/server/repositories/authusers"
	"github.com/plantaofacil/accounts/internal/server/repositories/resettokens"
)

type RepositoryManager interface {
	AuthUsers() authusers.Repository
	ResetTokens() resettokens.Repository
	Close() error
}
