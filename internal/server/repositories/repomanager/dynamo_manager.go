package repomanager

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/plantaofacil/accounts/internal/awsx"
	"github.com/plantaofacil/accounts/internal/logging"
	"github.com/plantaofacil/accounts/internal/server/repositories/authusers"
	"github.com/plantaofacil/accounts/internal/server/repositories/resettokens"
)

// DynamoConfig carries the settings the DynamoDB backend needs. Endpoint is
// optional and only set for local DynamoDB.
type DynamoConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsersTable      string
	ResetTable      string
	EmailIndex      string
}

type DynamoRepositoryManager struct {
	users  *authusers.DynamoRepository
	tokens *resettokens.DynamoRepository
}

func NewDynamoRepositoryManager(ctx context.Context, cfg DynamoConfig, logger logging.Logger) (*DynamoRepositoryManager, error) {
	if cfg.UsersTable == "" || cfg.ResetTable == "" {
		return nil, fmt.Errorf("missing DynamoDB table configuration")
	}

	awsCfg, err := awsx.LoadConfig(ctx, cfg.Region, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &DynamoRepositoryManager{
		users:  authusers.NewDynamoRepository(client, cfg.UsersTable, cfg.EmailIndex, logger),
		tokens: resettokens.NewDynamoRepository(client, cfg.ResetTable),
	}, nil
}

func (m *DynamoRepositoryManager) AuthUsers() authusers.Repository {
	return m.users
}

func (m *DynamoRepositoryManager) ResetTokens() resettokens.Repository {
	return m.tokens
}

func (m *DynamoRepositoryManager) Close() error {
	return nil
}
