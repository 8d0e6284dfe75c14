package resettokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/plantaofacil/accounts/internal/common"
	"github.com/plantaofacil/accounts/internal/server/models"
)

// DynamoRepository stores reset tokens under pk "RESET#<tokenId>".
// Consumption reads the row, validates it, then sets usedAt guarded by
// attribute_not_exists(usedAt); the condition losing to a concurrent
// consumer is a normal ErrTokenInvalid outcome, not a failure.
type DynamoRepository struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoRepository(client *dynamodb.Client, table string) *DynamoRepository {
	return &DynamoRepository{client: client, table: table}
}

type tokenItem struct {
	PK        string `dynamodbav:"pk"`
	TokenID   string `dynamodbav:"tokenId"`
	UserID    string `dynamodbav:"userId"`
	TokenHash string `dynamodbav:"tokenHash"`
	CreatedAt string `dynamodbav:"createdAt"`
	ExpiresAt int64  `dynamodbav:"expiresAt"`
	UsedAt    string `dynamodbav:"usedAt,omitempty"`
}

func resetPK(tokenID string) string { return "RESET#" + tokenID }

func (r *DynamoRepository) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	raw, row, err := issueToken(userID, ttl)
	if err != nil {
		return "", err
	}

	av, err := attributevalue.MarshalMap(tokenItem{
		PK:        resetPK(row.TokenID),
		TokenID:   row.TokenID,
		UserID:    row.UserID,
		TokenHash: row.TokenHash,
		CreatedAt: row.CreatedAt.Format(time.RFC3339Nano),
		ExpiresAt: row.ExpiresAt,
	})
	if err != nil {
		return "", fmt.Errorf("marshalling token: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			// uuid collision; do not overwrite the existing token
			return "", common.ErrPreconditionFailed
		}
		return "", fmt.Errorf("dynamodb error: %w", err)
	}
	return raw, nil
}

func (r *DynamoRepository) Consume(ctx context.Context, rawToken string) (string, error) {
	tokenID, secret, ok := parseRawToken(rawToken)
	if !ok {
		return "", common.ErrTokenInvalid
	}
	expectedHash := HashSecret(secret)
	now := time.Now().UTC()

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: resetPK(tokenID)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("dynamodb error: %w", err)
	}
	if out.Item == nil {
		return "", common.ErrTokenInvalid
	}

	var item tokenItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", fmt.Errorf("unmarshalling token: %w", err)
	}

	row := models.PasswordResetToken{
		TokenID:   item.TokenID,
		UserID:    item.UserID,
		TokenHash: item.TokenHash,
		ExpiresAt: item.ExpiresAt,
	}
	if item.UsedAt != "" {
		usedAt := now
		row.UsedAt = &usedAt
	}
	if !row.Valid(now, expectedHash) {
		return "", common.ErrTokenInvalid
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: resetPK(tokenID)},
		},
		UpdateExpression: aws.String("SET usedAt = :usedAt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":usedAt": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_not_exists(usedAt)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			// lost the race to another consumer
			return "", common.ErrTokenInvalid
		}
		return "", fmt.Errorf("dynamodb error: %w", err)
	}
	return item.UserID, nil
}
