package authusers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/plantaofacil/accounts/internal/common"
	"github.com/plantaofacil/accounts/internal/logging"
	"github.com/plantaofacil/accounts/internal/server/models"
)

// DynamoRepository stores accounts in a single DynamoDB table.
//
// Key scheme: the user item lives under pk "USER#<id>" with gsi1pk
// "EMAIL#<emailLower>" for the email index. A companion lock item under pk
// "EMAIL#<emailLower>" makes email uniqueness a write-time condition: both
// items are put in one TransactWriteItems guarded by attribute_not_exists,
// so two concurrent registrations for the same email cannot both land.
type DynamoRepository struct {
	client     *dynamodb.Client
	table      string
	emailIndex string
	logger     logging.Logger
}

func NewDynamoRepository(client *dynamodb.Client, table, emailIndex string, logger logging.Logger) *DynamoRepository {
	return &DynamoRepository{
		client:     client,
		table:      table,
		emailIndex: emailIndex,
		logger:     logger.With("module", "authusers_dynamo"),
	}
}

type userItem struct {
	PK           string `dynamodbav:"pk"`
	EntityType   string `dynamodbav:"entityType"`
	GSI1PK       string `dynamodbav:"gsi1pk"`
	ID           string `dynamodbav:"id"`
	Email        string `dynamodbav:"email"`
	EmailLower   string `dynamodbav:"emailLower"`
	Nome         string `dynamodbav:"nome"`
	Role         string `dynamodbav:"role"`
	Status       string `dynamodbav:"status"`
	PasswordHash string `dynamodbav:"passwordHash"`
	CreatedAt    string `dynamodbav:"createdAt"`
	UpdatedAt    string `dynamodbav:"updatedAt"`
	ApprovedAt   string `dynamodbav:"approvedAt,omitempty"`
	ApprovedBy   string `dynamodbav:"approvedBy,omitempty"`
}

type emailLockItem struct {
	PK         string `dynamodbav:"pk"`
	EntityType string `dynamodbav:"entityType"`
	UserID     string `dynamodbav:"userId"`
}

func userPK(userID string) string      { return "USER#" + userID }
func emailPK(emailLower string) string { return "EMAIL#" + emailLower }

func toUserItem(u *models.AuthUser) userItem {
	item := userItem{
		PK:           userPK(u.ID),
		EntityType:   "USER",
		GSI1PK:       emailPK(u.EmailLower),
		ID:           u.ID,
		Email:        u.Email,
		EmailLower:   u.EmailLower,
		Nome:         u.Nome,
		Role:         string(u.Role),
		Status:       string(u.Status),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    u.UpdatedAt.Format(time.RFC3339Nano),
		ApprovedBy:   u.ApprovedBy,
	}
	if u.ApprovedAt != nil {
		item.ApprovedAt = u.ApprovedAt.Format(time.RFC3339Nano)
	}
	return item
}

func fromUserItem(item userItem) (*models.AuthUser, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing createdAt: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updatedAt: %w", err)
	}
	user := &models.AuthUser{
		ID:           item.ID,
		Email:        item.Email,
		EmailLower:   item.EmailLower,
		Nome:         item.Nome,
		Role:         models.UserRole(item.Role),
		Status:       models.UserStatus(item.Status),
		PasswordHash: item.PasswordHash,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		ApprovedBy:   item.ApprovedBy,
	}
	if item.ApprovedAt != "" {
		approvedAt, err := time.Parse(time.RFC3339Nano, item.ApprovedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing approvedAt: %w", err)
		}
		user.ApprovedAt = &approvedAt
	}
	return user, nil
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var tc *types.TransactionCanceledException
	if errors.As(err, &tc) {
		for _, reason := range tc.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}

func (r *DynamoRepository) CreatePendingUser(ctx context.Context, email, passwordHash string) (*models.AuthUser, error) {
	user := newPendingUser(email, passwordHash)

	userAV, err := attributevalue.MarshalMap(toUserItem(user))
	if err != nil {
		return nil, fmt.Errorf("marshalling user: %w", err)
	}
	lockAV, err := attributevalue.MarshalMap(emailLockItem{
		PK:         emailPK(user.EmailLower),
		EntityType: "EMAIL_LOCK",
		UserID:     user.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling email lock: %w", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.table),
				Item:                userAV,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.table),
				Item:                lockAV,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("dynamodb error: %w", err)
	}
	return user, nil
}

func (r *DynamoRepository) FindByEmail(ctx context.Context, email string) (*models.AuthUser, error) {
	emailLower := NormalizeEmail(email)

	query, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(r.emailIndex),
		KeyConditionExpression: aws.String("gsi1pk = :gsi1pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":gsi1pk": &types.AttributeValueMemberS{Value: emailPK(emailLower)},
		},
		Limit: aws.Int32(1),
	})
	if err == nil && len(query.Items) > 0 {
		return unmarshalUser(query.Items[0])
	}
	if err != nil {
		// Degraded path when the GSI is missing or misconfigured. A full
		// scan does not scale; it only keeps small installs alive.
		r.logger.Warn(ctx, "email index query failed, falling back to scan",
			"index", r.emailIndex, "error", err.Error())
		return r.findByEmailScan(ctx, emailLower)
	}
	return nil, common.ErrNotFound
}

func (r *DynamoRepository) findByEmailScan(ctx context.Context, emailLower string) (*models.AuthUser, error) {
	scan, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.table),
		FilterExpression: aws.String("emailLower = :emailLower"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":emailLower": &types.AttributeValueMemberS{Value: emailLower},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb error: %w", err)
	}
	if len(scan.Items) == 0 {
		return nil, common.ErrNotFound
	}
	return unmarshalUser(scan.Items[0])
}

func unmarshalUser(av map[string]types.AttributeValue) (*models.AuthUser, error) {
	var item userItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("unmarshalling user: %w", err)
	}
	return fromUserItem(item)
}

func (r *DynamoRepository) FindByID(ctx context.Context, userID string) (*models.AuthUser, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: userPK(userID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb error: %w", err)
	}
	if out.Item == nil {
		return nil, common.ErrNotFound
	}
	return unmarshalUser(out.Item)
}

func (r *DynamoRepository) ListPending(ctx context.Context) ([]models.PendingUserSummary, error) {
	scan, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.table),
		FilterExpression: aws.String("#status = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pending": &types.AttributeValueMemberS{Value: string(models.StatusPendingApproval)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb error: %w", err)
	}

	summaries := make([]models.PendingUserSummary, 0, len(scan.Items))
	for _, av := range scan.Items {
		user, err := unmarshalUser(av)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, user.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (r *DynamoRepository) Approve(ctx context.Context, userID, approvedBy string) (*models.AuthUser, error) {
	now := nowUTC().Format(time.RFC3339Nano)
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: userPK(userID)},
		},
		UpdateExpression: aws.String(
			"SET #status = :approved, approvedAt = :approvedAt, approvedBy = :approvedBy, updatedAt = :updatedAt"),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":approved":   &types.AttributeValueMemberS{Value: string(models.StatusApproved)},
			":approvedAt": &types.AttributeValueMemberS{Value: now},
			":approvedBy": &types.AttributeValueMemberS{Value: approvedBy},
			":updatedAt":  &types.AttributeValueMemberS{Value: now},
		},
		ConditionExpression: aws.String("attribute_exists(pk)"),
		ReturnValues:        types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("dynamodb error: %w", err)
	}
	return unmarshalUser(out.Attributes)
}

func (r *DynamoRepository) Reject(ctx context.Context, userID, approvedBy string) (*models.AuthUser, error) {
	now := nowUTC().Format(time.RFC3339Nano)
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: userPK(userID)},
		},
		UpdateExpression: aws.String(
			"SET #status = :rejected, approvedBy = :approvedBy, updatedAt = :updatedAt REMOVE approvedAt"),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rejected":   &types.AttributeValueMemberS{Value: string(models.StatusRejected)},
			":approvedBy": &types.AttributeValueMemberS{Value: approvedBy},
			":updatedAt":  &types.AttributeValueMemberS{Value: now},
		},
		ConditionExpression: aws.String("attribute_exists(pk)"),
		ReturnValues:        types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("dynamodb error: %w", err)
	}
	return unmarshalUser(out.Attributes)
}

func (r *DynamoRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	now := nowUTC().Format(time.RFC3339Nano)
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: userPK(userID)},
		},
		UpdateExpression: aws.String("SET passwordHash = :passwordHash, updatedAt = :updatedAt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":passwordHash": &types.AttributeValueMemberS{Value: passwordHash},
			":updatedAt":    &types.AttributeValueMemberS{Value: now},
		},
		ConditionExpression: aws.String("attribute_exists(pk)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return common.ErrNotFound
		}
		return fmt.Errorf("dynamodb error: %w", err)
	}
	return nil
}

func (r *DynamoRepository) Seed(ctx context.Context, users []models.AuthUser) error {
	for i := range users {
		u := &users[i]

		userAV, err := attributevalue.MarshalMap(toUserItem(u))
		if err != nil {
			return fmt.Errorf("marshalling user: %w", err)
		}
		lockAV, err := attributevalue.MarshalMap(emailLockItem{
			PK:         emailPK(u.EmailLower),
			EntityType: "EMAIL_LOCK",
			UserID:     u.ID,
		})
		if err != nil {
			return fmt.Errorf("marshalling email lock: %w", err)
		}

		_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{Put: &types.Put{
					TableName:           aws.String(r.table),
					Item:                userAV,
					ConditionExpression: aws.String("attribute_not_exists(pk)"),
				}},
				{Put: &types.Put{
					TableName:           aws.String(r.table),
					Item:                lockAV,
					ConditionExpression: aws.String("attribute_not_exists(pk)"),
				}},
			},
		})
		if err != nil {
			if isConditionalCheckFailed(err) {
				continue
			}
			return fmt.Errorf("dynamodb error: %w", err)
		}
	}
	return nil
}
