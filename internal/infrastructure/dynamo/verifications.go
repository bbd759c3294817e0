package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/labresults-api/internal/domain"
)

// VerificationRepo provides typed DynamoDB operations for the verification table.
// PK: telegram_user_id. The code-index GSI serves lookups by code value.
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

// Put upserts the record by telegram_user_id as an UpdateItem SET rather
// than a whole-item write, so only the fields present on the record are
// touched and attributes written by a concurrent update are not blanked.
func (r *VerificationRepo) Put(ctx context.Context, v *domain.UserVerification) error {
	ue, err := buildUpdateExpr(verificationUpdates(v))
	if err != nil {
		return fmt.Errorf("verification updates: %w", err)
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("telegram_user_id", v.TelegramUserID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// verificationUpdates flattens a record into the SET map for an upsert.
// Code attributes are written only while a code is outstanding; a record
// without one never has its cleared attributes re-created.
func verificationUpdates(v *domain.UserVerification) map[string]interface{} {
	updates := map[string]interface{}{
		"phone": v.Phone,
		"name":  v.Name,
	}
	if v.Code != "" {
		updates["code"] = v.Code
		updates["code_created_at"] = v.CodeCreatedAt
		updates["code_expires_at"] = v.CodeExpiresAt
	}
	return updates
}

func (r *VerificationRepo) Get(ctx context.Context, telegramUserID string) (*domain.UserVerification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("telegram_user_id", telegramUserID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	var v domain.UserVerification
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// FindByCode looks up the record holding the given code via the code-index
// GSI, filtered to unexpired codes. Returns ErrNotFound when no unexpired
// holder exists.
func (r *VerificationRepo) FindByCode(ctx context.Context, code string, now int64) (*domain.UserVerification, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(CodeIndex),
		KeyConditionExpression:   aws.String("#c = :code"),
		FilterExpression:         aws.String("code_expires_at > :now"),
		ExpressionAttributeNames: map[string]string{"#c": "code"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
			":now":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now)},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("no unexpired holder of code: %w", domain.ErrNotFound)
	}
	var v domain.UserVerification
	if err := attributevalue.UnmarshalMap(out.Items[0], &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ClearCode removes the three code attributes from the record, leaving
// phone/name intact. The write is conditional on the record still holding
// the given code, so a racing consume or reissue cannot double-spend it;
// losing the race surfaces as ErrUnauthorized.
func (r *VerificationRepo) ClearCode(ctx context.Context, telegramUserID, code string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("telegram_user_id", telegramUserID),
		UpdateExpression:         aws.String("REMOVE #c, code_created_at, code_expires_at"),
		ConditionExpression:      aws.String("#c = :code"),
		ExpressionAttributeNames: map[string]string{"#c": "code"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
		},
	})
	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			return fmt.Errorf("code already consumed: %w", domain.ErrUnauthorized)
		}
		return err
	}
	return nil
}
