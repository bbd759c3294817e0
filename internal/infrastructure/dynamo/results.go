package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/labresults-api/internal/domain"
)

// ResultRepo provides read-only DynamoDB operations for the analysis
// results table. The table is written by an external ingestion pipeline;
// items are returned as opaque maps so unknown result fields pass through
// unmodified. PK: PatientPhone, SK: date.
type ResultRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewResultRepo(client *dynamodb.Client, tableName string) *ResultRepo {
	return &ResultRepo{client: client, tableName: tableName}
}

// QueryByPhone returns every record for the phone across all dates.
// Query returns items in ascending sort-key (date) order.
func (r *ResultRepo) QueryByPhone(ctx context.Context, phone string) ([]domain.AnalysisRecord, error) {
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String(domain.ResultAttrPhone + " = :phone"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":phone": &types.AttributeValueMemberS{Value: phone},
		},
	})
}

// QueryByPhoneAndDate returns the records sharing the exact (phone, date) key.
func (r *ResultRepo) QueryByPhoneAndDate(ctx context.Context, phone, date string) ([]domain.AnalysisRecord, error) {
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String(domain.ResultAttrPhone + " = :phone AND #d = :date"),
		// "date" is easy to trip over in expressions, alias it.
		ExpressionAttributeNames: map[string]string{"#d": domain.ResultAttrDate},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":phone": &types.AttributeValueMemberS{Value: phone},
			":date":  &types.AttributeValueMemberS{Value: date},
		},
	})
}

func (r *ResultRepo) query(ctx context.Context, input *dynamodb.QueryInput) ([]domain.AnalysisRecord, error) {
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, err
	}
	var records []domain.AnalysisRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, err
	}
	if records == nil {
		// Zero matches is an empty list, never null, all the way to the client.
		records = []domain.AnalysisRecord{}
	}
	return records, nil
}
