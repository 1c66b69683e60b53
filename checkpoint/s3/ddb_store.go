package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/ddbgo/checkpoint"
)

// DDBClient is the subset of the DynamoDB API used by DDBStore.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DDBStore commits offsets through DynamoDB conditional writes. A save only
// succeeds when the stored offset is not newer, so concurrent subscribers
// of one topic can only move the checkpoint forward.
//
// When an archive Store is set every successful commit is mirrored to S3.
type DDBStore struct {
	client  DDBClient
	table   string
	archive *Store
}

// NewDDBStore creates a DynamoDB backed store. archive may be nil.
func NewDDBStore(client DDBClient, table string, archive *Store) *DDBStore {
	return &DDBStore{client: client, table: table, archive: archive}
}

// NewDDBFromConfig loads the default AWS configuration and creates a
// DDBStore without archive.
func NewDDBFromConfig(ctx context.Context, table string, optFns ...func(*config.LoadOptions) error) (*DDBStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, err
	}
	return NewDDBStore(dynamodb.NewFromConfig(cfg), table, nil), nil
}

// Load reads the committed offset with a consistent read.
func (s *DDBStore) Load(ctx context.Context, topic string) (int64, error) {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"topic": &types.AttributeValueMemberS{Value: topic},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read checkpoint from DynamoDB: %w", err)
	}
	if len(resp.Item) == 0 {
		return 0, checkpoint.ErrNotFound
	}

	attr, ok := resp.Item["offset"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("invalid offset attribute in DynamoDB")
	}
	off, err := strconv.ParseInt(attr.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse offset: %w", err)
	}
	return off, nil
}

// Save commits offset unless a newer one is already stored, in which case
// checkpoint.ErrStale is returned.
func (s *DDBStore) Save(ctx context.Context, topic string, offset int64) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"topic":  &types.AttributeValueMemberS{Value: topic},
			"offset": &types.AttributeValueMemberN{Value: strconv.FormatInt(offset, 10)},
		},
		ConditionExpression: aws.String("attribute_not_exists(#o) OR #o <= :o"),
		ExpressionAttributeNames: map[string]string{
			"#o": "offset",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":o": &types.AttributeValueMemberN{Value: strconv.FormatInt(offset, 10)},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return checkpoint.ErrStale
		}
		return fmt.Errorf("failed to commit checkpoint to DynamoDB: %w", err)
	}

	if s.archive != nil {
		return s.archive.Save(ctx, topic, offset)
	}
	return nil
}

var _ checkpoint.Store = (*DDBStore)(nil)
