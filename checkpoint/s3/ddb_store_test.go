package s3

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/ddbgo/checkpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB table keyed by topic that honours
// the monotonic offset condition.
type mockDDBClient struct {
	mu    sync.Mutex
	items map[string]int64
	fail  error
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{items: make(map[string]int64)}
}

func (m *mockDDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}

	topic := params.Item["topic"].(*types.AttributeValueMemberS).Value
	off, err := strconv.ParseInt(params.Item["offset"].(*types.AttributeValueMemberN).Value, 10, 64)
	if err != nil {
		return nil, err
	}
	if cur, ok := m.items[topic]; ok && params.ConditionExpression != nil && cur > off {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
	}
	m.items[topic] = off
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	topic := params.Key["topic"].(*types.AttributeValueMemberS).Value
	off, ok := m.items[topic]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"topic":  &types.AttributeValueMemberS{Value: topic},
		"offset": &types.AttributeValueMemberN{Value: strconv.FormatInt(off, 10)},
	}}, nil
}

func TestDDBStore_Monotonic(t *testing.T) {
	ctx := context.Background()
	store := NewDDBStore(newMockDDBClient(), "ddbgo-checkpoints", nil)

	_, err := store.Load(ctx, topic)
	require.ErrorIs(t, err, checkpoint.ErrNotFound)

	require.NoError(t, store.Save(ctx, topic, 10))
	require.NoError(t, store.Save(ctx, topic, 10))
	require.NoError(t, store.Save(ctx, topic, 12))
	assert.ErrorIs(t, store.Save(ctx, topic, 11), checkpoint.ErrStale)

	off, err := store.Load(ctx, topic)
	require.NoError(t, err)
	assert.Equal(t, int64(12), off)
}

func TestDDBStore_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	store := NewDDBStore(newMockDDBClient(), "ddbgo-checkpoints", nil)

	var wg sync.WaitGroup
	for i := int64(1); i <= 20; i++ {
		wg.Add(1)
		go func(off int64) {
			defer wg.Done()
			err := store.Save(ctx, topic, off)
			if err != nil {
				assert.ErrorIs(t, err, checkpoint.ErrStale)
			}
		}(i)
	}
	wg.Wait()

	off, err := store.Load(ctx, topic)
	require.NoError(t, err)
	assert.Equal(t, int64(20), off)
}

func TestDDBStore_Errors(t *testing.T) {
	client := newMockDDBClient()
	client.fail = errors.New("throttled")
	store := NewDDBStore(client, "t", nil)

	err := store.Save(context.Background(), topic, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, checkpoint.ErrStale)
}

func TestDDBStore_Archive(t *testing.T) {
	ctx := context.Background()
	s3c := &mockClient{}
	s3c.On("PutObject", mock.Anything, mock.Anything).Return(&s3.PutObjectOutput{}, nil).Once()

	store := NewDDBStore(newMockDDBClient(), "t", NewStore(s3c, "bucket", "archive"))
	require.NoError(t, store.Save(ctx, topic, 5))
	s3c.AssertExpectations(t)
}
