package s3

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/ddbgo/checkpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const topic = "localhost:8848/trades/goStreamingAPI"

type mockClient struct {
	mock.Mock
}

func (m *mockClient) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockClient) UploadPart(ctx context.Context, in *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.UploadPartOutput)
	return out, args.Error(1)
}

func (m *mockClient) CreateMultipartUpload(ctx context.Context, in *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.CreateMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *mockClient) CompleteMultipartUpload(ctx context.Context, in *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.CompleteMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *mockClient) AbortMultipartUpload(ctx context.Context, in *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.AbortMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *mockClient) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockClient) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func (m *mockClient) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.ListObjectsV2Output)
	return out, args.Error(1)
}

func keyIs(key string) any {
	return mock.MatchedBy(func(in any) bool {
		switch in := in.(type) {
		case *s3.PutObjectInput:
			return aws.ToString(in.Key) == key
		case *s3.GetObjectInput:
			return aws.ToString(in.Key) == key
		case *s3.DeleteObjectInput:
			return aws.ToString(in.Key) == key
		}
		return false
	})
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	client := &mockClient{}
	store := NewStore(client, "bucket", "ckpt")
	key := "ckpt/" + checkpoint.ObjectName(topic)

	var uploaded []byte
	client.On("PutObject", mock.Anything, keyIs(key)).
		Run(func(args mock.Arguments) {
			in := args.Get(1).(*s3.PutObjectInput)
			uploaded, _ = io.ReadAll(in.Body)
		}).
		Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Save(ctx, topic, 99))
	require.NotEmpty(t, uploaded)

	client.On("GetObject", mock.Anything, keyIs(key)).
		Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(uploaded))}, nil).Once()

	off, err := store.Load(ctx, topic)
	require.NoError(t, err)
	assert.Equal(t, int64(99), off)

	client.AssertExpectations(t)
}

func TestStore_LoadMissing(t *testing.T) {
	client := &mockClient{}
	store := NewStore(client, "bucket", "")
	client.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{})

	_, err := store.Load(context.Background(), topic)
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	client := &mockClient{}
	store := NewStore(client, "bucket", "p")
	client.On("DeleteObject", mock.Anything, keyIs("p/"+checkpoint.ObjectName(topic))).
		Return(&s3.DeleteObjectOutput{}, nil)

	require.NoError(t, store.Delete(context.Background(), topic))
	client.AssertExpectations(t)
}

func TestStore_Topics(t *testing.T) {
	client := &mockClient{}
	store := NewStore(client, "bucket", "p/")
	client.On("ListObjectsV2", mock.Anything, mock.Anything).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("p/" + checkpoint.ObjectName("z:1/t/a"))},
			{Key: aws.String("p/notes.txt")},
			{Key: aws.String("p/" + checkpoint.ObjectName(topic))},
		},
	}, nil).Once()

	topics, err := store.Topics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{topic, "z:1/t/a"}, topics)
}
