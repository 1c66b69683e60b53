package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/ddbgo/checkpoint"
)

// Client is the subset of the S3 API used by Store.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store implements checkpoint.Store with one S3 object per topic.
type Store struct {
	client   Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewStore creates an S3 checkpoint store.
// rootPrefix is prepended to all keys (e.g. "checkpoints/").
func NewStore(client Client, bucket, rootPrefix string) *Store {
	return &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   rootPrefix,
	}
}

// NewFromConfig loads the default AWS configuration and creates a Store.
func NewFromConfig(ctx context.Context, bucket, rootPrefix string, optFns ...func(*config.LoadOptions) error) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, err
	}
	return NewStore(s3.NewFromConfig(cfg), bucket, rootPrefix), nil
}

func (s *Store) key(topic string) string {
	return path.Join(s.prefix, checkpoint.ObjectName(topic))
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	return errors.As(err, &nf)
}

// Load reads the checkpoint object for topic.
func (s *Store) Load(ctx context.Context, topic string) (int64, error) {
	r, err := s.record(ctx, topic)
	if err != nil {
		return 0, err
	}
	return r.Offset, nil
}

func (s *Store) record(ctx context.Context, topic string) (checkpoint.Record, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(topic)),
	})
	if err != nil {
		if isNotFound(err) {
			return checkpoint.Record{}, checkpoint.ErrNotFound
		}
		return checkpoint.Record{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return checkpoint.Record{}, err
	}
	return checkpoint.DecodeRecord(data)
}

// Save uploads the checkpoint object for topic.
func (s *Store) Save(ctx context.Context, topic string, offset int64) error {
	data, err := checkpoint.EncodeRecord(topic, offset)
	if err != nil {
		return err
	}
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(topic)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return err
}

// Delete removes the checkpoint of topic.
func (s *Store) Delete(ctx context.Context, topic string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(topic)),
	})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// Topics lists all topics with a checkpoint under the root prefix.
func (s *Store) Topics(ctx context.Context) ([]string, error) {
	var topics []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			name = strings.TrimPrefix(name, "/")
			if t, ok := checkpoint.TopicFromObject(name); ok {
				topics = append(topics, t)
			}
		}
	}
	sort.Strings(topics)
	return topics, nil
}

var _ checkpoint.Store = (*Store)(nil)
