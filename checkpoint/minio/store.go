package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/hupe1980/ddbgo/checkpoint"
	"github.com/minio/minio-go/v7"
)

// Store implements checkpoint.Store with one object per topic.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a MinIO checkpoint store.
// rootPrefix is prepended to all object keys (e.g. "checkpoints/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *Store) key(topic string) string {
	return path.Join(s.prefix, checkpoint.ObjectName(topic))
}

func notFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// Load reads the checkpoint object for topic.
func (s *Store) Load(ctx context.Context, topic string) (int64, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(topic), minio.GetObjectOptions{})
	if err != nil {
		if notFound(err) {
			return 0, checkpoint.ErrNotFound
		}
		return 0, err
	}
	defer func() { _ = obj.Close() }()

	// GetObject is lazy; a missing key surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		if notFound(err) {
			return 0, checkpoint.ErrNotFound
		}
		return 0, err
	}
	r, err := checkpoint.DecodeRecord(data)
	if err != nil {
		return 0, err
	}
	return r.Offset, nil
}

// Save writes the checkpoint object for topic.
func (s *Store) Save(ctx context.Context, topic string, offset int64) error {
	data, err := checkpoint.EncodeRecord(topic, offset)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.key(topic), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

// Delete removes the checkpoint of topic. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, topic string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(topic), minio.RemoveObjectOptions{})
	if err != nil && !notFound(err) {
		return err
	}
	return nil
}

// Topics lists all topics with a checkpoint under the root prefix.
func (s *Store) Topics(ctx context.Context) ([]string, error) {
	var topics []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		name = strings.TrimPrefix(name, "/")
		if t, ok := checkpoint.TopicFromObject(name); ok {
			topics = append(topics, t)
		}
	}
	sort.Strings(topics)
	return topics, nil
}

var _ checkpoint.Store = (*Store)(nil)
