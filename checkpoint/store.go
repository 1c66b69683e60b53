package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/ddbgo/codec"
)

var (
	// ErrNotFound is returned when no checkpoint exists for a topic.
	ErrNotFound = errors.New("checkpoint: not found")

	// ErrStale is returned by stores that only move forward when the offset
	// is older than the committed one.
	ErrStale = errors.New("checkpoint: offset older than committed")
)

// Store persists offsets per topic.
type Store interface {
	Load(ctx context.Context, topic string) (int64, error)
	Save(ctx context.Context, topic string, offset int64) error
}

// Record is the persisted form of a checkpoint.
type Record struct {
	Topic   string    `json:"topic"`
	Offset  int64     `json:"offset"`
	Updated time.Time `json:"updated"`
}

var recordCodec = codec.GoJSON{}

// EncodeRecord renders a record for object stores.
func EncodeRecord(topic string, offset int64) ([]byte, error) {
	return recordCodec.Marshal(Record{Topic: topic, Offset: offset, Updated: time.Now().UTC()})
}

// DecodeRecord parses a record written by EncodeRecord.
func DecodeRecord(data []byte) (Record, error) {
	var r Record
	if err := recordCodec.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("checkpoint: decode record: %w", err)
	}
	return r, nil
}

// ObjectName maps a topic to a flat object name. Topics contain ':' and '/'
// which are escaped so every topic is a single path element.
func ObjectName(topic string) string {
	return url.PathEscape(topic) + ".json"
}

// TopicFromObject reverses ObjectName. It reports false for foreign names.
func TopicFromObject(name string) (string, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return "", false
	}
	topic, err := url.PathUnescape(base)
	if err != nil {
		return "", false
	}
	return topic, true
}

// Memory is an in-memory Store.
type Memory struct {
	mu      sync.RWMutex
	offsets map[string]int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{offsets: make(map[string]int64)}
}

// Load returns the saved offset.
func (m *Memory) Load(ctx context.Context, topic string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	off, ok := m.offsets[topic]
	if !ok {
		return 0, ErrNotFound
	}
	return off, nil
}

// Save stores the offset.
func (m *Memory) Save(ctx context.Context, topic string, offset int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.offsets[topic] = offset
	m.mu.Unlock()
	return nil
}

// Topics returns the saved topics in sorted order.
func (m *Memory) Topics() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.offsets))
	for t := range m.offsets {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// File stores one JSON record per topic under a directory.
type File struct {
	root string
}

// NewFile creates a file store rooted at dir. The directory is created on
// first save.
func NewFile(dir string) *File {
	return &File{root: dir}
}

func (f *File) path(topic string) string {
	return filepath.Join(f.root, ObjectName(topic))
}

// Load reads the record for topic.
func (f *File) Load(ctx context.Context, topic string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	data, err := os.ReadFile(f.path(topic))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	r, err := DecodeRecord(data)
	if err != nil {
		return 0, err
	}
	return r.Offset, nil
}

// Save writes the record atomically (temp file + rename).
func (f *File) Save(ctx context.Context, topic string, offset int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodeRecord(topic, offset)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.root, ".ckpt-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(topic))
}

// Topics lists the topics with a record on disk.
func (f *File) Topics() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if t, ok := TopicFromObject(e.Name()); ok {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out, nil
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*File)(nil)
)
