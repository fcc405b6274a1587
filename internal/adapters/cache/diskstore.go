package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/clanstats/pkg/logger"
	"github.com/okian/clanstats/pkg/metrics"
)

const (
	dirPerm       = 0o755
	filePerm      = 0o644
	maxStemLength = 80
	fileExtension = ".json"
	unknownLabel  = "other"
)

// DiskStore keeps one JSON file per key under a directory. It does no
// locking: concurrent writers to one key race and the last rename wins.
type DiskStore struct {
	dir string
	now func() time.Time
	log logger.Logger
}

var _ Store = (*DiskStore)(nil)

// NewDiskStore creates a store rooted at dir. The directory is created on
// the first write.
func NewDiskStore(dir string, opts ...Option) *DiskStore {
	s := &DiskStore{
		dir: dir,
		now: time.Now,
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the backing directory.
func (s *DiskStore) Dir() string { return s.dir }

// Path returns the file that holds key.
func (s *DiskStore) Path(key string) string {
	return filepath.Join(s.dir, FileName(key))
}

// Get implements Store.
func (s *DiskStore) Get(ctx context.Context, key string, ttl time.Duration) (json.RawMessage, bool) {
	resource := resourceLabel(key)
	if ttl <= 0 {
		metrics.RecordCacheMiss(resource)
		return nil, false
	}

	entry, err := s.read(key)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			metrics.RecordCacheError()
			s.log.Warn(ctx, "ignoring unreadable cache entry",
				logger.String("key", key),
				logger.Error(err))
		}
		metrics.RecordCacheMiss(resource)
		return nil, false
	}

	if entry.FetchedAt == nil {
		metrics.RecordCacheMiss(resource)
		return nil, false
	}
	if isEmptyValue(entry.Data) {
		s.log.Warn(ctx, "ignoring cache entry without data", logger.String("key", key))
		metrics.RecordCacheMiss(resource)
		return nil, false
	}
	age := s.now().Sub(*entry.FetchedAt)
	if age > ttl {
		s.log.Debug(ctx, "cache entry expired",
			logger.String("key", key),
			logger.Duration("age", age))
		metrics.RecordCacheMiss(resource)
		return nil, false
	}

	s.log.Debug(ctx, "cache hit", logger.String("key", key), logger.Duration("age", age))
	metrics.RecordCacheHit(resource)
	return entry.Data, true
}

// isEmptyValue reports whether v carries no payload: absent or JSON null.
func isEmptyValue(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}

func (s *DiskStore) read(key string) (Entry, error) {
	var entry Entry
	raw, err := os.ReadFile(s.Path(key))
	if err != nil {
		return entry, err
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return entry, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, key, err)
	}
	return entry, nil
}

// Set implements Store. The entry is written to a temporary file and
// renamed into place.
func (s *DiskStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) || isEmptyValue(value) {
		return fmt.Errorf("%w: %s", ErrInvalidValue, key)
	}
	fetchedAt := s.now().UTC()
	body, err := json.Marshal(Entry{FetchedAt: &fetchedAt, Data: value})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteEntry, key, err)
	}

	if err := writeAtomic(s.dir, FileName(key), body); err != nil {
		metrics.RecordCacheError()
		return fmt.Errorf("%w: %s: %v", ErrWriteEntry, key, err)
	}

	metrics.RecordCacheWrite()
	s.log.Debug(ctx, "cache entry written", logger.String("key", key), logger.Int("bytes", len(body)))
	return nil
}

func writeAtomic(dir, name string, body []byte) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// FileName maps a logical key to its file name: a readable stem with every
// byte outside [A-Za-z0-9._-] replaced by '_', truncated, followed by the
// xxhash64 of the full key. Distinct keys get distinct names even when
// their stems collide.
func FileName(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key) && b.Len() < maxStemLength; i++ {
		c := key[i]
		if isSafe(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	return fmt.Sprintf("%s-%016x%s", b.String(), xxhash.Sum64String(key), fileExtension)
}

func isSafe(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '.' || c == '_' || c == '-'
}

// resourceLabel derives a low-cardinality metric label from a key such as
// "clans_#TAG/members".
func resourceLabel(key string) string {
	prefix, rest, ok := strings.Cut(key, "_")
	if !ok || prefix == "" {
		return unknownLabel
	}
	if _, sub, ok := strings.Cut(rest, "/"); ok {
		if i := strings.IndexByte(sub, '?'); i >= 0 {
			sub = sub[:i]
		}
		return prefix + "/" + sub
	}
	return prefix
}

// Compact strips insignificant whitespace from a JSON value before storing.
func Compact(value []byte) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return buf.Bytes(), nil
}
