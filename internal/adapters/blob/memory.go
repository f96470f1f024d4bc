package blob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/goliatone/go-estate/pkg/interfaces"
)

// Object is a stored blob.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStorage keeps blobs in process.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]Object
	baseURL string
}

var (
	_ interfaces.BlobStorage     = (*MemoryStorage)(nil)
	_ interfaces.BlobKeyResolver = (*MemoryStorage)(nil)
)

func NewMemoryStorage(baseURL string) *MemoryStorage {
	if baseURL == "" {
		baseURL = "memory://media"
	}
	return &MemoryStorage{objects: map[string]Object{}, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *MemoryStorage) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	s.mu.Lock()
	s.objects[key] = Object{Data: data, ContentType: contentType}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) PublicURL(key string) string {
	return s.baseURL + "/" + key
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return interfaces.ErrBlobNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *MemoryStorage) KeyFromURL(url string) (string, bool) {
	return KeyFromURL(s.baseURL, url)
}

// Get returns a stored object.
func (s *MemoryStorage) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Len reports how many objects are stored.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// KeyFromURL strips base from url and returns the remaining object key.
func KeyFromURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if key == "" {
		return "", false
	}
	return key, true
}
