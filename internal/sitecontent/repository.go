package sitecontent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
)

var (
	ErrDocumentNotFound  = errors.New("sitecontent: document not found")
	ErrDocumentMalformed = errors.New("sitecontent: document is malformed")
	ErrKeyRequired       = errors.New("sitecontent: document key is required")
)

// Repository stores site content documents by singleton key.
type Repository interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Upsert(ctx context.Context, key string, doc json.RawMessage) error
}

// MemoryRepository keeps documents in memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string]json.RawMessage)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) (json.RawMessage, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrKeyRequired
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[key]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return append(json.RawMessage(nil), doc...), nil
}

func (r *MemoryRepository) Upsert(_ context.Context, key string, doc json.RawMessage) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrKeyRequired
	}
	r.mu.Lock()
	r.docs[key] = append(json.RawMessage(nil), doc...)
	r.mu.Unlock()
	return nil
}
