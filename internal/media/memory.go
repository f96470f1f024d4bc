package media

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-estate/internal/identity"
)

// MemoryRepository keeps asset metadata in process.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*Asset
	order []string
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID: make(map[string]*Asset),
		now:  time.Now,
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) List(_ context.Context) ([]*Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Asset, 0, len(r.order))
	for _, id := range r.order {
		cloned := r.byID[id].Clone()
		out = append(out, &cloned)
	}
	return out, nil
}

func (r *MemoryRepository) Create(_ context.Context, asset *Asset) (*Asset, error) {
	if asset == nil || asset.ID == "" {
		return nil, ErrIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[asset.ID]; exists {
		return nil, ErrDuplicateID
	}
	record := asset.Clone()
	record.RowID = identity.MediaUUID(record.ID)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now()
	}
	r.byID[record.ID] = &record
	r.order = append(r.order, record.ID)

	out := record.Clone()
	return &out, nil
}

func (r *MemoryRepository) Update(_ context.Context, asset *Asset) (*Asset, error) {
	if asset == nil || asset.ID == "" {
		return nil, ErrIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[asset.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "media", Key: asset.ID}
	}
	record := asset.Clone()
	record.RowID = existing.RowID
	record.CreatedAt = existing.CreatedAt
	r.byID[record.ID] = &record

	out := record.Clone()
	return &out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return &NotFoundError{Resource: "media", Key: id}
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
