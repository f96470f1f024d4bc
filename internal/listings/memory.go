package listings

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-estate/internal/identity"
)

// MemoryRepository keeps listings in process. It also implements OrderWriter.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*Listing
	order []string
	now   func() time.Time
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID: make(map[string]*Listing),
		now:  time.Now,
	}
}

var (
	_ Repository  = (*MemoryRepository)(nil)
	_ OrderWriter = (*MemoryRepository)(nil)
)

func (r *MemoryRepository) List(_ context.Context) ([]*Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Listing, 0, len(r.order))
	for _, id := range r.order {
		cloned := r.byID[id].Clone()
		out = append(out, &cloned)
	}
	return out, nil
}

func (r *MemoryRepository) Create(_ context.Context, listing *Listing) (*Listing, error) {
	if listing == nil || listing.ID == "" {
		return nil, ErrIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[listing.ID]; exists {
		return nil, ErrDuplicateID
	}
	record := listing.Clone()
	record.RowID = identity.ListingUUID(record.ID)
	now := r.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	r.byID[record.ID] = &record
	r.order = append(r.order, record.ID)

	out := record.Clone()
	return &out, nil
}

func (r *MemoryRepository) Update(_ context.Context, listing *Listing) (*Listing, error) {
	if listing == nil || listing.ID == "" {
		return nil, ErrIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[listing.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "listing", Key: listing.ID}
	}
	record := listing.Clone()
	record.RowID = existing.RowID
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = r.now()
	r.byID[record.ID] = &record

	out := record.Clone()
	return &out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return &NotFoundError{Resource: "listing", Key: id}
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

// UpdateDisplayOrders applies every order or, when one id is unknown, none.
func (r *MemoryRepository) UpdateDisplayOrders(_ context.Context, orders []Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range orders {
		if _, ok := r.byID[o.ID]; !ok {
			return &NotFoundError{Resource: "listing", Key: o.ID}
		}
	}
	now := r.now()
	for _, o := range orders {
		record := r.byID[o.ID]
		record.DisplayOrder = o.DisplayOrder
		record.UpdatedAt = now
	}
	return nil
}
