package listings

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-estate/internal/identity"
	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

// Store is the local listings collection. Writes go to the repository first
// and only touch local state once they succeed.
type Store struct {
	repo   Repository
	logger interfaces.Logger
	now    func() time.Time

	mu         sync.RWMutex
	items      []Listing
	generation uint64

	reorderMu sync.Mutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

func WithLogger(logger interfaces.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for timestamp ids.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(repo Repository, opts ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	s := &Store{
		repo:   repo,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load replaces the local snapshot with every listing from the repository in
// presentation order. A load overtaken by a newer load or write is discarded
// and the current snapshot returned instead.
func (s *Store) Load(ctx context.Context) ([]Listing, error) {
	gen := s.begin()

	records, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("listings.load.failed", "error", err)
		return s.Snapshot(), fmt.Errorf("listings: load: %w", err)
	}

	items := make([]Listing, 0, len(records))
	for _, record := range records {
		if record != nil {
			items = append(items, record.Clone())
		}
	}
	SortForPresentation(items)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug("listings.load.stale", "generation", gen)
		return CloneAll(s.items), nil
	}
	s.items = items
	s.logger.Debug("listings.load.completed", "count", len(items))
	return CloneAll(items), nil
}

// Snapshot returns a copy of the local collection in presentation order.
func (s *Store) Snapshot() []Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := CloneAll(s.items)
	if out == nil {
		out = []Listing{}
	}
	return out
}

// Get returns the local copy of a listing.
func (s *Store) Get(id string) (Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item.Clone(), true
		}
	}
	return Listing{}, false
}

// Hydrate replaces the local snapshot without touching the repository.
func (s *Store) Hydrate(items []Listing) {
	next := CloneAll(items)
	SortForPresentation(next)
	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
}

// Create assigns the listing an id from its slug, its name or the current
// time, appends it after the last listing and persists it.
func (s *Store) Create(ctx context.Context, draft Listing) (Listing, error) {
	record := draft.Clone()
	record.ID = identity.ListingID(draft.Slug, draft.Name, s.now())
	if slug := identity.Slugify(draft.Slug); slug != "" {
		record.Slug = slug
	} else {
		record.Slug = record.ID
	}
	record.DisplayOrder = NextDisplayOrder(s.Snapshot())
	if err := record.Validate(); err != nil {
		return Listing{}, err
	}

	created, err := s.repo.Create(ctx, &record)
	if err != nil {
		s.logger.Error("listings.create.failed", "id", record.ID, "error", err)
		return Listing{}, fmt.Errorf("listings: create %q: %w", record.ID, err)
	}

	out := created.Clone()
	s.mutate(func(items []Listing) []Listing {
		return append(items, out.Clone())
	})
	s.logger.Info("listings.create.completed", "id", out.ID)
	return out, nil
}

// Update persists changes to the listing id. The id, slug and display order
// cannot change here; order moves only through Reorder, NormalizeOrder and
// ApplyUpdate.
func (s *Store) Update(ctx context.Context, id string, listing Listing) (Listing, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Listing{}, ErrIDRequired
	}
	if listing.ID != "" && listing.ID != id {
		return Listing{}, ErrIDImmutable
	}
	existing, ok := s.Get(id)
	if !ok {
		return Listing{}, &NotFoundError{Resource: "listing", Key: id}
	}

	record := listing.Clone()
	record.ID = id
	record.Slug = existing.Slug
	record.RowID = existing.RowID
	record.CreatedAt = existing.CreatedAt
	record.DisplayOrder = existing.DisplayOrder
	if err := record.Validate(); err != nil {
		return Listing{}, err
	}

	updated, err := s.repo.Update(ctx, &record)
	if err != nil {
		s.logger.Error("listings.update.failed", "id", id, "error", err)
		return Listing{}, fmt.Errorf("listings: update %q: %w", id, err)
	}

	out := updated.Clone()
	s.mutate(func(items []Listing) []Listing {
		for i := range items {
			if items[i].ID == id {
				items[i] = out.Clone()
			}
		}
		return items
	})
	return out, nil
}

// Delete removes the listing remotely and then locally. Remaining display
// orders are left as they are; NormalizeOrder closes the gap.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("listings.delete.failed", "id", id, "error", err)
		return fmt.Errorf("listings: delete %q: %w", id, err)
	}
	s.mutate(func(items []Listing) []Listing {
		out := items[:0]
		for _, item := range items {
			if item.ID != id {
				out = append(out, item)
			}
		}
		return out
	})
	return nil
}

// Reorder swaps the listing with its neighbour and persists every display
// order as the listing's new index. Moving the first listing up or the last
// one down changes nothing. Only one reorder runs at a time; a second caller
// gets ErrReorderInProgress. When persisting fails the snapshot is reloaded
// from the repository and a *ReorderError names the listings that failed.
func (s *Store) Reorder(ctx context.Context, id string, direction Direction) ([]Listing, error) {
	if !ValidDirection(direction) {
		return nil, ErrInvalidDirection
	}
	if !s.reorderMu.TryLock() {
		return nil, ErrReorderInProgress
	}
	defer s.reorderMu.Unlock()

	current := s.Snapshot()
	if _, ok := s.Get(id); !ok {
		return current, &NotFoundError{Resource: "listing", Key: id}
	}
	next, moved := Move(current, id, direction)
	if !moved {
		return current, nil
	}
	if err := s.persistOrder(ctx, next); err != nil {
		return s.Snapshot(), err
	}
	s.logger.Info("listings.reorder.completed", "id", id, "direction", string(direction))
	return CloneAll(next), nil
}

// NormalizeOrder rewrites display orders as the dense sequence 0..N-1 in
// presentation order. It is the manual repair after a failed reorder.
func (s *Store) NormalizeOrder(ctx context.Context) ([]Listing, error) {
	if !s.reorderMu.TryLock() {
		return nil, ErrReorderInProgress
	}
	defer s.reorderMu.Unlock()

	next := s.Snapshot()
	Renumber(next)
	if err := s.persistOrder(ctx, next); err != nil {
		return s.Snapshot(), err
	}
	return CloneAll(next), nil
}

func (s *Store) persistOrder(ctx context.Context, next []Listing) error {
	var (
		failed []string
		cause  error
	)
	if writer, ok := s.repo.(OrderWriter); ok {
		if err := writer.UpdateDisplayOrders(ctx, ordersOf(next)); err != nil {
			cause = err
			for _, item := range next {
				failed = append(failed, item.ID)
			}
		}
	} else {
		for i := range next {
			record := next[i].Clone()
			if _, err := s.repo.Update(ctx, &record); err != nil {
				failed = append(failed, record.ID)
				cause = errors.Join(cause, err)
			}
		}
	}

	if len(failed) == 0 {
		s.mutate(func([]Listing) []Listing { return CloneAll(next) })
		return nil
	}

	s.logger.Error("listings.reorder.failed", "failed", failed, "error", cause)
	if _, err := s.Load(ctx); err != nil {
		s.logger.Warn("listings.reorder.reload_failed", "error", err)
	}
	return &ReorderError{Failed: failed, Err: cause}
}

// ApplyUpdate runs transform over a copy of the collection and persists the
// difference: listings missing from the result are deleted, new ones created
// and changed ones updated. Local state adopts the result only when every
// write succeeds; otherwise it is reloaded and an *ApplyError returned.
func (s *Store) ApplyUpdate(ctx context.Context, transform func([]Listing) []Listing) ([]Listing, error) {
	if transform == nil {
		return s.Snapshot(), nil
	}
	before := s.Snapshot()
	after := transform(CloneAll(before))

	prior := make(map[string]Listing, len(before))
	for _, item := range before {
		prior[item.ID] = item
	}

	now := s.now()
	var creates, updates []int
	kept := make(map[string]struct{}, len(after))
	for i := range after {
		if after[i].ID == "" {
			after[i].ID = identity.ListingID(after[i].Slug, after[i].Name, now)
		}
		if after[i].Slug == "" {
			after[i].Slug = after[i].ID
		}
		if _, dup := kept[after[i].ID]; dup {
			return before, fmt.Errorf("%w: %s", ErrDuplicateID, after[i].ID)
		}
		kept[after[i].ID] = struct{}{}

		old, exists := prior[after[i].ID]
		switch {
		case !exists:
			creates = append(creates, i)
		case changed(old, after[i]):
			after[i].Slug = old.Slug
			updates = append(updates, i)
		default:
			continue
		}
		if err := after[i].Validate(); err != nil {
			return before, err
		}
	}

	var (
		failed []string
		cause  error
	)
	for _, item := range before {
		if _, ok := kept[item.ID]; ok {
			continue
		}
		if err := s.repo.Delete(ctx, item.ID); err != nil {
			failed = append(failed, item.ID)
			cause = errors.Join(cause, err)
		}
	}
	for _, i := range creates {
		record := after[i].Clone()
		created, err := s.repo.Create(ctx, &record)
		if err != nil {
			failed = append(failed, record.ID)
			cause = errors.Join(cause, err)
			continue
		}
		after[i] = created.Clone()
	}
	for _, i := range updates {
		record := after[i].Clone()
		updated, err := s.repo.Update(ctx, &record)
		if err != nil {
			failed = append(failed, record.ID)
			cause = errors.Join(cause, err)
			continue
		}
		after[i] = updated.Clone()
	}

	if len(failed) > 0 {
		s.logger.Error("listings.apply.failed", "failed", failed, "error", cause)
		if _, err := s.Load(ctx); err != nil {
			s.logger.Warn("listings.apply.reload_failed", "error", err)
		}
		return s.Snapshot(), &ApplyError{Failed: failed, Err: cause}
	}

	SortForPresentation(after)
	s.mutate(func([]Listing) []Listing { return CloneAll(after) })
	return CloneAll(after), nil
}

// mutate applies fn to the snapshot under the lock and supersedes in-flight
// loads.
func (s *Store) mutate(fn func([]Listing) []Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = fn(s.items)
	SortForPresentation(s.items)
	s.generation++
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

func changed(a, b Listing) bool {
	a.RowID = b.RowID
	a.CreatedAt, a.UpdatedAt = b.CreatedAt, b.UpdatedAt
	return !reflect.DeepEqual(a, b)
}
