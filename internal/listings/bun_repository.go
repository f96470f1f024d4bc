package listings

import (
	"context"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-estate/internal/identity"
)

const listingNamespace = "listing"

// NewListingRepository creates the generic repository for listing rows.
func NewListingRepository(db *bun.DB) repository.Repository[*Listing] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Listing]{
		NewRecord: func() *Listing { return &Listing{} },
		GetID: func(l *Listing) uuid.UUID {
			return l.RowID
		},
		SetID: func(l *Listing, id uuid.UUID) {
			l.RowID = id
		},
		GetIdentifier: func() string {
			return "listing_id"
		},
		GetIdentifierValue: func(l *Listing) string {
			return l.ID
		},
	})
}

// BunRepository implements Repository and OrderWriter on bun with optional
// caching.
type BunRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Listing]
	cacheService cache.CacheService
	cachePrefix  string
	now          func() time.Time
}

var (
	_ Repository  = (*BunRepository)(nil)
	_ OrderWriter = (*BunRepository)(nil)
)

// NewBunRepository creates a listing repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache creates a listing repository with caching services.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewListingRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = listingNamespace + cache.KeySeparator
	}
	return &BunRepository{
		db:           db,
		repo:         base,
		cacheService: svc,
		cachePrefix:  prefix,
		now:          time.Now,
	}
}

// EnsureSchema creates the listings table when it does not exist.
func (r *BunRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.NewCreateTable().Model((*Listing)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (r *BunRepository) List(ctx context.Context) ([]*Listing, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.display_order ASC").
				OrderExpr("?TableAlias.listing_id ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "listing", "")
	}
	return records, nil
}

func (r *BunRepository) Get(ctx context.Context, id string) (*Listing, error) {
	record, err := r.repo.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, "listing", id)
	}
	return record, nil
}

func (r *BunRepository) Create(ctx context.Context, listing *Listing) (*Listing, error) {
	if listing == nil || listing.ID == "" {
		return nil, ErrIDRequired
	}
	if _, err := r.Get(ctx, listing.ID); err == nil {
		return nil, ErrDuplicateID
	} else if !isNotFound(err) {
		return nil, err
	}

	record := listing.Clone()
	record.RowID = identity.ListingUUID(record.ID)
	now := r.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	created, err := r.repo.Create(ctx, &record)
	if err != nil {
		return nil, mapRepositoryError(err, "listing", record.ID)
	}
	return created, r.InvalidateCache(ctx)
}

func (r *BunRepository) Update(ctx context.Context, listing *Listing) (*Listing, error) {
	if listing == nil || listing.ID == "" {
		return nil, ErrIDRequired
	}
	existing, err := r.Get(ctx, listing.ID)
	if err != nil {
		return nil, err
	}

	record := listing.Clone()
	record.RowID = existing.RowID
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = r.now()

	updated, err := r.repo.Update(ctx, &record)
	if err != nil {
		return nil, mapRepositoryError(err, "listing", record.ID)
	}
	return updated, r.InvalidateCache(ctx)
}

func (r *BunRepository) Delete(ctx context.Context, id string) error {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, &Listing{RowID: existing.RowID}); err != nil {
		return mapRepositoryError(err, "listing", id)
	}
	return r.InvalidateCache(ctx)
}

// UpdateDisplayOrders writes every order in a single statement.
func (r *BunRepository) UpdateDisplayOrders(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	now := r.now()
	items := make([]*Listing, len(orders))
	for i, o := range orders {
		items[i] = &Listing{
			RowID:        identity.ListingUUID(o.ID),
			ID:           o.ID,
			DisplayOrder: o.DisplayOrder,
			UpdatedAt:    now,
		}
	}
	if _, err := r.repo.UpdateMany(ctx, items,
		repository.UpdateColumns("display_order", "updated_at"),
	); err != nil {
		return mapRepositoryError(err, "listing", "")
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops cached listing queries.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}

func isNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
