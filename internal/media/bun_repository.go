package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-estate/internal/identity"
)

// NewAssetRepository creates the generic repository for media rows.
func NewAssetRepository(db *bun.DB) repository.Repository[*Asset] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Asset]{
		NewRecord: func() *Asset { return &Asset{} },
		GetID: func(a *Asset) uuid.UUID {
			return a.RowID
		},
		SetID: func(a *Asset, id uuid.UUID) {
			a.RowID = id
		},
		GetIdentifier: func() string {
			return "asset_id"
		},
		GetIdentifierValue: func(a *Asset) string {
			return a.ID
		},
	})
}

// BunRepository implements Repository on bun.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Asset]
	now  func() time.Time
}

var _ Repository = (*BunRepository)(nil)

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, repo: NewAssetRepository(db), now: time.Now}
}

// EnsureSchema creates the media table when it does not exist.
func (r *BunRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.NewCreateTable().Model((*Asset)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (r *BunRepository) List(ctx context.Context) ([]*Asset, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.created_at DESC").
				OrderExpr("?TableAlias.asset_id ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "media", "")
	}
	return records, nil
}

func (r *BunRepository) Get(ctx context.Context, id string) (*Asset, error) {
	record, err := r.repo.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, "media", id)
	}
	return record, nil
}

func (r *BunRepository) Create(ctx context.Context, asset *Asset) (*Asset, error) {
	if asset == nil || asset.ID == "" {
		return nil, ErrIDRequired
	}
	if _, err := r.Get(ctx, asset.ID); err == nil {
		return nil, ErrDuplicateID
	} else if !isNotFound(err) {
		return nil, err
	}

	record := asset.Clone()
	record.RowID = identity.MediaUUID(record.ID)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now()
	}
	created, err := r.repo.Create(ctx, &record)
	if err != nil {
		return nil, mapRepositoryError(err, "media", record.ID)
	}
	return created, nil
}

func (r *BunRepository) Update(ctx context.Context, asset *Asset) (*Asset, error) {
	if asset == nil || asset.ID == "" {
		return nil, ErrIDRequired
	}
	existing, err := r.Get(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	record := asset.Clone()
	record.RowID = existing.RowID
	record.CreatedAt = existing.CreatedAt

	updated, err := r.repo.Update(ctx, &record)
	if err != nil {
		return nil, mapRepositoryError(err, "media", record.ID)
	}
	return updated, nil
}

func (r *BunRepository) Delete(ctx context.Context, id string) error {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, &Asset{RowID: existing.RowID}); err != nil {
		return mapRepositoryError(err, "media", id)
	}
	return nil
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
