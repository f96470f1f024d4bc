package media

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"path"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-estate/internal/identity"
	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

// Store is the local media library. Remote writes land before local state
// changes.
type Store struct {
	repo   Repository
	blobs  interfaces.BlobStorage
	limits Limits
	logger interfaces.Logger
	now    func() time.Time

	mu         sync.RWMutex
	items      []Asset
	generation uint64
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

// WithClock overrides the clock used for storage keys and timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLimits overrides the upload size and type limits.
func WithLimits(limits Limits) StoreOption {
	return func(s *Store) {
		s.limits = limits
	}
}

func NewStore(repo Repository, blobs interfaces.BlobStorage, opts ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if blobs == nil {
		return nil, ErrStorageRequired
	}
	s := &Store{
		repo:   repo,
		blobs:  blobs,
		limits: DefaultLimits(),
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SortNewestFirst orders assets by creation time descending, ties by id.
func SortNewestFirst(items []Asset) {
	slices.SortStableFunc(items, func(a, b Asset) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Load replaces the local library with the remote one, newest first. A load
// overtaken by a newer load or write is discarded.
func (s *Store) Load(ctx context.Context) ([]Asset, error) {
	gen := s.begin()

	records, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("media.load.failed", "error", err)
		return s.Snapshot(), fmt.Errorf("media: load: %w", err)
	}
	items := make([]Asset, 0, len(records))
	for _, record := range records {
		if record != nil {
			items = append(items, record.Clone())
		}
	}
	SortNewestFirst(items)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug("media.load.stale", "generation", gen)
		return CloneAll(s.items), nil
	}
	s.items = items
	return CloneAll(items), nil
}

// Snapshot returns a copy of the local library.
func (s *Store) Snapshot() []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := CloneAll(s.items)
	if out == nil {
		out = []Asset{}
	}
	return out
}

func (s *Store) Get(id string) (Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item.Clone(), true
		}
	}
	return Asset{}, false
}

// Hydrate replaces the local library without touching the repository.
func (s *Store) Hydrate(items []Asset) {
	next := CloneAll(items)
	SortNewestFirst(next)
	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
}

// Limits returns the upload limits in force.
func (s *Store) Limits() Limits {
	return s.limits
}

// Upload validates file, writes it to the bucket, records its metadata and
// adds it to the library. Validation failures make no remote call. When the
// metadata insert fails the blob is deleted again; if that cleanup fails too
// the error is a *PartialFailureError.
func (s *Store) Upload(ctx context.Context, file UploadFile) (*Asset, error) {
	if err := s.limits.Check(&file); err != nil {
		return nil, err
	}

	now := s.now()
	key := StorageKey(file.Name, now)
	logger := logging.WithOperation(s.logger, "media.upload", key)

	if err := s.blobs.Put(ctx, key, file.Body, file.Size, file.ContentType); err != nil {
		var tooLarge *ValidationError
		if errors.As(err, &tooLarge) {
			logger.Warn("media.upload.body_too_large", "declared_size", file.Size, "error", err)
			if cleanupErr := s.blobs.Delete(ctx, key); cleanupErr != nil && !errors.Is(cleanupErr, interfaces.ErrBlobNotFound) {
				logger.Error("media.upload.cleanup_failed", "error", cleanupErr)
			}
			return nil, tooLarge
		}
		logger.Error("media.upload.blob_failed", "error", err)
		return nil, &UploadError{Stage: StageBlobPut, Name: file.Name, Err: err}
	}

	asset := Asset{
		ID:         key,
		StorageKey: key,
		URL:        s.blobs.PublicURL(key),
		Name:       file.Name,
		Kind:       InferKind(file.ContentType, file.Name),
		MimeType:   file.ContentType,
		Size:       file.Size,
		Tags:       normalizeTags(file.Tags),
		CreatedAt:  now,
	}
	created, err := s.repo.Create(ctx, &asset)
	if err != nil {
		logger.Error("media.upload.metadata_failed", "error", err)
		if cleanupErr := s.blobs.Delete(ctx, key); cleanupErr != nil {
			logger.Error("media.upload.cleanup_failed", "error", cleanupErr)
			return nil, &PartialFailureError{
				Stage:      StageMetadataInsert,
				StorageKey: key,
				Err:        err,
				CleanupErr: cleanupErr,
			}
		}
		return nil, &UploadError{Stage: StageMetadataInsert, Name: file.Name, Err: err}
	}

	out := created.Clone()
	s.mutate(func(items []Asset) []Asset {
		return append(items, out.Clone())
	})
	logger.Info("media.upload.completed", "url", out.URL)
	return &out, nil
}

// UploadResult is the outcome for one file of a batch.
type UploadResult struct {
	Name  string
	Asset *Asset
	Err   error
}

// UploadBatch uploads files one at a time in order and reports progress after
// each. A cancelled context marks the remaining files with the context error.
func (s *Store) UploadBatch(ctx context.Context, files []UploadFile, progress func(done, total int)) []UploadResult {
	results := make([]UploadResult, len(files))
	for i, file := range files {
		results[i].Name = file.Name
		if err := ctx.Err(); err != nil {
			results[i].Err = err
		} else {
			results[i].Asset, results[i].Err = s.Upload(ctx, file)
		}
		if progress != nil {
			progress(i+1, len(files))
		}
	}
	return results
}

// RegisterURL records an externally hosted asset. Registering the same URL
// again returns the existing asset.
func (s *Store) RegisterURL(ctx context.Context, url, name string, tags []string) (*Asset, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, &ValidationError{Field: "url", Reason: ErrURLRequired}
	}
	id := identity.ExternalMediaID(url)
	if existing, ok := s.Get(id); ok {
		return &existing, nil
	}
	if strings.TrimSpace(name) == "" {
		name = path.Base(url)
	}

	asset := Asset{
		ID:        id,
		URL:       url,
		Name:      name,
		Kind:      InferKind("", url),
		Tags:      normalizeTags(tags),
		CreatedAt: s.now(),
	}
	created, err := s.repo.Create(ctx, &asset)
	if err != nil {
		s.logger.Error("media.register.failed", "url", url, "error", err)
		return nil, fmt.Errorf("media: register %q: %w", url, err)
	}
	out := created.Clone()
	s.mutate(func(items []Asset) []Asset {
		return append(items, out.Clone())
	})
	return &out, nil
}

// Delete removes the asset's blob and then its metadata row. url is used to
// find the blob key when the asset is not in the local library. Local state
// changes only when both steps succeed.
func (s *Store) Delete(ctx context.Context, id, url string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrIDRequired
	}
	if err := s.deleteRemote(ctx, id, s.blobKey(id, url)); err != nil {
		return err
	}
	s.mutate(func(items []Asset) []Asset {
		return slices.DeleteFunc(items, func(a Asset) bool { return a.ID == id })
	})
	return nil
}

func (s *Store) deleteRemote(ctx context.Context, id, key string) error {
	logger := logging.WithOperation(s.logger, "media.delete", id)
	blobDeleted := false
	if key != "" {
		if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, interfaces.ErrBlobNotFound) {
			logger.Error("media.delete.blob_failed", "key", key, "error", err)
			return &DeleteError{Stage: StageBlobDelete, ID: id, Err: err}
		}
		blobDeleted = true
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		logger.Error("media.delete.metadata_failed", "error", err, "blob_deleted", blobDeleted)
		return &DeleteError{Stage: StageMetadataDelete, ID: id, BlobDeleted: blobDeleted, Err: err}
	}
	return nil
}

// blobKey resolves the bucket key for an asset, or "" when it is external.
func (s *Store) blobKey(id, url string) string {
	if asset, ok := s.Get(id); ok {
		return asset.StorageKey
	}
	if strings.HasPrefix(id, identity.ExternalMediaPrefix) {
		return ""
	}
	if resolver, ok := s.blobs.(interfaces.BlobKeyResolver); ok && url != "" {
		if key, ok := resolver.KeyFromURL(url); ok {
			return key
		}
	}
	return id
}

// ApplyUpdate runs transform over a copy of the library and persists the
// difference. Removed assets go through the same two-stage delete as Delete;
// added ones must already carry a URL. Local state adopts the result only
// when every write succeeds; otherwise it is reloaded.
func (s *Store) ApplyUpdate(ctx context.Context, transform func([]Asset) []Asset) ([]Asset, error) {
	if transform == nil {
		return s.Snapshot(), nil
	}
	before := s.Snapshot()
	after := transform(CloneAll(before))

	prior := make(map[string]Asset, len(before))
	for _, item := range before {
		prior[item.ID] = item
	}
	kept := make(map[string]struct{}, len(after))
	for i := range after {
		if strings.TrimSpace(after[i].URL) == "" {
			return before, &ValidationError{Field: "url", Reason: ErrURLRequired}
		}
		if after[i].ID == "" {
			after[i].ID = identity.ExternalMediaID(after[i].URL)
		}
		if after[i].Kind == "" {
			after[i].Kind = InferKind(after[i].MimeType, after[i].URL)
		}
		if _, dup := kept[after[i].ID]; dup {
			return before, fmt.Errorf("%w: %s", ErrDuplicateID, after[i].ID)
		}
		kept[after[i].ID] = struct{}{}
	}

	var (
		failed []string
		cause  error
	)
	for _, item := range before {
		if _, ok := kept[item.ID]; ok {
			continue
		}
		if err := s.deleteRemote(ctx, item.ID, item.StorageKey); err != nil {
			failed = append(failed, item.ID)
			cause = errors.Join(cause, err)
		}
	}
	now := s.now()
	for i := range after {
		old, exists := prior[after[i].ID]
		var (
			record *Asset
			err    error
		)
		switch {
		case !exists:
			if after[i].CreatedAt.IsZero() {
				after[i].CreatedAt = now
			}
			candidate := after[i].Clone()
			record, err = s.repo.Create(ctx, &candidate)
		case !reflect.DeepEqual(old, after[i]):
			candidate := after[i].Clone()
			record, err = s.repo.Update(ctx, &candidate)
		default:
			continue
		}
		if err != nil {
			failed = append(failed, after[i].ID)
			cause = errors.Join(cause, err)
			continue
		}
		after[i] = record.Clone()
	}

	if len(failed) > 0 {
		s.logger.Error("media.apply.failed", "failed", failed, "error", cause)
		if _, err := s.Load(ctx); err != nil {
			s.logger.Warn("media.apply.reload_failed", "error", err)
		}
		return s.Snapshot(), &ApplyError{Failed: failed, Err: cause}
	}

	SortNewestFirst(after)
	s.mutate(func([]Asset) []Asset { return CloneAll(after) })
	return CloneAll(after), nil
}

func (s *Store) mutate(fn func([]Asset) []Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = fn(s.items)
	SortNewestFirst(s.items)
	s.generation++
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}
