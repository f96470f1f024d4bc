package sitecontent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

// DefaultKey is the singleton key the document is stored under.
const DefaultKey = "site"

var ErrRepositoryRequired = errors.New("sitecontent: repository is required")

// Store holds the local copy of the site content document. Local state is
// never partially filled: it starts at Defaults and is only replaced by a
// merged document.
type Store struct {
	repo     Repository
	key      string
	logger   interfaces.Logger
	rollback bool

	mu         sync.RWMutex
	current    SiteContent
	generation uint64
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey overrides the singleton key.
func WithKey(key string) StoreOption {
	return func(s *Store) {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			s.key = trimmed
		}
	}
}

func WithLogger(logger interfaces.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRollbackOnFailure restores the previous local document when a remote
// write fails. Off by default: the last local edit stays until the next load.
func WithRollbackOnFailure(enabled bool) StoreOption {
	return func(s *Store) {
		s.rollback = enabled
	}
}

func NewStore(repo Repository, opts ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	s := &Store{
		repo:    repo,
		key:     DefaultKey,
		logger:  logging.NoOp(),
		current: Defaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Key returns the singleton key in use.
func (s *Store) Key() string {
	return s.key
}

// Current returns a copy of the local document.
func (s *Store) Current() SiteContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Load fetches the stored document and merges it over the defaults. A missing
// document yields the defaults. Sections that fail the schema fall back to
// their defaults and are logged; unparseable JSON yields the defaults. Transport errors are returned together with the unchanged local
// document. A load that finishes after a newer load or update has applied is
// discarded.
func (s *Store) Load(ctx context.Context) (SiteContent, error) {
	gen := s.begin()

	raw, err := s.repo.Get(ctx, s.key)
	switch {
	case errors.Is(err, ErrDocumentNotFound):
		s.logger.Info("content.load.not_found", "key", s.key)
		return s.apply(gen, Defaults()), nil
	case err != nil:
		s.logger.Error("content.load.failed", "key", s.key, "error", err)
		return s.Current(), fmt.Errorf("sitecontent: load %q: %w", s.key, err)
	}

	doc, err := DecodeDocument(raw)
	var schemaErr *SchemaError
	switch {
	case errors.As(err, &schemaErr):
		s.logger.Warn("content.load.invalid_sections", "key", s.key, "sections", schemaErr.Sections, "error", err)
	case err != nil:
		s.logger.Warn("content.load.invalid_document", "key", s.key, "error", err)
		return s.apply(gen, Defaults()), nil
	}
	return s.apply(gen, MergeWithDefaults(doc)), nil
}

// Update replaces the local document immediately and then upserts the whole
// document under the singleton key.
func (s *Store) Update(ctx context.Context, content SiteContent) error {
	next := content.Clone()

	s.mu.Lock()
	previous := s.current
	s.current = next
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	raw, err := json.Marshal(next)
	if err == nil {
		err = s.repo.Upsert(ctx, s.key, raw)
	}
	if err == nil {
		s.logger.Debug("content.update.saved", "key", s.key)
		return nil
	}

	s.logger.Error("content.update.failed", "key", s.key, "error", err, "rollback", s.rollback)
	if s.rollback {
		s.mu.Lock()
		if s.generation == gen {
			s.current = previous
		}
		s.mu.Unlock()
	}
	return fmt.Errorf("sitecontent: save %q: %w", s.key, err)
}

// Hydrate replaces local state without touching the repository, e.g. from an
// offline snapshot. It does not supersede in-flight loads.
func (s *Store) Hydrate(content SiteContent) {
	s.mu.Lock()
	s.current = content.Clone()
	s.mu.Unlock()
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

func (s *Store) apply(gen uint64, content SiteContent) SiteContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug("content.load.stale", "generation", gen)
		return s.current.Clone()
	}
	s.current = content
	return content.Clone()
}
