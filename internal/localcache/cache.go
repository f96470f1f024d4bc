package localcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goliatone/go-estate/internal/listings"
	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/internal/media"
	"github.com/goliatone/go-estate/internal/sitecontent"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

// Snapshot keys. They match the keys the staff console used in browser
// storage so exported snapshots can be dropped in unchanged.
const (
	KeyListings = "asghar_projects"
	KeyMedia    = "asghar_media"
	KeyContent  = "asghar_content"
	KeySession  = "asghar_admin_session"
)

var ErrDirRequired = errors.New("localcache: snapshot directory is required")

// Cache stores the last known good collections as JSON files, one per key.
type Cache struct {
	dir    string
	logger interfaces.Logger
	mu     sync.Mutex
}

type Option func(*Cache)

func WithLogger(logger interfaces.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates dir when missing.
func New(dir string, opts ...Option) (*Cache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrDirRequired
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localcache: create dir: %w", err)
	}
	c := &Cache{dir: dir, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) SaveListings(ctx context.Context, items []listings.Listing) error {
	return c.write(ctx, KeyListings, items)
}

// Listings returns the cached listings. ok is false when nothing is cached.
func (c *Cache) Listings(ctx context.Context) (items []listings.Listing, ok bool, err error) {
	ok, err = c.read(ctx, KeyListings, &items)
	return items, ok, err
}

func (c *Cache) SaveMedia(ctx context.Context, items []media.Asset) error {
	return c.write(ctx, KeyMedia, items)
}

func (c *Cache) Media(ctx context.Context) (items []media.Asset, ok bool, err error) {
	ok, err = c.read(ctx, KeyMedia, &items)
	return items, ok, err
}

func (c *Cache) SaveContent(ctx context.Context, content sitecontent.SiteContent) error {
	return c.write(ctx, KeyContent, content)
}

// Content merges the cached document over the defaults so a snapshot written
// by an older release still yields a complete document.
func (c *Cache) Content(ctx context.Context) (sitecontent.SiteContent, bool, error) {
	var raw json.RawMessage
	ok, err := c.read(ctx, KeyContent, &raw)
	if err != nil || !ok {
		return sitecontent.Defaults(), ok, err
	}
	doc, err := sitecontent.DecodeDocument(raw)
	var schemaErr *sitecontent.SchemaError
	if err != nil && !errors.As(err, &schemaErr) {
		return sitecontent.Defaults(), false, fmt.Errorf("localcache: %s: %w", KeyContent, err)
	}
	if schemaErr != nil {
		c.logger.Warn("localcache.content.invalid_sections", "sections", schemaErr.Sections, "error", err)
	}
	return sitecontent.MergeWithDefaults(doc), true, nil
}

// Clear removes every snapshot file. Missing files are ignored.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for _, key := range []string{KeyListings, KeyMedia, KeyContent, KeySession} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// write replaces the file for key atomically.
func (c *Cache) write(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("localcache: encode %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tmp, err := os.CreateTemp(c.dir, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("localcache: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("localcache: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("localcache: close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		return fmt.Errorf("localcache: store %s: %w", key, err)
	}
	c.logger.Debug("localcache.write", "key", key, "bytes", len(data))
	return nil
}

func (c *Cache) read(ctx context.Context, key string, v any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	data, err := os.ReadFile(c.path(key))
	c.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("localcache: read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn("localcache.read.corrupt", "key", key, "error", err)
		return false, fmt.Errorf("localcache: decode %s: %w", key, err)
	}
	return true, nil
}
