package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-estate/internal/adapters/blob"
	"github.com/goliatone/go-estate/internal/adapters/supabase"
	"github.com/goliatone/go-estate/internal/auth"
	"github.com/goliatone/go-estate/internal/listings"
	"github.com/goliatone/go-estate/internal/localcache"
	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/internal/logging/gologger"
	"github.com/goliatone/go-estate/internal/media"
	"github.com/goliatone/go-estate/internal/runtimeconfig"
	"github.com/goliatone/go-estate/internal/seed"
	"github.com/goliatone/go-estate/internal/session"
	"github.com/goliatone/go-estate/internal/sitecontent"
	"github.com/goliatone/go-estate/internal/sitedata"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

// Container wires the data layer from a runtime configuration. Backends that
// are not overridden through options are derived from Config.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	httpClient *http.Client
	supabase   *supabase.Client

	authBackend interfaces.AuthBackend
	blobs       interfaces.BlobStorage
	snapshots   *localcache.Cache

	listingRepo listings.Repository
	mediaRepo   media.Repository
	contentRepo sitecontent.Repository

	sessionMgr   *session.Manager
	listingStore *listings.Store
	mediaStore   *media.Store
	contentStore *sitecontent.Store
	provider     *sitedata.Provider

	migrateOnce sync.Once
	migrateErr  error
	closeOnce   sync.Once
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB binds the SQL repositories and the SQL auth backend to db. The
// caller keeps ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the logger provider derived from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithAuthBackend overrides the auth backend selected by the driver.
func WithAuthBackend(backend interfaces.AuthBackend) Option {
	return func(c *Container) {
		c.authBackend = backend
	}
}

// WithBlobStorage overrides the blob storage selected by Config.Storage.
func WithBlobStorage(storage interfaces.BlobStorage) Option {
	return func(c *Container) {
		c.blobs = storage
	}
}

// WithHTTPClient sets the HTTP client used for the hosted backend.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Container) {
		c.httpClient = hc
	}
}

// WithRepositories replaces all three remote repositories.
func WithRepositories(listingRepo listings.Repository, mediaRepo media.Repository, contentRepo sitecontent.Repository) Option {
	return func(c *Container) {
		c.listingRepo = listingRepo
		c.mediaRepo = mediaRepo
		c.contentRepo = contentRepo
	}
}

// NewContainer validates cfg and builds every adapter, store and the site
// data provider. Nothing touches the network until the provider starts.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	steps := []func() error{
		c.configureLogger,
		c.configureDatabase,
		c.configureCacheDefaults,
		c.configureSupabase,
		c.configureRepositories,
		c.configureBlobStorage,
		c.configureSnapshots,
		c.configureAuth,
		c.configureStores,
		c.configureProvider,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			c.closeDB()
			return nil, err
		}
	}

	logging.ModuleLogger(c.loggerProvider, "estate.di").Info("container.configured",
		"driver", c.driver(),
		"storage", strings.ToLower(cfg.Storage.Provider),
		"repository_cache", c.cacheEnabled(),
		"offline_snapshot", c.snapshots != nil,
	)
	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger || strings.EqualFold(c.Config.Logging.Provider, "none") {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureDatabase() error {
	if c.bunDB != nil {
		return nil
	}
	db, err := OpenDB(c.driver(), c.Config.Backend.DSN)
	if err != nil {
		return err
	}
	if db != nil {
		c.bunDB = db
		c.ownsDB = true
	}
	return nil
}

// OpenDB opens a bun handle for the sql drivers. It returns nil for drivers
// that do not use a database.
func OpenDB(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case runtimeconfig.DriverSQLite:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
			// an in-memory database lives and dies with its connection
			sqldb.SetMaxOpenConns(1)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case runtimeconfig.DriverPostgres:
		sqldb, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, nil
	}
}

func (c *Container) configureCacheDefaults() error {
	if !c.cacheEnabled() {
		return nil
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.TTL > 0 {
			cfg.TTL = c.Config.Cache.TTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("repository cache: %w", err)
		}
		c.cacheService = service
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureSupabase() error {
	needed := c.driver() == runtimeconfig.DriverSupabase ||
		strings.EqualFold(c.Config.Storage.Provider, runtimeconfig.StorageSupabase)
	if !needed {
		return nil
	}
	sb := c.Config.Backend.Supabase
	client, err := supabase.NewClient(supabase.Config{
		URL:        sb.URL,
		AnonKey:    sb.AnonKey,
		ServiceKey: sb.ServiceKey,
		Bucket:     sb.Bucket,
		Timeout:    c.Config.Backend.Timeout,
	}, supabase.WithHTTPClient(c.httpClient), supabase.WithLogger(logging.AdaptersLogger(c.loggerProvider)))
	if err != nil {
		return err
	}
	c.supabase = client
	return nil
}

func (c *Container) configureRepositories() error {
	if c.listingRepo != nil && c.mediaRepo != nil && c.contentRepo != nil {
		return nil
	}
	switch {
	case c.driver() == runtimeconfig.DriverSupabase:
		c.listingRepo = supabase.NewListings(c.supabase)
		c.mediaRepo = supabase.NewMedia(c.supabase)
		c.contentRepo = supabase.NewSiteContent(c.supabase)
	case c.bunDB != nil:
		if c.cacheEnabled() {
			c.listingRepo = listings.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		} else {
			c.listingRepo = listings.NewBunRepository(c.bunDB)
		}
		c.mediaRepo = media.NewBunRepository(c.bunDB)
		c.contentRepo = sitecontent.NewBunRepository(c.bunDB)
	default:
		c.listingRepo = listings.NewMemoryRepository()
		c.mediaRepo = media.NewMemoryRepository()
		c.contentRepo = sitecontent.NewMemoryRepository()
	}
	return nil
}

func (c *Container) configureBlobStorage() error {
	if c.blobs != nil {
		return nil
	}
	st := c.Config.Storage
	switch strings.ToLower(strings.TrimSpace(st.Provider)) {
	case runtimeconfig.StorageLocal:
		local, err := blob.NewLocalStorage(st.LocalDir, st.PublicBaseURL)
		if err != nil {
			return err
		}
		c.blobs = local
	case runtimeconfig.StorageS3:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s3, err := blob.NewS3Storage(ctx, blob.S3Config{
			Bucket:          st.S3.Bucket,
			Region:          st.S3.Region,
			Endpoint:        st.S3.Endpoint,
			AccessKeyID:     st.S3.AccessKeyID,
			SecretAccessKey: st.S3.SecretAccessKey,
			PublicURL:       st.S3.PublicURL,
		})
		if err != nil {
			return err
		}
		c.blobs = s3
	case runtimeconfig.StorageSupabase:
		c.blobs = supabase.NewStorage(c.supabase)
	default:
		c.blobs = blob.NewMemoryStorage(st.PublicBaseURL)
	}
	return nil
}

func (c *Container) configureSnapshots() error {
	if !c.Config.Features.OfflineSnapshot {
		return nil
	}
	cache, err := localcache.New(c.Config.Sync.SnapshotDir, localcache.WithLogger(logging.ProviderLogger(c.loggerProvider)))
	if err != nil {
		return err
	}
	c.snapshots = cache
	return nil
}

func (c *Container) configureAuth() error {
	if c.authBackend != nil {
		return nil
	}
	var tokens auth.TokenStore = auth.NewMemoryTokenStore()
	if c.snapshots != nil {
		tokens = c.snapshots.Tokens()
	}
	logger := logging.SessionLogger(c.loggerProvider)

	switch {
	case c.driver() == runtimeconfig.DriverSupabase:
		c.authBackend = supabase.NewAuth(c.supabase, supabase.WithTokenStore(tokens))
	case c.bunDB != nil:
		backend, err := auth.NewBunBackend(c.bunDB, auth.BunConfig{
			Secret:   c.Config.Auth.JWTSecret,
			Issuer:   c.Config.Auth.Issuer,
			TokenTTL: c.Config.Auth.TokenTTL,
		}, auth.WithTokenStore(tokens), auth.WithLogger(logger))
		if err != nil {
			return err
		}
		c.authBackend = backend
	default:
		c.authBackend = auth.NewMemoryBackend()
	}
	return nil
}

func (c *Container) configureStores() error {
	mgr, err := session.NewManager(c.authBackend, session.WithLogger(logging.SessionLogger(c.loggerProvider)))
	if err != nil {
		return err
	}
	c.sessionMgr = mgr

	c.listingStore, err = listings.NewStore(c.listingRepo, listings.WithLogger(logging.ListingsLogger(c.loggerProvider)))
	if err != nil {
		return err
	}

	c.mediaStore, err = media.NewStore(c.mediaRepo, c.blobs,
		media.WithLogger(logging.MediaLogger(c.loggerProvider)),
		media.WithLimits(media.Limits{
			MaxBytes:     c.Config.Uploads.MaxBytes,
			AllowedTypes: c.Config.Uploads.AllowedTypes,
		}),
	)
	if err != nil {
		return err
	}

	c.contentStore, err = sitecontent.NewStore(c.contentRepo,
		sitecontent.WithKey(c.Config.Content.Key),
		sitecontent.WithRollbackOnFailure(c.Config.Content.RollbackOnFailure),
		sitecontent.WithLogger(logging.ContentLogger(c.loggerProvider)),
	)
	return err
}

func (c *Container) configureProvider() error {
	opts := []sitedata.Option{
		sitedata.WithLogger(logging.ProviderLogger(c.loggerProvider)),
		sitedata.WithStartupTimeout(c.Config.Sync.StartupTimeout),
	}
	if c.snapshots != nil {
		opts = append(opts, sitedata.WithSnapshots(c.snapshots))
	}
	if c.Config.Features.SeedOnEmpty {
		opts = append(opts, sitedata.WithSeed(seed.Listings))
	}
	if c.Config.Features.PeriodicRefresh {
		opts = append(opts, sitedata.WithRefreshSchedule(c.Config.Sync.RefreshSchedule))
	}
	provider, err := sitedata.NewProvider(c.sessionMgr, c.listingStore, c.mediaStore, c.contentStore, opts...)
	if err != nil {
		return err
	}
	c.provider = provider
	return nil
}

type schemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// Migrate creates the tables used by the sql drivers. It runs once and is a
// no-op for the other drivers.
func (c *Container) Migrate(ctx context.Context) error {
	c.migrateOnce.Do(func() {
		if c.bunDB == nil {
			return
		}
		candidates := []any{c.listingRepo, c.mediaRepo, c.contentRepo, c.authBackend}
		for _, candidate := range candidates {
			ensurer, ok := candidate.(schemaEnsurer)
			if !ok {
				continue
			}
			if err := ensurer.EnsureSchema(ctx); err != nil {
				c.migrateErr = errors.Join(c.migrateErr, err)
			}
		}
	})
	return c.migrateErr
}

// UpsertAdmin creates or updates a staff account. Only the sql drivers manage
// accounts locally.
func (c *Container) UpsertAdmin(ctx context.Context, email, password string) error {
	backend, ok := c.authBackend.(*auth.BunBackend)
	if !ok {
		return ErrAccountsUnmanaged
	}
	if err := c.Migrate(ctx); err != nil {
		return err
	}
	return backend.UpsertAdmin(ctx, email, password)
}

// ErrAccountsUnmanaged reports that the active auth backend manages staff
// accounts elsewhere.
var ErrAccountsUnmanaged = errors.New("di: staff accounts are not managed by this backend")

func (c *Container) Provider() *sitedata.Provider { return c.provider }

func (c *Container) Session() *session.Manager { return c.sessionMgr }

func (c *Container) Listings() *listings.Store { return c.listingStore }

func (c *Container) Media() *media.Store { return c.mediaStore }

func (c *Container) Content() *sitecontent.Store { return c.contentStore }

func (c *Container) AuthBackend() interfaces.AuthBackend { return c.authBackend }

func (c *Container) BlobStorage() interfaces.BlobStorage { return c.blobs }

// Snapshots returns the offline cache, or nil when the feature is off.
func (c *Container) Snapshots() *localcache.Cache { return c.snapshots }

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) DB() *bun.DB { return c.bunDB }

// Close shuts the provider down and releases a database opened by the
// container.
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.provider.Close()
		err = c.closeDB()
	})
	return err
}

func (c *Container) closeDB() error {
	if c.bunDB == nil || !c.ownsDB {
		return nil
	}
	return c.bunDB.Close()
}

func (c *Container) driver() string {
	return strings.ToLower(strings.TrimSpace(c.Config.Backend.Driver))
}

func (c *Container) cacheEnabled() bool {
	return c.Config.Cache.Enabled && c.Config.Features.RepositoryCache
}
