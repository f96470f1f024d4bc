package di

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-estate/internal/adapters/blob"
	"github.com/goliatone/go-estate/internal/auth"
	"github.com/goliatone/go-estate/internal/listings"
	"github.com/goliatone/go-estate/internal/localcache"
	"github.com/goliatone/go-estate/internal/logging/gologger"
	"github.com/goliatone/go-estate/internal/runtimeconfig"
	"github.com/goliatone/go-estate/internal/seed"
	"github.com/goliatone/go-estate/internal/sitedata"
)

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Backend.Driver = "oracle"

	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrBackendDriverUnknown) {
		t.Fatalf("expected ErrBackendDriverUnknown, got %v", err)
	}
}

func TestMemoryContainerSeedsOnStart(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.SeedOnEmpty = true

	container, err := NewContainer(cfg, WithAuthBackend(auth.NewMemoryBackend(auth.WithAccount("staff@example.com", "secret"))))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if container.DB() != nil {
		t.Fatalf("memory driver should not open a database")
	}
	if _, ok := container.BlobStorage().(*blob.MemoryStorage); !ok {
		t.Fatalf("expected memory blob storage, got %T", container.BlobStorage())
	}

	ctx := context.Background()
	if err := container.Provider().Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	want := len(seed.MustListings())
	if got := len(container.Provider().Projects()); got != want {
		t.Fatalf("expected %d seeded projects, got %d", want, got)
	}

	if err := container.Provider().Login(ctx, "staff@example.com", "secret"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if !container.Provider().IsAdmin() {
		t.Fatalf("expected privileged session after login")
	}
}

func TestMemoryContainerWithoutSeedStartsEmpty(t *testing.T) {
	container, err := NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if err := container.Provider().Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if got := len(container.Provider().Projects()); got != 0 {
		t.Fatalf("expected no projects, got %d", got)
	}
	if err := container.UpsertAdmin(context.Background(), "a@b.c", "pw"); !errors.Is(err, ErrAccountsUnmanaged) {
		t.Fatalf("expected ErrAccountsUnmanaged, got %v", err)
	}
}

func sqliteConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Backend.Driver = runtimeconfig.DriverSQLite
	cfg.Backend.DSN = "file:" + filepath.Join(t.TempDir(), "estate.db") + "?_fk=1"
	cfg.Auth.JWTSecret = "test-secret"
	return cfg
}

func TestSQLiteContainerPersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)
	cfg.Features.SeedOnEmpty = true
	cfg.Cache.Enabled = true
	cfg.Features.RepositoryCache = true

	first, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if first.cacheService == nil || first.keySerializer == nil {
		t.Fatalf("expected repository cache to be configured")
	}
	if _, ok := first.AuthBackend().(*auth.BunBackend); !ok {
		t.Fatalf("expected bun auth backend, got %T", first.AuthBackend())
	}
	if err := first.UpsertAdmin(ctx, "staff@example.com", "secret"); err != nil {
		t.Fatalf("UpsertAdmin returned error: %v", err)
	}
	if err := first.Provider().Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := first.Provider().Login(ctx, "staff@example.com", "secret"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	created, err := first.Provider().CreateProject(ctx, listings.Listing{
		Name:     "Harbour View",
		Location: "Karachi, Sindh",
		Category: listings.CategoryResidential,
		Status:   listings.StatusUpcoming,
	})
	if err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	second, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer (restart) returned error: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })
	if err := second.Migrate(ctx); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	if err := second.Provider().Start(ctx); err != nil {
		t.Fatalf("Start (restart) returned error: %v", err)
	}

	projects := second.Provider().Projects()
	if len(projects) != len(seed.MustListings())+1 {
		t.Fatalf("expected seeded listings plus one, got %d", len(projects))
	}
	if _, ok := second.Provider().Project(created.ID); !ok {
		t.Fatalf("expected %s to survive the restart", created.ID)
	}
	if second.Provider().IsAdmin() {
		t.Fatalf("in-memory token store should not restore a session")
	}
}

func TestSnapshotsRestoreAdminSession(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)
	cfg.Features.OfflineSnapshot = true
	cfg.Sync.SnapshotDir = t.TempDir()

	first, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if first.Snapshots() == nil {
		t.Fatalf("expected snapshot cache")
	}
	if err := first.UpsertAdmin(ctx, "staff@example.com", "secret"); err != nil {
		t.Fatalf("UpsertAdmin returned error: %v", err)
	}
	if err := first.Provider().Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := first.Provider().Login(ctx, "staff@example.com", "secret"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Sync.SnapshotDir, localcache.KeyListings+".json")); err != nil {
		t.Fatalf("expected listings snapshot: %v", err)
	}
	_ = first.Close()

	second, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer (restart) returned error: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })
	if err := second.Provider().Start(ctx); err != nil {
		t.Fatalf("Start (restart) returned error: %v", err)
	}
	if !second.Provider().IsAdmin() {
		t.Fatalf("expected session restored from the snapshot token store")
	}
}

func TestLocalStorageSelection(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = runtimeconfig.StorageLocal
	cfg.Storage.LocalDir = t.TempDir()
	cfg.Storage.PublicBaseURL = "https://cdn.example.com/media"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if _, ok := container.BlobStorage().(*blob.LocalStorage); !ok {
		t.Fatalf("expected local blob storage, got %T", container.BlobStorage())
	}
	if got := container.Media().Limits().MaxBytes; got != cfg.Uploads.MaxBytes {
		t.Fatalf("expected upload limit %d, got %d", cfg.Uploads.MaxBytes, got)
	}
}

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	provider, ok := container.LoggerProvider().(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}
	if provider.GetLogger("estate.test") == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}

func TestLoggerDisabledLeavesProviderUnset(t *testing.T) {
	container, err := NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if container.LoggerProvider() != nil {
		t.Fatalf("expected no logger provider, got %T", container.LoggerProvider())
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	container, err := NewContainer(sqliteConfig(t))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if err := container.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := container.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	if err := container.Provider().Start(context.Background()); !errors.Is(err, sitedata.ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}
}
