package estate_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-estate"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := estate.DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestConfigValidateSQLDriverNeedsDSN(t *testing.T) {
	cfg := estate.DefaultConfig()
	cfg.Backend.Driver = "postgres"

	if err := cfg.Validate(); !errors.Is(err, estate.ErrBackendDSNRequired) {
		t.Fatalf("expected ErrBackendDSNRequired, got %v", err)
	}
}

func TestConfigValidateRepositoryCacheRequiresCache(t *testing.T) {
	cfg := estate.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Features.RepositoryCache = true

	if err := cfg.Validate(); !errors.Is(err, estate.ErrRepositoryCacheRequiresCache) {
		t.Fatalf("expected ErrRepositoryCacheRequiresCache, got %v", err)
	}
}

func TestConfigValidateSnapshotNeedsDirectory(t *testing.T) {
	cfg := estate.DefaultConfig()
	cfg.Features.OfflineSnapshot = true

	if err := cfg.Validate(); !errors.Is(err, estate.ErrSnapshotDirRequired) {
		t.Fatalf("expected ErrSnapshotDirRequired, got %v", err)
	}
}

func TestConfigValidateRefreshSchedule(t *testing.T) {
	cfg := estate.DefaultConfig()
	cfg.Features.PeriodicRefresh = true
	cfg.Sync.RefreshSchedule = "every now and then"

	if err := cfg.Validate(); !errors.Is(err, estate.ErrRefreshScheduleInvalid) {
		t.Fatalf("expected ErrRefreshScheduleInvalid, got %v", err)
	}
}

func TestConfigValidateSupabaseNeedsKey(t *testing.T) {
	cfg := estate.DefaultConfig()
	cfg.Backend.Driver = "supabase"
	cfg.Backend.Supabase.URL = "https://project.supabase.co"

	if err := cfg.Validate(); !errors.Is(err, estate.ErrSupabaseKeyRequired) {
		t.Fatalf("expected ErrSupabaseKeyRequired, got %v", err)
	}
}
