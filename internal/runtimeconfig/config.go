package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	ErrBackendDriverUnknown         = errors.New("estate config: backend driver is invalid")
	ErrBackendDSNRequired           = errors.New("estate config: backend dsn is required for sql drivers")
	ErrSupabaseURLRequired          = errors.New("estate config: supabase url is required")
	ErrSupabaseKeyRequired          = errors.New("estate config: supabase anon or service key is required")
	ErrAuthSecretRequired           = errors.New("estate config: auth jwt secret is required for sql drivers")
	ErrAuthTokenTTLInvalid          = errors.New("estate config: auth token ttl must be positive")
	ErrStorageProviderUnknown       = errors.New("estate config: storage provider is invalid")
	ErrStorageBucketRequired        = errors.New("estate config: storage bucket is required")
	ErrStorageDirRequired           = errors.New("estate config: local storage directory is required")
	ErrUploadLimitInvalid           = errors.New("estate config: upload size limit must be positive")
	ErrUploadTypesRequired          = errors.New("estate config: at least one upload mime type is required")
	ErrContentKeyRequired           = errors.New("estate config: content singleton key is required")
	ErrRepositoryCacheRequiresCache = errors.New("estate config: repository cache feature requires cache to be enabled")
	ErrSnapshotDirRequired          = errors.New("estate config: offline snapshot feature requires a snapshot directory")
	ErrRefreshScheduleInvalid       = errors.New("estate config: refresh schedule is not a valid cron expression")
	ErrLoggingProviderUnknown       = errors.New("estate config: logging provider is invalid")
	ErrLoggingLevelInvalid          = errors.New("estate config: logging level is invalid")
	ErrLoggingFormatInvalid         = errors.New("estate config: logging format is invalid")
	ErrSupabaseStorageNeedsSupabase = errors.New("estate config: supabase storage requires supabase settings")
	ErrStartupTimeoutInvalid        = errors.New("estate config: startup timeout must be zero or positive")
)

// Config aggregates backend bindings and behaviour toggles for the data layer.
type Config struct {
	Backend  BackendConfig `yaml:"backend"`
	Auth     AuthConfig    `yaml:"auth"`
	Storage  StorageConfig `yaml:"storage"`
	Uploads  UploadsConfig `yaml:"uploads"`
	Content  ContentConfig `yaml:"content"`
	Cache    CacheConfig   `yaml:"cache"`
	Sync     SyncConfig    `yaml:"sync"`
	Logging  LoggingConfig `yaml:"logging"`
	Features Features      `yaml:"features"`
}

// BackendConfig selects the remote backend. Driver is one of memory, sqlite,
// postgres or supabase.
type BackendConfig struct {
	Driver   string         `yaml:"driver"`
	DSN      string         `yaml:"dsn"`
	Timeout  time.Duration  `yaml:"timeout"`
	Supabase SupabaseConfig `yaml:"supabase"`
}

// SupabaseConfig holds the hosted project coordinates.
type SupabaseConfig struct {
	URL        string `yaml:"url"`
	AnonKey    string `yaml:"anon_key"`
	ServiceKey string `yaml:"service_key"`
	Bucket     string `yaml:"bucket"`
}

// AuthConfig configures the SQL auth backend.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// StorageConfig selects the blob bucket. Provider is one of memory, local, s3
// or supabase.
type StorageConfig struct {
	Provider      string   `yaml:"provider"`
	LocalDir      string   `yaml:"local_dir"`
	PublicBaseURL string   `yaml:"public_base_url"`
	S3            S3Config `yaml:"s3"`
}

// S3Config holds S3 compatible bucket settings.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicURL       string `yaml:"public_url"`
}

// UploadsConfig bounds media uploads.
type UploadsConfig struct {
	MaxBytes     int64    `yaml:"max_bytes"`
	AllowedTypes []string `yaml:"allowed_types"`
}

// ContentConfig controls the site content singleton.
type ContentConfig struct {
	Key               string `yaml:"key"`
	RollbackOnFailure bool   `yaml:"rollback_on_failure"`
}

// CacheConfig controls the read-through repository cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// SyncConfig controls provider startup and background refresh.
type SyncConfig struct {
	StartupTimeout  time.Duration `yaml:"startup_timeout"`
	RefreshSchedule string        `yaml:"refresh_schedule"`
	SnapshotDir     string        `yaml:"snapshot_dir"`
}

// LoggingConfig captures provider options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// Features toggles optional behaviour.
type Features struct {
	Logger          bool `yaml:"logger"`
	RepositoryCache bool `yaml:"repository_cache"`
	OfflineSnapshot bool `yaml:"offline_snapshot"`
	SeedOnEmpty     bool `yaml:"seed_on_empty"`
	PeriodicRefresh bool `yaml:"periodic_refresh"`
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverSupabase = "supabase"

	StorageMemory   = "memory"
	StorageLocal    = "local"
	StorageS3       = "s3"
	StorageSupabase = "supabase"

	DefaultContentKey     = "site"
	DefaultUploadMaxBytes = 10 << 20
)

// DefaultUploadTypes lists the MIME types accepted for uploads.
func DefaultUploadTypes() []string {
	return []string{"image/jpeg", "image/png", "image/webp", "image/gif", "video/mp4"}
}

// DefaultConfig returns an in-memory configuration suitable for development.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			Driver:  DriverMemory,
			Timeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			Issuer:   "go-estate",
			TokenTTL: 12 * time.Hour,
		},
		Storage: StorageConfig{
			Provider: StorageMemory,
		},
		Uploads: UploadsConfig{
			MaxBytes:     DefaultUploadMaxBytes,
			AllowedTypes: DefaultUploadTypes(),
		},
		Content: ContentConfig{
			Key: DefaultContentKey,
		},
		Cache: CacheConfig{
			TTL: time.Minute,
		},
		Sync: SyncConfig{
			StartupTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
	}
}

// Validate performs consistency checks across sections.
func (cfg Config) Validate() error {
	driver := normalize(cfg.Backend.Driver)
	switch driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(cfg.Backend.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrBackendDSNRequired, driver)
		}
		if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
			return ErrAuthSecretRequired
		}
		if cfg.Auth.TokenTTL <= 0 {
			return ErrAuthTokenTTLInvalid
		}
	case DriverSupabase:
		if err := cfg.Backend.Supabase.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrBackendDriverUnknown, cfg.Backend.Driver)
	}

	switch provider := normalize(cfg.Storage.Provider); provider {
	case StorageMemory:
	case StorageLocal:
		if strings.TrimSpace(cfg.Storage.LocalDir) == "" {
			return ErrStorageDirRequired
		}
	case StorageS3:
		if strings.TrimSpace(cfg.Storage.S3.Bucket) == "" {
			return fmt.Errorf("%w: s3", ErrStorageBucketRequired)
		}
	case StorageSupabase:
		if err := cfg.Backend.Supabase.validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrSupabaseStorageNeedsSupabase, err)
		}
		if strings.TrimSpace(cfg.Backend.Supabase.Bucket) == "" {
			return fmt.Errorf("%w: supabase", ErrStorageBucketRequired)
		}
	default:
		return fmt.Errorf("%w: %q", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Uploads.MaxBytes <= 0 {
		return ErrUploadLimitInvalid
	}
	if len(cfg.Uploads.AllowedTypes) == 0 {
		return ErrUploadTypesRequired
	}
	if strings.TrimSpace(cfg.Content.Key) == "" {
		return ErrContentKeyRequired
	}
	if cfg.Features.RepositoryCache && !cfg.Cache.Enabled {
		return ErrRepositoryCacheRequiresCache
	}
	if cfg.Features.OfflineSnapshot && strings.TrimSpace(cfg.Sync.SnapshotDir) == "" {
		return ErrSnapshotDirRequired
	}
	if cfg.Sync.StartupTimeout < 0 {
		return ErrStartupTimeoutInvalid
	}
	if cfg.Features.PeriodicRefresh {
		if _, err := cron.ParseStandard(cfg.Sync.RefreshSchedule); err != nil {
			return fmt.Errorf("%w: %v", ErrRefreshScheduleInvalid, err)
		}
	}
	if cfg.Features.Logger {
		if err := cfg.Logging.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s SupabaseConfig) validate() error {
	if strings.TrimSpace(s.URL) == "" {
		return ErrSupabaseURLRequired
	}
	if strings.TrimSpace(s.AnonKey) == "" && strings.TrimSpace(s.ServiceKey) == "" {
		return ErrSupabaseKeyRequired
	}
	return nil
}

func (l LoggingConfig) validate() error {
	switch normalize(l.Provider) {
	case "gologger", "none":
	default:
		return fmt.Errorf("%w: %q", ErrLoggingProviderUnknown, l.Provider)
	}
	switch normalize(l.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, l.Level)
	}
	switch normalize(l.Format) {
	case "", "json", "console", "pretty":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, l.Format)
	}
	return nil
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
