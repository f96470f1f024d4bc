package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ESTATE_"

// Load builds a Config from defaults, an optional YAML file at path and
// ESTATE_* environment variables, in that order. envFiles are loaded into the
// process environment first; missing env files are ignored.
func Load(path string, envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("estate config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("estate config: decode %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("estate config: load %s: %w", file, err)
		}
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	env := envReader{lookup: lookup}

	env.str("BACKEND_DRIVER", &cfg.Backend.Driver)
	env.str("BACKEND_DSN", &cfg.Backend.DSN)
	env.str("SUPABASE_URL", &cfg.Backend.Supabase.URL)
	env.str("SUPABASE_ANON_KEY", &cfg.Backend.Supabase.AnonKey)
	env.str("SUPABASE_SERVICE_KEY", &cfg.Backend.Supabase.ServiceKey)
	env.str("SUPABASE_BUCKET", &cfg.Backend.Supabase.Bucket)
	env.duration("BACKEND_TIMEOUT", &cfg.Backend.Timeout)

	env.str("JWT_SECRET", &cfg.Auth.JWTSecret)
	env.duration("TOKEN_TTL", &cfg.Auth.TokenTTL)

	env.str("STORAGE_PROVIDER", &cfg.Storage.Provider)
	env.str("STORAGE_LOCAL_DIR", &cfg.Storage.LocalDir)
	env.str("STORAGE_PUBLIC_BASE_URL", &cfg.Storage.PublicBaseURL)
	env.str("S3_BUCKET", &cfg.Storage.S3.Bucket)
	env.str("S3_REGION", &cfg.Storage.S3.Region)
	env.str("S3_ENDPOINT", &cfg.Storage.S3.Endpoint)
	env.str("S3_ACCESS_KEY_ID", &cfg.Storage.S3.AccessKeyID)
	env.str("S3_SECRET_ACCESS_KEY", &cfg.Storage.S3.SecretAccessKey)
	env.str("S3_PUBLIC_URL", &cfg.Storage.S3.PublicURL)

	env.int64("UPLOAD_MAX_BYTES", &cfg.Uploads.MaxBytes)
	env.list("UPLOAD_ALLOWED_TYPES", &cfg.Uploads.AllowedTypes)

	env.str("CONTENT_KEY", &cfg.Content.Key)
	env.boolean("CONTENT_ROLLBACK", &cfg.Content.RollbackOnFailure)

	env.boolean("CACHE_ENABLED", &cfg.Cache.Enabled)
	env.duration("CACHE_TTL", &cfg.Cache.TTL)

	env.duration("STARTUP_TIMEOUT", &cfg.Sync.StartupTimeout)
	env.str("REFRESH_SCHEDULE", &cfg.Sync.RefreshSchedule)
	env.str("SNAPSHOT_DIR", &cfg.Sync.SnapshotDir)

	env.str("LOG_PROVIDER", &cfg.Logging.Provider)
	env.str("LOG_LEVEL", &cfg.Logging.Level)
	env.str("LOG_FORMAT", &cfg.Logging.Format)
	env.list("LOG_FOCUS", &cfg.Logging.Focus)

	env.boolean("FEATURE_LOGGER", &cfg.Features.Logger)
	env.boolean("FEATURE_REPOSITORY_CACHE", &cfg.Features.RepositoryCache)
	env.boolean("FEATURE_OFFLINE_SNAPSHOT", &cfg.Features.OfflineSnapshot)
	env.boolean("FEATURE_SEED_ON_EMPTY", &cfg.Features.SeedOnEmpty)
	env.boolean("FEATURE_PERIODIC_REFRESH", &cfg.Features.PeriodicRefresh)

	return env.err
}

// envReader records the first malformed value it meets.
type envReader struct {
	lookup lookupFunc
	err    error
}

func (e *envReader) value(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	val, ok := e.lookup(EnvPrefix + key)
	if !ok || strings.TrimSpace(val) == "" {
		return "", false
	}
	return strings.TrimSpace(val), true
}

func (e *envReader) fail(key string, err error) {
	e.err = fmt.Errorf("estate config: %s%s: %w", EnvPrefix, key, err)
}

func (e *envReader) str(key string, dst *string) {
	if val, ok := e.value(key); ok {
		*dst = val
	}
}

func (e *envReader) list(key string, dst *[]string) {
	val, ok := e.value(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*dst = out
}

func (e *envReader) boolean(key string, dst *bool) {
	val, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = parsed
}

func (e *envReader) int64(key string, dst *int64) {
	val, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = parsed
}

func (e *envReader) duration(key string, dst *time.Duration) {
	val, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = parsed
}
