package estate

import "github.com/goliatone/go-estate/internal/runtimeconfig"

var (
	ErrBackendDriverUnknown         = runtimeconfig.ErrBackendDriverUnknown
	ErrBackendDSNRequired           = runtimeconfig.ErrBackendDSNRequired
	ErrSupabaseURLRequired          = runtimeconfig.ErrSupabaseURLRequired
	ErrSupabaseKeyRequired          = runtimeconfig.ErrSupabaseKeyRequired
	ErrAuthSecretRequired           = runtimeconfig.ErrAuthSecretRequired
	ErrStorageProviderUnknown       = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageBucketRequired        = runtimeconfig.ErrStorageBucketRequired
	ErrRepositoryCacheRequiresCache = runtimeconfig.ErrRepositoryCacheRequiresCache
	ErrSnapshotDirRequired          = runtimeconfig.ErrSnapshotDirRequired
	ErrRefreshScheduleInvalid       = runtimeconfig.ErrRefreshScheduleInvalid
	ErrLoggingProviderUnknown       = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	BackendConfig  = runtimeconfig.BackendConfig
	SupabaseConfig = runtimeconfig.SupabaseConfig
	AuthConfig     = runtimeconfig.AuthConfig
	StorageConfig  = runtimeconfig.StorageConfig
	S3Config       = runtimeconfig.S3Config
	UploadsConfig  = runtimeconfig.UploadsConfig
	ContentConfig  = runtimeconfig.ContentConfig
	CacheConfig    = runtimeconfig.CacheConfig
	SyncConfig     = runtimeconfig.SyncConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	Features       = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads defaults, an optional YAML file and ESTATE_* overrides.
func LoadConfig(path string, envFiles ...string) (Config, error) {
	return runtimeconfig.Load(path, envFiles...)
}
