package config

// EnvPrefix is handed to envconfig; individual fields carry explicit names so
// the prefix only matters for nested overrides.
const EnvPrefix = "ABARROTE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, tooling).
const (
	EnvAppEnv      = "ABARROTE_APP_ENV"
	EnvPort        = "ABARROTE_APP_PORT"
	EnvStoreID     = "ABARROTE_STORE_ID"
	EnvRemoteDBDSN = "ABARROTE_REMOTE_DB_DSN"
	EnvLocalDBPath = "ABARROTE_LOCAL_DB_PATH"
	EnvRedisURL    = "ABARROTE_REDIS_URL"
	EnvJWTSecret   = "ABARROTE_JWT_SECRET"
	EnvJWTIssuer   = "ABARROTE_JWT_ISSUER"
)
