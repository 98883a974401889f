package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	Store      StoreConfig
	RemoteDB   RemoteDBConfig
	LocalDB    LocalDBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Cart       CartConfig
	Promotions PromotionsConfig
	Sync       SyncConfig
	Tax        TaxConfig
	Flags      FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ABARROTE_APP_ENV" required:"true"`
	Port         string `envconfig:"ABARROTE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ABARROTE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ABARROTE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig identifies the physical store and till this instance runs for.
type StoreConfig struct {
	StoreID    string `envconfig:"ABARROTE_STORE_ID" required:"true"`
	TerminalID string `envconfig:"ABARROTE_TERMINAL_ID" default:"till-1"`
}

// RemoteDBConfig points at the remote system of record (Postgres).
type RemoteDBConfig struct {
	DSN             string        `envconfig:"ABARROTE_REMOTE_DB_DSN" required:"true"`
	MaxOpenConns    int           `envconfig:"ABARROTE_REMOTE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"ABARROTE_REMOTE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"ABARROTE_REMOTE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ABARROTE_REMOTE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// LocalDBConfig points at the on-disk SQLite store that backs the offline
// durability queue. The file is created lazily on first use.
type LocalDBConfig struct {
	Path string `envconfig:"ABARROTE_LOCAL_DB_PATH" default:"abarrote-local.db"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ABARROTE_REDIS_URL"`
	Address      string        `envconfig:"ABARROTE_REDIS_ADDR"`
	Password     string        `envconfig:"ABARROTE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ABARROTE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ABARROTE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ABARROTE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ABARROTE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ABARROTE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ABARROTE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ABARROTE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ABARROTE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ABARROTE_JWT_EXPIRATION_MINUTES" default:"720"`
}

// CartConfig tunes the offer recomputation debounce windows.
type CartConfig struct {
	AddDebounce  time.Duration `envconfig:"ABARROTE_CART_ADD_DEBOUNCE" default:"300ms"`
	EditDebounce time.Duration `envconfig:"ABARROTE_CART_EDIT_DEBOUNCE" default:"150ms"`
}

type PromotionsConfig struct {
	SnapshotTTL time.Duration `envconfig:"ABARROTE_PROMO_SNAPSHOT_TTL" default:"168h"`
}

type SyncConfig struct {
	Interval      time.Duration `envconfig:"ABARROTE_SYNC_INTERVAL" default:"30s"`
	ProbeInterval time.Duration `envconfig:"ABARROTE_SYNC_PROBE_INTERVAL" default:"10s"`
	WriteTimeout  time.Duration `envconfig:"ABARROTE_SYNC_WRITE_TIMEOUT" default:"15s"`
	MetricsPort   string        `envconfig:"ABARROTE_SYNC_METRICS_PORT" default:"9109"`
}

// TaxConfig parameterizes the threshold tax table consumed by settlement.
type TaxConfig struct {
	RatePercent float64 `envconfig:"ABARROTE_TAX_RATE_PERCENT" default:"16"`
	ExemptBelow float64 `envconfig:"ABARROTE_TAX_EXEMPT_BELOW" default:"0"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ABARROTE_AUTO_MIGRATE" default:"false"`
}
