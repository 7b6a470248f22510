package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix  = "ORDERBOOK"
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Admin        AdminConfig
	Pin          PinConfig
	Catalog      CatalogConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Admin.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORDERBOOK_APP_ENV" default:"dev"`
	Port         string `envconfig:"ORDERBOOK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ORDERBOOK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDERBOOK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ORDERBOOK_DB_DSN"`
	Driver string `envconfig:"ORDERBOOK_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"ORDERBOOK_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"ORDERBOOK_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERBOOK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERBOOK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	ConnectRetries  uint64        `envconfig:"ORDERBOOK_DB_CONNECT_RETRIES" default:"5"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERBOOK_REDIS_URL"`
	Address      string        `envconfig:"ORDERBOOK_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERBOOK_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERBOOK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERBOOK_REDIS_POOL_SIZE" default:"5"`
	DialTimeout  time.Duration `envconfig:"ORDERBOOK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERBOOK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERBOOK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	// IdleTTL is the sliding window an admin session stays alive without
	// activity. Each authenticated request renews it.
	IdleTTL      time.Duration `envconfig:"ORDERBOOK_SESSION_IDLE_TTL" default:"30m"`
	CookieName   string        `envconfig:"ORDERBOOK_SESSION_COOKIE" default:"orderbook_session"`
	CookieSecure bool          `envconfig:"ORDERBOOK_SESSION_COOKIE_SECURE" default:"false"`
	JWTSecret    string        `envconfig:"ORDERBOOK_SESSION_JWT_SECRET" required:"true"`
	JWTIssuer    string        `envconfig:"ORDERBOOK_SESSION_JWT_ISSUER" default:"orderbook"`
	// TokenTTL bounds the cookie token itself. The redis-side idle TTL is
	// what expires a quiet session.
	TokenTTL time.Duration `envconfig:"ORDERBOOK_SESSION_TOKEN_TTL" default:"12h"`
}

type AdminConfig struct {
	// Phones is the allow-list of admin phone numbers.
	Phones   []string `envconfig:"ORDERBOOK_ADMIN_PHONES"`
	Password string   `envconfig:"ORDERBOOK_ADMIN_PASSWORD" required:"true"`
}

func (a AdminConfig) validate() error {
	if len(a.Phones) == 0 {
		return fmt.Errorf("at least one admin phone is required")
	}
	return nil
}

// Allowed reports whether phone is on the admin allow-list.
func (a AdminConfig) Allowed(phone string) bool {
	for _, p := range a.Phones {
		if strings.TrimSpace(p) == phone {
			return true
		}
	}
	return false
}

type PinConfig struct {
	ArgonMemoryKB    int `envconfig:"ORDERBOOK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ORDERBOOK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ORDERBOOK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ORDERBOOK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ORDERBOOK_ARGON_KEY_LEN" default:"32"`
}

// CatalogConfig carries the per-item default unit prices. The persisted
// override table wins over these at runtime.
type CatalogConfig struct {
	PriceCow    float64 `envconfig:"ORDERBOOK_PRICE_COW" default:"4.5"`
	PriceGoat   float64 `envconfig:"ORDERBOOK_PRICE_GOAT" default:"9.0"`
	PriceDhOff  float64 `envconfig:"ORDERBOOK_PRICE_DH_OFF" default:"9.0"`
	PriceDhOn   float64 `envconfig:"ORDERBOOK_PRICE_DH_ON" default:"8.0"`
	PriceYh     float64 `envconfig:"ORDERBOOK_PRICE_YH" default:"17.0"`
	PriceR      float64 `envconfig:"ORDERBOOK_PRICE_R" default:"17.0"`
	PriceB      float64 `envconfig:"ORDERBOOK_PRICE_B" default:"15.0"`
	PriceDuck   float64 `envconfig:"ORDERBOOK_PRICE_DUCK" default:"20.0"`
	PriceQuail  float64 `envconfig:"ORDERBOOK_PRICE_QUAIL" default:"6.0"`
	PriceTurkey float64 `envconfig:"ORDERBOOK_PRICE_TURKEY" default:"70.0"`
	PriceEgg    float64 `envconfig:"ORDERBOOK_PRICE_EGG" default:"6.0"`

	PriceCowShare float64 `envconfig:"ORDERBOOK_PRICE_COW_SHARE" default:"650.0"`
	PriceGoatFull float64 `envconfig:"ORDERBOOK_PRICE_GOAT_FULL" default:"450.0"`
	PriceLamb     float64 `envconfig:"ORDERBOOK_PRICE_LAMB" default:"400.0"`
}

type FeatureFlagsConfig struct {
	// RequirePin gates repeat submissions behind a 4-digit PIN.
	RequirePin  bool `envconfig:"ORDERBOOK_REQUIRE_PIN" default:"false"`
	UseSQLite   bool `envconfig:"ORDERBOOK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ORDERBOOK_AUTO_MIGRATE" default:"false"`
}
