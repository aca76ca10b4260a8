package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Pricing      PricingConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Pricing.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PRICINGDEF_APP_ENV" required:"true"`
	Port         string `envconfig:"PRICINGDEF_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PRICINGDEF_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRICINGDEF_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PRICINGDEF_DB_DSN" required:"true"`
	Driver string `envconfig:"PRICINGDEF_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"PRICINGDEF_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRICINGDEF_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRICINGDEF_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRICINGDEF_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

func (db DBConfig) validate() error {
	switch strings.ToLower(db.Driver) {
	case DriverPostgres, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("%s must be one of %s, %s (got %q)", EnvDBDriver, DriverPostgres, DriverSQLite, db.Driver)
	}
}

// RedisConfig is optional; an empty URL and address disables the definitions cache.
type RedisConfig struct {
	URL          string        `envconfig:"PRICINGDEF_REDIS_URL"`
	Address      string        `envconfig:"PRICINGDEF_REDIS_ADDR"`
	Password     string        `envconfig:"PRICINGDEF_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRICINGDEF_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRICINGDEF_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRICINGDEF_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRICINGDEF_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRICINGDEF_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRICINGDEF_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type PricingConfig struct {
	SetupFile          string        `envconfig:"PRICINGDEF_SETUP_FILE" default:"config/pricing.yaml"`
	DefinitionCacheTTL time.Duration `envconfig:"PRICINGDEF_DEFINITION_CACHE_TTL" default:"5m"`
	Timezone           string        `envconfig:"PRICINGDEF_TIMEZONE" default:"UTC"`
}

// Location resolves the timezone used to decide what "today" is for quotes.
func (p PricingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvTimezone, err)
	}
	return loc, nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PRICINGDEF_AUTO_MIGRATE" default:"false"`
}
