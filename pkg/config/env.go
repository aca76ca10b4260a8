package config

const EnvPrefix = "PRICINGDEF"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv        = "PRICINGDEF_APP_ENV"
	EnvPort          = "PRICINGDEF_APP_PORT"
	EnvLogLevel      = "PRICINGDEF_LOG_LEVEL"
	EnvDBDSN         = "PRICINGDEF_DB_DSN"
	EnvDBDriver      = "PRICINGDEF_DB_DRIVER"
	EnvRedisURL      = "PRICINGDEF_REDIS_URL"
	EnvSetupFile     = "PRICINGDEF_SETUP_FILE"
	EnvDefinitionTTL = "PRICINGDEF_DEFINITION_CACHE_TTL"
	EnvTimezone      = "PRICINGDEF_TIMEZONE"
	EnvAutoMigrate   = "PRICINGDEF_AUTO_MIGRATE"
)
