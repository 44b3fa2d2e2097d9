package config

const (
	EnvPrefix = "MERKO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "MERKO_APP_ENV"
	EnvPort      = "MERKO_APP_PORT"
	EnvDBDSN     = "MERKO_DB_DSN"
	EnvDBHost    = "MERKO_DB_HOST"
	EnvDBUser    = "MERKO_DB_USER"
	EnvDBName    = "MERKO_DB_NAME"
	EnvDBPass    = "MERKO_DB_PASSWORD"
	EnvRedisURL  = "MERKO_REDIS_URL"
	EnvJWTSecret = "MERKO_JWT_SECRET"
	EnvCronSched = "MERKO_CRON_SCHEDULE"
)

var dsnPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
