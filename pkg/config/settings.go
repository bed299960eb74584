package config

const (
	EnvPrefix = "STOCKROOM"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "STOCKROOM_APP_ENV"
	EnvPort       = "STOCKROOM_APP_PORT"
	EnvRedisURL   = "STOCKROOM_REDIS_URL"
	EnvAuthPepper = "STOCKROOM_AUTH_PEPPER"

	EnvDBDSN  = "STOCKROOM_DB_DSN"
	EnvDBHost = "STOCKROOM_DB_HOST"
	EnvDBUser = "STOCKROOM_DB_USER"
	EnvDBName = "STOCKROOM_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
