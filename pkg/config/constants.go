package config

const (
	EnvPrefix = "BOOKSTORE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "BOOKSTORE_APP_ENV"
	EnvPort       = "BOOKSTORE_APP_PORT"
	EnvDBDSN      = "BOOKSTORE_DB_DSN"
	EnvDBHost     = "BOOKSTORE_DB_HOST"
	EnvDBUser     = "BOOKSTORE_DB_USER"
	EnvDBName     = "BOOKSTORE_DB_NAME"
	EnvRedisURL   = "BOOKSTORE_REDIS_URL"
	EnvJWTSecret  = "BOOKSTORE_JWT_SECRET"
	EnvJWTIssuer  = "BOOKSTORE_JWT_ISSUER"
	EnvJWTExpMins = "BOOKSTORE_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
