package config

const (
	EnvPrefix = "GASPOS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"

	EnvAppEnv         = "GASPOS_APP_ENV"
	EnvPort           = "GASPOS_APP_PORT"
	EnvDBDriver       = "GASPOS_DB_DRIVER"
	EnvDBDSN          = "GASPOS_DB_DSN"
	EnvDBPath         = "GASPOS_DB_PATH"
	EnvDBHost         = "GASPOS_DB_HOST"
	EnvDBUser         = "GASPOS_DB_USER"
	EnvDBName         = "GASPOS_DB_NAME"
	EnvRedisURL       = "GASPOS_REDIS_URL"
	EnvBackendBaseURL = "GASPOS_BACKEND_BASE_URL"
	EnvDraftTTL       = "GASPOS_DRAFT_TTL"
	EnvSyncInterval   = "GASPOS_SYNC_INTERVAL"
	EnvAssetsAuth     = "GASPOS_ASSETS_AUTH_PATHS"
)

var postgresDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
