package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "TRAILOPS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "TRAILOPS_APP_ENV"
	EnvPort     = "TRAILOPS_APP_PORT"
	EnvLogLevel = "TRAILOPS_LOG_LEVEL"

	EnvDBDSN    = "TRAILOPS_DB_DSN"
	EnvDBDriver = "TRAILOPS_DB_DRIVER"
	EnvDBHost   = "TRAILOPS_DB_HOST"
	EnvDBPort   = "TRAILOPS_DB_PORT"
	EnvDBUser   = "TRAILOPS_DB_USER"
	EnvDBPass   = "TRAILOPS_DB_PASSWORD"
	EnvDBName   = "TRAILOPS_DB_NAME"

	EnvRedisURL = "TRAILOPS_REDIS_URL"

	EnvTransferCodePrefix = "TRAILOPS_TRANSFER_CODE_PREFIX"
	EnvTransferMaxLines   = "TRAILOPS_TRANSFER_MAX_LINES"
	EnvTransferCodeTZ     = "TRAILOPS_TRANSFER_CODE_TZ"

	EnvGCPProjectID         = "TRAILOPS_GCP_PROJECT_ID"
	EnvPubSubTransfersTopic = "TRAILOPS_PUBSUB_TRANSFERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
