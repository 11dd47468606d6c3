package config

const EnvPrefix = "GYMDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	ActivityBrokerNone     = "none"
	ActivityBrokerPubSub   = "pubsub"
	ActivityBrokerRabbitMQ = "rabbitmq"
)

const (
	EnvAppEnv         = "GYMDESK_APP_ENV"
	EnvPort           = "GYMDESK_APP_PORT"
	EnvDBDSN          = "GYMDESK_DB_DSN"
	EnvDBHost         = "GYMDESK_DB_HOST"
	EnvDBUser         = "GYMDESK_DB_USER"
	EnvDBName         = "GYMDESK_DB_NAME"
	EnvRedisURL       = "GYMDESK_REDIS_URL"
	EnvJWTSecret      = "GYMDESK_JWT_SECRET"
	EnvJWTIssuer      = "GYMDESK_JWT_ISSUER"
	EnvUseSQLite      = "GYMDESK_USE_SQLITE"
	EnvUseMemory      = "GYMDESK_USE_MEMORY_STORE"
	EnvActivityBroker = "GYMDESK_ACTIVITY_BROKER"
	EnvCreatePadding  = "GYMDESK_MEMBERSHIP_CREATE_PADDING_DAYS"
	EnvVerifyPadding  = "GYMDESK_MEMBERSHIP_VERIFY_PADDING_DAYS"
	EnvReceiptURLMax  = "GYMDESK_RECEIPT_URL_MAX_LEN"
)

// MaxReceiptURLLen matches the payments.receipt_url column width.
const MaxReceiptURLLen = 500

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
