package config

// EnvPrefix is passed to envconfig; individual fields carry fully
// qualified names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared between Load and tests.
const (
	EnvAppEnv   = "VOICECART_APP_ENV"
	EnvPort     = "VOICECART_APP_PORT"
	EnvLogLevel = "VOICECART_LOG_LEVEL"

	EnvDBDSN      = "VOICECART_DB_DSN"
	EnvDBHost     = "VOICECART_DB_HOST"
	EnvDBUser     = "VOICECART_DB_USER"
	EnvDBName     = "VOICECART_DB_NAME"
	EnvUseSQLite  = "VOICECART_USE_SQLITE"
	EnvSQLitePath = "VOICECART_SQLITE_PATH"

	EnvRedisURL = "VOICECART_REDIS_URL"

	EnvGCPProjectID     = "VOICECART_GCP_PROJECT_ID"
	EnvPubSubTopic      = "VOICECART_PUBSUB_ORDER_EVENTS_TOPIC"
	EnvPubSubSub        = "VOICECART_PUBSUB_ORDER_EVENTS_SUBSCRIPTION"
	EnvMenuName         = "VOICECART_MENU"
	EnvResolverMinConf  = "VOICECART_RESOLVER_MIN_CONFIDENCE"
	EnvModifyBinding    = "VOICECART_RESOLVER_MODIFY_BINDING"
	EnvSessionTTL       = "VOICECART_SESSION_TTL"
	EnvSessionSweep     = "VOICECART_SESSION_SWEEP_INTERVAL"
	EnvEvalDatasetPath  = "VOICECART_EVAL_DATASET"
	EnvEvalAccuracyGate = "VOICECART_EVAL_ACCURACY_GATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
