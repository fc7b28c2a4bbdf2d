package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
	Menu     MenuConfig
	Resolver ResolverConfig
	Session  SessionConfig
	Eval     EvalConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.DB.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Resolver.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VOICECART_APP_ENV" required:"true"`
	Port         string `envconfig:"VOICECART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VOICECART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VOICECART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"VOICECART_DB_DSN"`
	UseSQLite  bool   `envconfig:"VOICECART_USE_SQLITE" default:"false"`
	SQLitePath string `envconfig:"VOICECART_SQLITE_PATH" default:"voicecart.db"`

	LegacyHost     string `envconfig:"VOICECART_DB_HOST"`
	LegacyPort     int    `envconfig:"VOICECART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VOICECART_DB_USER"`
	LegacyPassword string `envconfig:"VOICECART_DB_PASSWORD"`
	LegacyName     string `envconfig:"VOICECART_DB_NAME"`
	LegacySSLMode  string `envconfig:"VOICECART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VOICECART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VOICECART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VOICECART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VOICECART_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"VOICECART_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VOICECART_REDIS_URL"`
	Address      string        `envconfig:"VOICECART_REDIS_ADDR"`
	Password     string        `envconfig:"VOICECART_REDIS_PASSWORD"`
	DB           int           `envconfig:"VOICECART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VOICECART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VOICECART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VOICECART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VOICECART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VOICECART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis connection was configured at all; the
// snapshot mirror is optional and the API runs without it.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type GCPConfig struct {
	ProjectID       string `envconfig:"VOICECART_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"VOICECART_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrderEventsTopic        string `envconfig:"VOICECART_PUBSUB_ORDER_EVENTS_TOPIC" default:"vc-order-events"`
	OrderEventsSubscription string `envconfig:"VOICECART_PUBSUB_ORDER_EVENTS_SUBSCRIPTION"`
}

type MenuConfig struct {
	// Name selects one of the built-in menus ("small" or "large") when
	// the catalog is seeded rather than loaded from the database.
	Name         string `envconfig:"VOICECART_MENU" default:"small"`
	LoadFromDB   bool   `envconfig:"VOICECART_MENU_FROM_DB" default:"false"`
	SeedDatabase bool   `envconfig:"VOICECART_MENU_SEED_DB" default:"false"`
}

type ResolverConfig struct {
	// MinConfidence is the fuzzy-match floor; candidates scoring below
	// it are treated as unresolved. Tuned against the evaluation
	// dataset rather than fixed.
	MinConfidence float64 `envconfig:"VOICECART_RESOLVER_MIN_CONFIDENCE" default:"0.6"`
	// ModifyBinding selects how a Modify with no quantity/modifier
	// target binds to a prior line: "last_added" or "last_category".
	ModifyBinding string `envconfig:"VOICECART_RESOLVER_MODIFY_BINDING" default:"last_added"`
}

const (
	ModifyBindLastAdded    = "last_added"
	ModifyBindLastCategory = "last_category"
)

func (r ResolverConfig) validate() error {
	if r.MinConfidence <= 0 || r.MinConfidence > 1 {
		return fmt.Errorf("resolver min confidence must be in (0, 1], got %v", r.MinConfidence)
	}
	switch r.ModifyBinding {
	case ModifyBindLastAdded, ModifyBindLastCategory:
		return nil
	}
	return fmt.Errorf("unknown modify binding policy %q", r.ModifyBinding)
}

type SessionConfig struct {
	TTL           time.Duration `envconfig:"VOICECART_SESSION_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"VOICECART_SESSION_SWEEP_INTERVAL" default:"5m"`
	SnapshotTTL   time.Duration `envconfig:"VOICECART_SESSION_SNAPSHOT_TTL" default:"1h"`
}

type EvalConfig struct {
	DatasetPath string `envconfig:"VOICECART_EVAL_DATASET"`
	// AccuracyGate is the exact-match rate below which the evaluate
	// binary exits non-zero.
	AccuracyGate float64 `envconfig:"VOICECART_EVAL_ACCURACY_GATE" default:"1.0"`
	Parallelism  int     `envconfig:"VOICECART_EVAL_PARALLELISM" default:"4"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
