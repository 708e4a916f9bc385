package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Transfers    TransfersConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.DB.validateDriver(); err != nil {
		return nil, err
	}
	if _, err := cfg.Transfers.CodeLocation(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRAILOPS_APP_ENV" required:"true"`
	Port         string `envconfig:"TRAILOPS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TRAILOPS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRAILOPS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TRAILOPS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TRAILOPS_DB_DSN"`
	Driver string `envconfig:"TRAILOPS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRAILOPS_DB_HOST"`
	LegacyPort     int    `envconfig:"TRAILOPS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRAILOPS_DB_USER"`
	LegacyPassword string `envconfig:"TRAILOPS_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRAILOPS_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRAILOPS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRAILOPS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRAILOPS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRAILOPS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRAILOPS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite dialector should be used instead of postgres.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"TRAILOPS_REDIS_URL"`
	Address      string        `envconfig:"TRAILOPS_REDIS_ADDR"`
	Password     string        `envconfig:"TRAILOPS_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRAILOPS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRAILOPS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRAILOPS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRAILOPS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRAILOPS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRAILOPS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TRAILOPS_AUTO_MIGRATE" default:"false"`
}

type TransfersConfig struct {
	CodePrefix     string        `envconfig:"TRAILOPS_TRANSFER_CODE_PREFIX" default:"TRF"`
	MaxLines       int           `envconfig:"TRAILOPS_TRANSFER_MAX_LINES" default:"200"`
	IdempotencyTTL time.Duration `envconfig:"TRAILOPS_TRANSFER_IDEMPOTENCY_TTL" default:"24h"`
	CodeTimeZone   string        `envconfig:"TRAILOPS_TRANSFER_CODE_TZ" default:"UTC"`
}

// CodeLocation resolves the zone whose calendar day stamps transfer codes.
func (t TransfersConfig) CodeLocation() (*time.Location, error) {
	name := strings.TrimSpace(t.CodeTimeZone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvTransferCodeTZ, err)
	}
	return loc, nil
}

type GCPConfig struct {
	ProjectID string `envconfig:"TRAILOPS_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	TransfersTopic string `envconfig:"TRAILOPS_PUBSUB_TRANSFERS_TOPIC" default:"trailops-transfer-events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"TRAILOPS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"TRAILOPS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"TRAILOPS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	ClaimTTL       time.Duration `envconfig:"TRAILOPS_OUTBOX_CLAIM_TTL" default:"24h"`

	// MetricsPort exposes /metrics for the publisher; empty disables it.
	MetricsPort string `envconfig:"TRAILOPS_OUTBOX_METRICS_PORT" default:"9090"`
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

func (db *DBConfig) validateDriver() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DriverPostgres, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvDBDriver, DriverPostgres, DriverSQLite, db.Driver)
	}
}
