package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Routing      RoutingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MERKO_APP_ENV" required:"true"`
	Port         string `envconfig:"MERKO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MERKO_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"MERKO_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"MERKO_LOG_WARN_STACK" default:"false"`
	// MetricsAddr is where background workers expose /metrics. Empty disables it.
	MetricsAddr string `envconfig:"MERKO_METRICS_ADDR"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MERKO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"MERKO_DB_DSN"`

	Host     string `envconfig:"MERKO_DB_HOST"`
	Port     int    `envconfig:"MERKO_DB_PORT" default:"5432"`
	User     string `envconfig:"MERKO_DB_USER"`
	Password string `envconfig:"MERKO_DB_PASSWORD"`
	Name     string `envconfig:"MERKO_DB_NAME"`
	SSLMode  string `envconfig:"MERKO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MERKO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MERKO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MERKO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MERKO_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"MERKO_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MERKO_REDIS_URL"`
	Address      string        `envconfig:"MERKO_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"MERKO_REDIS_PASSWORD"`
	DB           int           `envconfig:"MERKO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MERKO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MERKO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MERKO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MERKO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MERKO_REDIS_WRITE_TIMEOUT" default:"5s"`

	IdempotencyTTL time.Duration `envconfig:"MERKO_REDIS_IDEMPOTENCY_TTL" default:"24h"`
	RouteLockTTL   time.Duration `envconfig:"MERKO_REDIS_ROUTE_LOCK_TTL" default:"30s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MERKO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MERKO_JWT_ISSUER" default:"merko"`
	ExpirationMinutes int    `envconfig:"MERKO_JWT_EXPIRATION_MINUTES" default:"60"`
	// Leeway tolerates clock skew between the issuer and this service.
	Leeway time.Duration `envconfig:"MERKO_JWT_LEEWAY" default:"30s"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MERKO_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type RateLimitConfig struct {
	CheckoutWindow time.Duration `envconfig:"MERKO_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutLimit  int           `envconfig:"MERKO_RATE_LIMIT_CHECKOUT_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MERKO_AUTO_MIGRATE" default:"false"`
}

type RoutingConfig struct {
	Origin      string        `envconfig:"MERKO_ROUTING_ORIGIN" default:"Distribution Center"`
	StopSpacing time.Duration `envconfig:"MERKO_ROUTING_STOP_SPACING" default:"15m"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"MERKO_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic string `envconfig:"MERKO_PUBSUB_DOMAIN_TOPIC" default:"merko-domain-events"`
	// Ordering publishes with the aggregate as ordering key so events about
	// one order arrive in the order they were written.
	Ordering bool `envconfig:"MERKO_PUBSUB_ORDERING" default:"true"`
	// CreateTopic creates a missing domain topic at boot instead of failing.
	CreateTopic  bool   `envconfig:"MERKO_PUBSUB_CREATE_TOPIC" default:"false"`
	EmulatorHost string `envconfig:"MERKO_PUBSUB_EMULATOR_HOST"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MERKO_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MERKO_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MERKO_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"MERKO_OUTBOX_RETENTION_DAYS" default:"30"`

	PublishGuardTTL time.Duration `envconfig:"MERKO_OUTBOX_PUBLISH_GUARD_TTL" default:"168h"`
}

type CronConfig struct {
	Schedule         string        `envconfig:"MERKO_CRON_SCHEDULE" default:"@every 1h"`
	LockTTL          time.Duration `envconfig:"MERKO_CRON_LOCK_TTL" default:"10m"`
	CartAbandonAfter time.Duration `envconfig:"MERKO_CRON_CART_ABANDON_AFTER" default:"72h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dsnPartEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
