package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	MailDeliveryLog   = "log"
	MailDeliverySMTP  = "smtp"
	MailDeliveryQueue = "queue"
)

type Config struct {
	Env      string `env:"APP_ENV,default=development"`
	AppName  string `env:"APP_NAME,default=recipes"`
	AppURL   string `env:"APP_URL,default=http://localhost:8080"`
	HTTPPort string `env:"PORT,default=8080"`

	DBDriver     string `env:"DB_DRIVER,default=postgres"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DBHost       string `env:"DB_HOST,default=localhost"`
	DBPort       int    `env:"DB_PORT,default=5432"`
	DBUser       string `env:"DB_USER,default=postgres"`
	DBPassword   string `env:"DB_PASSWORD"`
	DBName       string `env:"DB_NAME,default=recipes"`
	DBSSLMode    string `env:"DB_SSLMODE,default=disable"`
	DBSQLitePath string `env:"DB_SQLITE_PATH,default=recipes.db"`

	JWTIssuer        string        `env:"JWT_ISSUER,default=recipe-sharing-backend"`
	JWTAccessSecret  string        `env:"JWT_SECRET"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_TOKEN_SECRET"`
	JWTAccessTTL     time.Duration `env:"JWT_ACCESS_TTL,default=1h"`
	JWTRefreshTTL    time.Duration `env:"JWT_REFRESH_TTL,default=8760h"`
	PasswordResetTTL time.Duration `env:"PASSWORD_RESET_TTL,default=360s"`
	BcryptCost       int           `env:"BCRYPT_COST,default=12"`

	MailDelivery     string        `env:"MAIL_DELIVERY,default=log"`
	MailHost         string        `env:"MAIL_HOST"`
	MailPort         int           `env:"MAIL_PORT,default=587"`
	MailUser         string        `env:"MAIL_USER"`
	MailPassword     string        `env:"MAIL_PASSWORD"`
	MailSecure       bool          `env:"MAIL_SECURE,default=false"`
	MailFrom         string        `env:"MAIL_FROM"`
	MailSendTimeout  time.Duration `env:"MAIL_SEND_TIMEOUT,default=30s"`
	NATSURL          string        `env:"NATS_URL,default=nats://localhost:4222"`
	MailQueueStream  string        `env:"MAIL_QUEUE_STREAM,default=MAIL"`
	MailQueueSubject string        `env:"MAIL_QUEUE_SUBJECT,default=mail.outbound"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=*"`
	MaxUploadBytes     int64    `env:"MAX_UPLOAD_BYTES,default=5242880"`

	AuthRateLimitPerMin   int    `env:"AUTH_RATE_LIMIT_PER_MIN,default=30"`
	APIRateLimitPerMin    int    `env:"API_RATE_LIMIT_PER_MIN,default=120"`
	RateLimitRedisEnabled bool   `env:"RATE_LIMIT_REDIS_ENABLED,default=false"`
	RateLimitRedisPrefix  string `env:"RATE_LIMIT_REDIS_PREFIX,default=rl"`

	RedisAddr     string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	ListCacheEnabled     bool          `env:"LIST_CACHE_ENABLED,default=true"`
	ListCacheRedisEnable bool          `env:"LIST_CACHE_REDIS_ENABLED,default=false"`
	ListCacheTTL         time.Duration `env:"LIST_CACHE_TTL,default=30s"`
	ListCacheRedisPrefix string        `env:"LIST_CACHE_REDIS_PREFIX,default=list_cache"`

	MinIOEnabled   bool   `env:"MINIO_ENABLED,default=true"`
	MinIOEndpoint  string `env:"MINIO_ENDPOINT,default=localhost:9000"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY,default=minioadmin"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY,default=minioadmin"`
	MinIOBucket    string `env:"MINIO_BUCKET,default=recipes"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL,default=false"`

	MetricsEnabled bool `env:"METRICS_ENABLED,default=true"`

	ReadinessProbeTimeout        time.Duration `env:"READINESS_PROBE_TIMEOUT,default=1s"`
	ServerStartGracePeriod       time.Duration `env:"SERVER_START_GRACE_PERIOD,default=2s"`
	ShutdownTimeout              time.Duration `env:"SHUTDOWN_TIMEOUT,default=20s"`
	ShutdownHTTPDrainTimeout     time.Duration `env:"SHUTDOWN_HTTP_DRAIN_TIMEOUT,default=10s"`
	ShutdownObservabilityTimeout time.Duration `env:"SHUTDOWN_OBSERVABILITY_TIMEOUT,default=8s"`

	OTELServiceName           string        `env:"OTEL_SERVICE_NAME,default=recipe-sharing-backend"`
	OTELEnvironment           string        `env:"OTEL_ENVIRONMENT"`
	OTELExporterOTLPEndpoint  string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT,default=localhost:4317"`
	OTELExporterOTLPInsecure  bool          `env:"OTEL_EXPORTER_OTLP_INSECURE,default=true"`
	OTELMetricsExportInterval time.Duration `env:"OTEL_METRICS_EXPORT_INTERVAL,default=10s"`
	OTELTraceSamplingRatio    float64       `env:"OTEL_TRACE_SAMPLING_RATIO,default=1.0"`
	OTELMetricsEnabled        bool          `env:"OTEL_METRICS_ENABLED,default=false"`
	OTELTracingEnabled        bool          `env:"OTEL_TRACING_ENABLED,default=false"`
	OTELLogsEnabled           bool          `env:"OTEL_LOGS_ENABLED,default=false"`
	OTELLogLevel              string        `env:"OTEL_LOG_LEVEL,default=info"`
}

// Load reads the process environment. A .env file in the working directory
// is applied first without overriding variables that are already set.
func Load() (*Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	return LoadWith(context.Background(), envconfig.OsLookuper())
}

// LoadWith resolves the configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile applies KEY=VALUE pairs from path. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	c.AppURL = strings.TrimRight(strings.TrimSpace(c.AppURL), "/")
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.MailDelivery = strings.ToLower(strings.TrimSpace(c.MailDelivery))
	c.OTELLogLevel = strings.ToLower(c.OTELLogLevel)
	if c.OTELEnvironment == "" {
		c.OTELEnvironment = c.Env
	}
	if c.MailFrom == "" {
		c.MailFrom = "no-reply@" + c.AppName + ".com"
	}
	origins := make([]string, 0, len(c.CORSAllowedOrigins))
	for _, o := range c.CORSAllowedOrigins {
		if trim := strings.TrimSpace(o); trim != "" {
			origins = append(origins, trim)
		}
	}
	c.CORSAllowedOrigins = origins
}

// DSN returns the postgres connection string, preferring DATABASE_URL.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.AppName) == "" {
		errs = append(errs, "APP_NAME is required")
	}
	if u, err := url.Parse(c.AppURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "APP_URL must be an absolute URL")
	}
	switch c.DBDriver {
	case DBDriverPostgres:
		if c.DatabaseURL == "" && c.DBHost == "" {
			errs = append(errs, "DATABASE_URL or DB_HOST is required for postgres")
		}
	case DBDriverSQLite:
		if c.DBSQLitePath == "" {
			errs = append(errs, "DB_SQLITE_PATH is required for sqlite")
		}
	default:
		errs = append(errs, "DB_DRIVER must be one of postgres, sqlite")
	}
	if len(c.JWTAccessSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 chars")
	}
	if len(c.JWTRefreshSecret) < 32 {
		errs = append(errs, "JWT_REFRESH_TOKEN_SECRET must be at least 32 chars")
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		errs = append(errs, "JWT_SECRET and JWT_REFRESH_TOKEN_SECRET must differ")
	}
	if c.JWTAccessTTL <= 0 {
		errs = append(errs, "JWT_ACCESS_TTL must be > 0")
	}
	if c.JWTRefreshTTL <= c.JWTAccessTTL {
		errs = append(errs, "JWT_REFRESH_TTL must be longer than JWT_ACCESS_TTL")
	}
	if c.PasswordResetTTL <= 0 {
		errs = append(errs, "PASSWORD_RESET_TTL must be > 0")
	}
	if c.BcryptCost < 10 || c.BcryptCost > 31 {
		errs = append(errs, "BCRYPT_COST must be between 10 and 31")
	}
	switch c.MailDelivery {
	case MailDeliveryLog:
	case MailDeliverySMTP:
		if c.MailHost == "" {
			errs = append(errs, "MAIL_HOST is required when MAIL_DELIVERY=smtp")
		}
	case MailDeliveryQueue:
		if c.NATSURL == "" {
			errs = append(errs, "NATS_URL is required when MAIL_DELIVERY=queue")
		}
	default:
		errs = append(errs, "MAIL_DELIVERY must be one of log, smtp, queue")
	}
	if c.MailPort <= 0 || c.MailPort > 65535 {
		errs = append(errs, "MAIL_PORT must be a valid port")
	}
	if c.MailSendTimeout <= 0 {
		errs = append(errs, "MAIL_SEND_TIMEOUT must be > 0")
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, "MAX_UPLOAD_BYTES must be > 0")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if (c.RateLimitRedisEnabled || c.ListCacheRedisEnable) && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when a redis feature is enabled")
	}
	if c.ListCacheEnabled && c.ListCacheTTL <= 0 {
		errs = append(errs, "LIST_CACHE_TTL must be > 0")
	}
	if c.MinIOEnabled && (c.MinIOEndpoint == "" || c.MinIOBucket == "") {
		errs = append(errs, "MINIO_ENDPOINT and MINIO_BUCKET are required when MINIO_ENABLED=true")
	}
	if c.ReadinessProbeTimeout <= 0 {
		errs = append(errs, "READINESS_PROBE_TIMEOUT must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.ShutdownHTTPDrainTimeout > c.ShutdownTimeout {
		errs = append(errs, "SHUTDOWN_HTTP_DRAIN_TIMEOUT must not exceed SHUTDOWN_TIMEOUT")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if isProductionEnv(c.Env) {
		for _, o := range c.CORSAllowedOrigins {
			if o == "*" {
				errs = append(errs, "CORS_ALLOWED_ORIGINS must not contain * in production")
				break
			}
		}
		if c.DBDriver == DBDriverSQLite {
			errs = append(errs, "DB_DRIVER=sqlite is not allowed in production")
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func isProductionEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
