package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "nestora"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App         AppConfig
	DB          DBConfig
	Redis       RedisConfig
	Idempotency IdempotencyConfig
	Migrate     MigrateConfig
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
	Env          string `envconfig:"NESTORA_APP_ENV" required:"true"`
	Port         string `envconfig:"NESTORA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"NESTORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NESTORA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NESTORA_DB_DSN"`
	Driver string `envconfig:"NESTORA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"NESTORA_DB_HOST"`
	Port     int    `envconfig:"NESTORA_DB_PORT" default:"5432"`
	User     string `envconfig:"NESTORA_DB_USER"`
	Password string `envconfig:"NESTORA_DB_PASSWORD"`
	Name     string `envconfig:"NESTORA_DB_NAME"`
	SSLMode  string `envconfig:"NESTORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NESTORA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NESTORA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NESTORA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NESTORA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN builds a postgres DSN from discrete fields when one is not provided.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either NESTORA_DB_DSN or NESTORA_DB_HOST/USER/NAME must be set")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"NESTORA_REDIS_URL"`
	Address      string        `envconfig:"NESTORA_REDIS_ADDR"`
	Password     string        `envconfig:"NESTORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"NESTORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NESTORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NESTORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NESTORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NESTORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NESTORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type IdempotencyConfig struct {
	TTL         time.Duration `envconfig:"NESTORA_IDEMPOTENCY_TTL" default:"24h"`
	CriticalTTL time.Duration `envconfig:"NESTORA_IDEMPOTENCY_CRITICAL_TTL" default:"168h"`
}

type MigrateConfig struct {
	AutoRun bool   `envconfig:"NESTORA_MIGRATE_AUTORUN" default:"false"`
	Dir     string `envconfig:"NESTORA_MIGRATE_DIR" default:"pkg/migrate/migrations"`
}
