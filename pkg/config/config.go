package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "CAMPUSSHELF_APP_ENV"
	EnvPort       = "CAMPUSSHELF_APP_PORT"
	EnvDBDSN      = "CAMPUSSHELF_DB_DSN"
	EnvDBHost     = "CAMPUSSHELF_DB_HOST"
	EnvDBUser     = "CAMPUSSHELF_DB_USER"
	EnvDBName     = "CAMPUSSHELF_DB_NAME"
	EnvRedisURL   = "CAMPUSSHELF_REDIS_URL"
	EnvJWTSecret  = "CAMPUSSHELF_JWT_SECRET"
	EnvJWTIssuer  = "CAMPUSSHELF_JWT_ISSUER"
	EnvJWTExpMins = "CAMPUSSHELF_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"CAMPUSSHELF_APP_ENV" required:"true"`
	Port         string `envconfig:"CAMPUSSHELF_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CAMPUSSHELF_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAMPUSSHELF_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CAMPUSSHELF_DB_DSN"`
	Driver string `envconfig:"CAMPUSSHELF_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CAMPUSSHELF_DB_HOST"`
	LegacyPort     int    `envconfig:"CAMPUSSHELF_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CAMPUSSHELF_DB_USER"`
	LegacyPassword string `envconfig:"CAMPUSSHELF_DB_PASSWORD"`
	LegacyName     string `envconfig:"CAMPUSSHELF_DB_NAME"`
	LegacySSLMode  string `envconfig:"CAMPUSSHELF_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAMPUSSHELF_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAMPUSSHELF_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAMPUSSHELF_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAMPUSSHELF_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CAMPUSSHELF_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CAMPUSSHELF_REDIS_ADDR"`
	Password     string        `envconfig:"CAMPUSSHELF_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAMPUSSHELF_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAMPUSSHELF_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAMPUSSHELF_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAMPUSSHELF_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAMPUSSHELF_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAMPUSSHELF_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes how campus identity tokens are verified. Tokens are
// minted by the identity service; this API only checks the shared secret.
type JWTConfig struct {
	Secret            string `envconfig:"CAMPUSSHELF_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CAMPUSSHELF_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CAMPUSSHELF_JWT_EXPIRATION_MINUTES" default:"60"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CAMPUSSHELF_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CAMPUSSHELF_AUTO_MIGRATE" default:"false"`
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
