package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App    AppConfig
	Travel TravelConfig
	Redis  RedisConfig
	CORS   CORSConfig
	Proof  ProofConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRAVELIA_APP_ENV" required:"true"`
	Port         string `envconfig:"TRAVELIA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRAVELIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRAVELIA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// TravelConfig points at the upstream travel API. The API key is a
// deployment-wide constant sent on every request alongside the user's
// bearer token.
type TravelConfig struct {
	BaseURL string        `envconfig:"TRAVELIA_TRAVEL_BASE_URL" required:"true"`
	APIKey  string        `envconfig:"TRAVELIA_TRAVEL_API_KEY" required:"true"`
	Timeout time.Duration `envconfig:"TRAVELIA_TRAVEL_TIMEOUT" default:"15s"`
}

// RedisConfig accepts either a full URL or discrete address fields; New
// rejects a config that provides neither.
type RedisConfig struct {
	URL          string        `envconfig:"TRAVELIA_REDIS_URL"`
	Address      string        `envconfig:"TRAVELIA_REDIS_ADDR"`
	Password     string        `envconfig:"TRAVELIA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRAVELIA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRAVELIA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRAVELIA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRAVELIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRAVELIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRAVELIA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"TRAVELIA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// ProofConfig bounds proof-of-payment uploads. Violations are rejected
// before any upstream call is made.
type ProofConfig struct {
	MaxUploadBytes int64         `envconfig:"TRAVELIA_PROOF_MAX_UPLOAD_BYTES" default:"5242880"`
	SessionTTL     time.Duration `envconfig:"TRAVELIA_SESSION_STATE_TTL" default:"72h"`
}
