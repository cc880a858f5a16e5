package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for planstack-engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables; environment variables override YAML values. Secrets
// (passwords, API keys) must only come from environment variables.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8086"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	AI           AIConfig           `yaml:"ai"`
	Conversation ConversationConfig `yaml:"conversation"`
	Auth         AuthConfig         `yaml:"auth"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"planstack"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"planstack_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// URL builds a connection string for pgx.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// RedisConfig holds optional Redis configuration. When Host is empty the
// engine falls back to the in-memory stream guard.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Supported completion providers.
const (
	AIProviderOpenAI    = "openai"
	AIProviderAnthropic = "anthropic"
)

// AIConfig holds the completion service configuration.
type AIConfig struct {
	// Provider selects the completion backend: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o"`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML

	// RequestTimeoutSeconds bounds every completion call. Orchestrators
	// must fail cleanly on timeout rather than hang.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" env:"AI_REQUEST_TIMEOUT_SECONDS" env-default:"120"`
	// MaxRetries bounds retries of transient completion failures.
	MaxRetries int `yaml:"max_retries" env:"AI_MAX_RETRIES" env-default:"2"`
}

// RequestTimeout returns the completion call timeout as a duration.
func (c *AIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ConversationConfig holds conversation session settings.
type ConversationConfig struct {
	// HistoryLimit caps how many persisted messages are sent to the
	// completion service as context.
	HistoryLimit int `yaml:"history_limit" env:"CONVERSATION_HISTORY_LIMIT" env-default:"40"`
	// StreamGuardTTLSeconds is the eviction TTL for in-flight stream
	// flags, protecting against leaked flags after a crash.
	StreamGuardTTLSeconds int `yaml:"stream_guard_ttl_seconds" env:"CONVERSATION_STREAM_GUARD_TTL_SECONDS" env-default:"300"`
}

// StreamGuardTTL returns the stream guard TTL as a duration.
func (c *ConversationConfig) StreamGuardTTL() time.Duration {
	return time.Duration(c.StreamGuardTTLSeconds) * time.Second
}

// AuthConfig holds token parsing configuration. Token issuance and
// session management belong to the external identity provider; the
// engine only verifies and reads capability claims.
type AuthConfig struct {
	// EnableVerification controls whether JWT signatures are validated.
	// Set to false for local development without the identity provider.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`
	// SigningKey is the shared HMAC key of the identity provider.
	SigningKey string `yaml:"-" env:"AUTH_SIGNING_KEY"` // Secret - not in YAML
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	// A missing config.yaml is fine: env defaults cover every field.
	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AI.Provider {
	case AIProviderOpenAI, AIProviderAnthropic:
	default:
		return fmt.Errorf("invalid ai.provider %q (want openai or anthropic)", c.AI.Provider)
	}
	if c.Auth.EnableVerification && c.Auth.SigningKey == "" {
		return fmt.Errorf("AUTH_SIGNING_KEY is required when auth verification is enabled")
	}
	if c.AI.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("ai.request_timeout_seconds must be positive")
	}
	return nil
}
