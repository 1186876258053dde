package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the full configuration of the adventure server. Backends are
// selected by name; anything left on its default runs without external
// services (file worlds, in-memory sessions, no broker).
type Config struct {
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// World storage: "file" or "postgres".
	WorldSource string `envconfig:"WORLD_SOURCE" default:"file"`
	WorldsDir   string `envconfig:"WORLDS_DIR" default:"./worlds"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"adventure"`
	DBName     string `envconfig:"DB_NAME" default:"adventure"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns int    `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	// Secret field, no envconfig tag.
	DBPassword string

	// Session storage: "memory" or "redis".
	SessionStoreType string        `envconfig:"SESSION_STORE" default:"memory"`
	RedisAddr        string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB          int           `envconfig:"REDIS_DB" default:"0"`
	SessionTTL       time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	// Empty URL disables turn event publishing.
	RabbitMQURL    string `envconfig:"RABBITMQ_URL"`
	TurnEventQueue string `envconfig:"TURN_EVENT_QUEUE" default:"adventure_turn_events"`

	AIClientType string        `envconfig:"AI_CLIENT_TYPE" default:"openai"`
	AIBaseURL    string        `envconfig:"AI_BASE_URL"`
	AIModel      string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AITimeout    time.Duration `envconfig:"AI_TIMEOUT" default:"45s"`
	// Secret field, no envconfig tag.
	AIAPIKey string

	AuthEnabled bool `envconfig:"AUTH_ENABLED" default:"false"`
	// Secret field, no envconfig tag.
	JWTSecret string
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// ReadSecret reads a secret from the standard Docker Secrets path, falling
// back to the corresponding environment variable for local runs.
func ReadSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err == nil {
		secret := strings.TrimSpace(string(secretBytes))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", filePath)
		}
		return secret, nil
	}
	if env := strings.TrimSpace(os.Getenv(strings.ToUpper(secretName))); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("secret %s not found in %s or environment: %w", secretName, filePath, err)
}

// LoadConfig reads configuration from environment variables and secrets.
// Secrets are required only for the backends that are actually enabled.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading adventure server configuration: %w", err)
	}

	var err error
	if strings.EqualFold(cfg.WorldSource, "postgres") {
		if cfg.DBPassword, err = ReadSecret("db_password"); err != nil {
			return nil, err
		}
	}
	if strings.EqualFold(cfg.AIClientType, "openai") {
		if cfg.AIAPIKey, err = ReadSecret("ai_api_key"); err != nil {
			return nil, err
		}
	}
	if cfg.AuthEnabled {
		if cfg.JWTSecret, err = ReadSecret("jwt_secret"); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
