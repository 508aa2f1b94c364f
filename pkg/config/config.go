package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// DefaultUserID is the single local user of the CLI.
const DefaultUserID = "00000000-0000-0000-0000-000000000001"

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv string
	UserID string

	// Storage. An empty DatabaseURL selects local SQLite at SQLitePath.
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string
	LocalMode      bool

	// Cache. An empty RedisURL selects the in-memory cache.
	RedisURL string
	CacheTTL time.Duration

	// Messaging. An empty RabbitMQURL selects the in-process bus.
	RabbitMQURL             string
	BreakerFailureThreshold int
	BreakerTimeout          time.Duration

	// Digest worker
	DigestInterval    time.Duration
	DigestConcurrency int
	DigestHealthAddr  string
	DigestRunOnStart  bool

	// HTTP API
	APIAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load reads configuration from the environment, after loading a .env file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		UserID: getEnv("BT_USER_ID", DefaultUserID),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", defaultSQLitePath()),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: getDurationEnv("CACHE_TTL", 10*time.Minute),

		RabbitMQURL:             getEnv("RABBITMQ_URL", ""),
		BreakerFailureThreshold: getIntEnv("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerTimeout:          getDurationEnv("BREAKER_TIMEOUT", 30*time.Second),

		DigestInterval:    getDurationEnv("DIGEST_INTERVAL", time.Hour),
		DigestConcurrency: getIntEnv("DIGEST_CONCURRENCY", 4),
		DigestHealthAddr:  getEnv("DIGEST_HEALTH_ADDR", "0.0.0.0:8081"),
		DigestRunOnStart:  getBoolEnv("DIGEST_RUN_ON_START", true),

		APIAddr: getEnv("API_ADDR", "127.0.0.1:8080"),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	cfg.LocalMode = cfg.DatabaseURL == ""
	if cfg.LocalMode {
		cfg.DatabaseDriver = "sqlite"
	} else {
		cfg.DatabaseDriver = getEnv("DATABASE_DRIVER", "auto")
	}

	return cfg, nil
}

// Validate reports values that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if _, err := uuid.Parse(c.UserID); err != nil {
		errs = append(errs, fmt.Errorf("BT_USER_ID: %w", err))
	}
	if c.DigestConcurrency < 1 {
		errs = append(errs, errors.New("DIGEST_CONCURRENCY must be at least 1"))
	}
	if c.DigestInterval <= 0 {
		errs = append(errs, errors.New("DIGEST_INTERVAL must be positive"))
	}
	if c.BreakerFailureThreshold < 1 {
		errs = append(errs, errors.New("BREAKER_FAILURE_THRESHOLD must be at least 1"))
	}
	return errors.Join(errs...)
}

// DefaultUser returns the parsed BT_USER_ID.
func (c *Config) DefaultUser() uuid.UUID {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.MustParse(DefaultUserID)
	}
	return id
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".behaviortracker", "data.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
