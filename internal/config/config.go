package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	CORSOrigins     []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// GameConfig holds gameplay defaults
type GameConfig struct {
	DefaultCreditHours int

	// Event stream and ledger deliveries run off the request path
	ObserverQueueSize int
	ObserverTimeout   time.Duration
}

// RedisConfig holds Redis connection configuration.
// An empty URL disables event publishing.
type RedisConfig struct {
	URL          string
	Password     string
	EventsStream string
	StreamMaxLen int64
}

// LedgerConfig holds the action ledger database configuration.
// An empty DSN disables the ledger.
type LedgerConfig struct {
	DSN           string
	RetryAttempts int
	RetryDelay    time.Duration
}

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Game   GameConfig
	Redis  RedisConfig
	Ledger LedgerConfig
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("SERVER_ADDR", ":8000"),
			CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
			RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Game: GameConfig{
			DefaultCreditHours: getEnvInt("DEFAULT_CREDIT_HOURS", 12),
			ObserverQueueSize:  getEnvInt("OBSERVER_QUEUE_SIZE", 1024),
			ObserverTimeout:    getEnvDuration("OBSERVER_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			Password:     getEnv("REDIS_PASSWORD", ""),
			EventsStream: getEnv("GAME_EVENTS_STREAM", "game.events"),
			StreamMaxLen: int64(getEnvInt("GAME_EVENTS_MAXLEN", 10000)),
		},
		Ledger: LedgerConfig{
			DSN:           getEnv("LEDGER_DSN", ""),
			RetryAttempts: getEnvInt("LEDGER_RETRY_ATTEMPTS", 3),
			RetryDelay:    getEnvDuration("LEDGER_RETRY_DELAY", 100*time.Millisecond),
		},
	}
}

// RedisEnabled reports whether event publishing is configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.URL != ""
}

// LedgerEnabled reports whether the action ledger is configured
func (c *Config) LedgerEnabled() bool {
	return c.Ledger.DSN != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping blank entries
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			items = append(items, p)
		}
	}

	if len(items) == 0 {
		return defaultValue
	}
	return items
}
