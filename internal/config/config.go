package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN builds the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Config is the pharmsmart API configuration, loaded from environment
// variables with code defaults.
type Config struct {
	HTTP struct {
		Addr         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		IdleTimeout  time.Duration
	}
	Database DatabaseConfig
	Redis    struct {
		Addr     string
		Password string
		DB       int
	}

	// Telemetry stream ingestion (devices publish readings to a Redis stream;
	// the consumer feeds them through the same pipeline as the HTTP endpoint).
	Telemetry struct {
		Enabled   bool
		Stream    string
		Group     string
		Consumer  string
		BatchSize int
	}

	// Pricing holds the system-wide unit price applied to every sale line.
	// There is no price catalog yet; keeping this a visible knob instead of a
	// constant makes the limitation testable.
	Pricing struct {
		UnitPrice string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from the environment.
func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.HTTP.ReadTimeout = parseDuration(getEnv("HTTP_READ_TIMEOUT", "15s"), 15*time.Second)
	cfg.HTTP.WriteTimeout = parseDuration(getEnv("HTTP_WRITE_TIMEOUT", "30s"), 30*time.Second)
	cfg.HTTP.IdleTimeout = parseDuration(getEnv("HTTP_IDLE_TIMEOUT", "60s"), 60*time.Second)

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "pharmsmart")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Telemetry.Enabled = getEnv("TELEMETRY_STREAM_ENABLED", "true") == "true"
	cfg.Telemetry.Stream = getEnv("TELEMETRY_STREAM", "pharmsmart:telemetry")
	cfg.Telemetry.Group = getEnv("TELEMETRY_GROUP", "pharmsmart-api")
	cfg.Telemetry.Consumer = getEnv("TELEMETRY_CONSUMER", hostnameOr("pharmsmart-1"))
	cfg.Telemetry.BatchSize = parseInt(getEnv("TELEMETRY_BATCH_SIZE", "10"), 10)

	cfg.Pricing.UnitPrice = getEnv("SALE_UNIT_PRICE", "100.00")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func hostnameOr(def string) string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return def
}
