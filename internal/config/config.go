// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	LogLevel slog.Level

	// Record store selection
	StoreDriver string // "postgres" or "badger"
	BadgerPath  string // empty opens an in-memory database

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost       string
	ValkeyPort       string
	ValkeyPassword   string
	CategoryCacheTTL time.Duration

	// Query behaviour
	EnrichConcurrency int
	StrictParents     bool

	// Per-client request rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if a value cannot be
// parsed or critical values are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		StoreDriver: envOrDefault("STORE_DRIVER", DriverPostgres),
		BadgerPath:  os.Getenv("BADGER_PATH"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "treepress"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "treepress"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(envOrDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	var err error
	if cfg.CategoryCacheTTL, err = parseEnv("CATEGORY_CACHE_TTL", "5m", time.ParseDuration); err != nil {
		return nil, err
	}
	if cfg.EnrichConcurrency, err = parseEnv("ENRICH_CONCURRENCY", "4", strconv.Atoi); err != nil {
		return nil, err
	}
	if cfg.StrictParents, err = parseEnv("TREE_STRICT_PARENTS", "false", strconv.ParseBool); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = parseEnv("RATE_LIMIT_RPS", "20", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = parseEnv("RATE_LIMIT_BURST", "40", strconv.Atoi); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case DriverPostgres, DriverBadger:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverBadger, cfg.StoreDriver)
	}
	if cfg.EnrichConcurrency < 1 {
		return nil, fmt.Errorf("ENRICH_CONCURRENCY must be positive, got %d", cfg.EnrichConcurrency)
	}

	if cfg.Env == "production" && cfg.StoreDriver == DriverPostgres {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseEnv reads key with envOrDefault and converts it with parse.
func parseEnv[T any](key, fallback string, parse func(string) (T, error)) (T, error) {
	v, err := parse(envOrDefault(key, fallback))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
