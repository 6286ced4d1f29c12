// Package config loads service configuration from environment variables and
// an optional config.yaml using viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// PostgreSQL connection.
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	DBSeed     bool   `mapstructure:"DB_SEED"`

	// Redis cache for appointment lists.
	RedisEnabled  bool          `mapstructure:"REDIS_ENABLED"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	// Booking protocol.
	BookingBoundary   string        `mapstructure:"BOOKING_BOUNDARY"`
	BookingCheckDelay time.Duration `mapstructure:"BOOKING_CHECK_DELAY"`
	BookingAllowWait  bool          `mapstructure:"BOOKING_ALLOW_WAIT"`
	BookingWaitDelay  time.Duration `mapstructure:"BOOKING_WAIT_DELAY"`

	// Per-IP rate limiting.
	RateLimitPerMin int `mapstructure:"RATE_LIMIT_PER_MIN"`
	RateLimitBurst  int `mapstructure:"RATE_LIMIT_BURST"`
}

var defaults = map[string]any{
	"APP_PORT":            "8080",
	"ENV":                 "development",
	"LOG_LEVEL":           "info",
	"DB_HOST":             "localhost",
	"DB_PORT":             "5432",
	"DB_USER":             "postgres",
	"DB_PASSWORD":         "postgres",
	"DB_NAME":             "appointments",
	"DB_SSLMODE":          "disable",
	"DB_SEED":             true,
	"REDIS_ENABLED":       false,
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"CACHE_TTL":           "1m",
	"BOOKING_BOUNDARY":    "strict",
	"BOOKING_CHECK_DELAY": "0s",
	"BOOKING_ALLOW_WAIT":  false,
	"BOOKING_WAIT_DELAY":  "10s",
	"RATE_LIMIT_PER_MIN":  600,
	"RATE_LIMIT_BURST":    50,
}

// Load reads config.yaml from the working directory or ./config when
// present, then lets environment variables override every key.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN builds a libpq-compatible connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
