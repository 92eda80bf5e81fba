// Package config provides configuration management and environment variable handling for the engine
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andescargo/freight-quotes/utils"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// EngineConfig holds all configuration for the rate catalog and quote engine
type EngineConfig struct {
	Database DatabaseConfig     `json:"database"`
	Redis    RedisConfig        `json:"redis"`
	Engine   EngineSettings     `json:"engine"`
	Logging  utils.LoggerConfig `json:"logging"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// DSN builds the Postgres connection string for GORM
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisConfig configures the keyed lock backend. Disabled falls back to the
// in-process locker, which only serializes writers inside one process.
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type EngineSettings struct {
	DefaultVolumetricFactor decimal.Decimal `json:"default_volumetric_factor"`
	MaxPiecesPerQuote       int             `json:"max_pieces_per_quote"`
	RateLockWait            time.Duration   `json:"rate_lock_wait"`
}

// Load reads configuration from the environment, after loading a .env file
// when one is present next to the binary
func Load() (*EngineConfig, error) {
	_ = godotenv.Load()

	factor, err := decimal.NewFromString(getEnvString("ENGINE_VOLUMETRIC_FACTOR", utils.DefaultVolumetricFactor))
	if err != nil || !factor.IsPositive() {
		return nil, fmt.Errorf("invalid ENGINE_VOLUMETRIC_FACTOR: must be a positive decimal")
	}

	cfg := &EngineConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "freight_quotes"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnvString("REDIS_ADDR", "localhost:6379"),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Engine: EngineSettings{
			DefaultVolumetricFactor: factor,
			MaxPiecesPerQuote:       getEnvInt("ENGINE_MAX_PIECES", utils.MaxPiecesPerQuote),
			RateLockWait:            getEnvDuration("ENGINE_RATE_LOCK_WAIT", 3*time.Second),
		},
		Logging: utils.LoggerConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			Format:     getEnvString("LOG_FORMAT", "json"),
			Output:     getEnvString("LOG_OUTPUT", "stderr"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the assembled configuration for values the engine cannot
// run with
func (c *EngineConfig) Validate() error {
	var problems []string

	if c.Database.Host == "" {
		problems = append(problems, "DB_HOST is required")
	}
	if c.Database.Name == "" {
		problems = append(problems, "DB_NAME is required")
	}
	if c.Engine.MaxPiecesPerQuote < 1 {
		problems = append(problems, "ENGINE_MAX_PIECES must be at least 1")
	}
	if c.Engine.RateLockWait <= 0 {
		problems = append(problems, "ENGINE_RATE_LOCK_WAIT must be positive")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		problems = append(problems, "REDIS_ADDR is required when REDIS_ENABLED is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
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
