// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration. Command-line flags override it.
type Config struct {
	DBPath    string `envconfig:"DB" default:"resell.sqlite3"`
	Addr      string `envconfig:"ADDR" default:":8080"`
	AdminUser string `envconfig:"ADMIN_USER" default:"Admin"`

	LogPath   string `envconfig:"LOG"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// RateLimit is the number of API requests allowed per client IP per minute.
	RateLimit         int           `envconfig:"RATE_LIMIT" default:"120"`
	ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	LowStockThreshold int           `envconfig:"LOW_STOCK_THRESHOLD" default:"1"`
	Production        bool          `envconfig:"PRODUCTION" default:"false"`
}

// Prefix is the environment variable prefix, e.g. RESELL_ADDR.
const Prefix = "RESELL"

// Load reads an optional .env file from envFile (ignored if it does not
// exist) and then the RESELL_* environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q (want text or json)", cfg.LogFormat)
	}
	if cfg.RateLimit <= 0 {
		return nil, errors.New("rate limit must be positive")
	}
	if cfg.LowStockThreshold <= 0 {
		return nil, errors.New("low stock threshold must be positive")
	}
	return &cfg, nil
}
