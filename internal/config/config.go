// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port            int           `env:"PORT" envDefault:"8000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	GinMode         string        `env:"GIN_MODE" envDefault:"release"`
	MaxUploadMB     int64         `env:"MAX_UPLOAD_MB" envDefault:"64"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Storage Storage
}

type Storage struct {
	Driver    string `env:"STORAGE_DRIVER" envDefault:"local"`
	LocalDir  string `env:"TOURS_DIR" envDefault:"./public/tours"`
	URLPrefix string `env:"TOURS_URL_PREFIX" envDefault:"/tours"`
	S3        S3
}

type S3 struct {
	Region        string `env:"S3_REGION"`
	Bucket        string `env:"S3_BUCKET"`
	Prefix        string `env:"S3_PREFIX" envDefault:"tours"`
	PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
	Endpoint      string `env:"S3_ENDPOINT"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.MaxUploadMB <= 0 {
		return Config{}, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func (c Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
