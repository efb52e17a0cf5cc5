package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Engine  EngineConfig
	Logging LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8090"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// EngineConfig holds JavaScript engine configuration.
type EngineConfig struct {
	EvalTimeout      time.Duration `envconfig:"EVAL_TIMEOUT" default:"5s"`
	MaxCallStackSize int           `envconfig:"MAX_CALL_STACK" default:"4096"`
	PoolSize         int           `envconfig:"POOL_SIZE" default:"4"`
	UseStrict        bool          `envconfig:"USE_STRICT" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8090",
			Host: "0.0.0.0",
		},
		Engine: EngineConfig{
			EvalTimeout:      5 * time.Second,
			MaxCallStackSize: 4096,
			PoolSize:         4,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
