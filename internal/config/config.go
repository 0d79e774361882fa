// Package config loads vfsh settings from VFSH_* environment variables.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/agentic-research/vfsh/internal/history"
	"github.com/agentic-research/vfsh/internal/logging"
	"github.com/agentic-research/vfsh/internal/nfsmount"
)

// Prefix is prepended to every variable name.
const Prefix = "VFSH"

// Config holds all application configuration. Fields are flat so that each
// variable is exactly Prefix + "_" + tag.
type Config struct {
	LogLevel     string `envconfig:"LOG_LEVEL" default:"warn"`
	LogDev       bool   `envconfig:"LOG_DEV" default:"false"`
	HistoryDSN   string `envconfig:"HISTORY_DSN" default:":memory:"`
	HistoryLimit int    `envconfig:"HISTORY_LIMIT" default:"1000"`
	NFSListen    string `envconfig:"NFS_LISTEN" default:"127.0.0.1:0"`
	Color        bool   `envconfig:"COLOR" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		LogLevel:     "warn",
		HistoryDSN:   history.MemoryDSN,
		HistoryLimit: 1000,
		NFSListen:    nfsmount.DefaultAddr,
		Color:        true,
	}
}

// LoggerConfig converts the logging section for logging.New.
func (c *Config) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Development = c.LogDev
	return cfg
}
